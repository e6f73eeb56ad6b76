package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/NethermindEth/chaoschain-reality/config"
	"github.com/NethermindEth/chaoschain-reality/engine"
)

// Runner is the part of the engine the scheduler drives.
type Runner interface {
	RunDecisionCycle(ctx context.Context, showID, extra string) (*engine.CycleResult, error)
	RunElimination(ctx context.Context, showID string) (*engine.EliminationResult, error)
}

// DefaultTick is how often the loop checks for due jobs.
const DefaultTick = time.Second

type job struct {
	show            config.ShowSchedule
	nextDecision    time.Time
	nextElimination time.Time // zero when disabled
}

// Scheduler drives decision and elimination cycles for configured shows from one loop.
// Jobs run one at a time, in show order.
type Scheduler struct {
	runner  Runner
	policy  RetryPolicy
	tick    time.Duration
	timeout time.Duration
	sleep   sleepFunc

	mu   sync.Mutex
	jobs []*job
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithRetryPolicy(p RetryPolicy) Option { return func(s *Scheduler) { s.policy = p } }

func WithTick(d time.Duration) Option { return func(s *Scheduler) { s.tick = d } }

// WithCycleTimeout bounds each attempt of a cycle.
func WithCycleTimeout(d time.Duration) Option { return func(s *Scheduler) { s.timeout = d } }

func New(runner Runner, shows []config.ShowSchedule, opts ...Option) *Scheduler {
	s := &Scheduler{
		runner:  runner,
		policy:  DefaultRetryPolicy(),
		tick:    DefaultTick,
		timeout: 2 * time.Minute,
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(s)
	}
	now := time.Now()
	for _, sh := range shows {
		if sh.Inactive {
			continue
		}
		j := &job{show: sh, nextDecision: now.Add(sh.DecisionEvery)}
		if every := sh.EliminationInterval(); every > 0 {
			j.nextElimination = now.Add(every)
		}
		s.jobs = append(s.jobs, j)
	}
	return s
}

// Run loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("Scheduler started for %d show(s)", len(s.jobs))
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case now := <-ticker.C:
			s.RunDue(ctx, now)
		}
	}
}

// RunDue runs every job due at now and reschedules it from now.
func (s *Scheduler) RunDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, j := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		if !now.Before(j.nextDecision) {
			s.runDecision(ctx, j.show)
			j.nextDecision = now.Add(j.show.DecisionEvery)
		}
		if !j.nextElimination.IsZero() && !now.Before(j.nextElimination) {
			s.runElimination(ctx, j.show)
			j.nextElimination = now.Add(j.show.EliminationInterval())
		}
	}
}

func (s *Scheduler) runDecision(ctx context.Context, show config.ShowSchedule) {
	err := retry(ctx, s.policy, s.sleep, "decision cycle for show "+show.ID, func() error {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		res, err := s.runner.RunDecisionCycle(cctx, show.ID, show.Context)
		if err == nil && res != nil && res.Decision != nil {
			log.Printf("Show %s: scheduled decision %s", show.ID, res.Decision.Decision)
		}
		return err
	})
	if err != nil {
		log.Printf("Show %s: scheduled decision cycle skipped: %v", show.ID, err)
	}
}

func (s *Scheduler) runElimination(ctx context.Context, show config.ShowSchedule) {
	err := retry(ctx, s.policy, s.sleep, "elimination for show "+show.ID, func() error {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		res, err := s.runner.RunElimination(cctx, show.ID)
		if err == nil && res != nil && res.Selection != nil {
			log.Printf("Show %s: scheduled elimination of %s", show.ID, res.Selection.Target.Name)
		}
		return err
	})
	if err != nil {
		log.Printf("Show %s: scheduled elimination skipped: %v", show.ID, err)
	}
}
