package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NethermindEth/chaoschain-reality/actions"
	"github.com/NethermindEth/chaoschain-reality/ai"
	"github.com/NethermindEth/chaoschain-reality/chain"
	"github.com/NethermindEth/chaoschain-reality/core"
	"github.com/NethermindEth/chaoschain-reality/elimination"
	"github.com/NethermindEth/chaoschain-reality/metrics"
)

// Decider chooses the next action for a roster.
type Decider interface {
	Decide(ctx context.Context, showID string, agents []core.Agent, extra string) (*ai.Decision, error)
}

// CycleLedger keeps a record of every mutating cycle.
type CycleLedger interface {
	Save(rec core.CycleRecord) error
}

// NewsWriter appends headlines to a show's feed.
type NewsWriter interface {
	Append(ctx context.Context, item core.NewsItem) error
}

// Publisher fans events out to live subscribers.
type Publisher interface {
	Publish(evt core.Event)
}

// Options carries the engine's optional collaborators. Nil fields are skipped.
type Options struct {
	Ledger  CycleLedger
	News    NewsWriter
	Events  Publisher
	Metrics *metrics.Metrics
}

// Engine runs decision, action and elimination cycles against the chain gateway.
// At most one mutating cycle runs per show at a time.
type Engine struct {
	gateway chain.Gateway
	decider Decider
	catalog *actions.Catalog
	opts    Options

	mu      sync.Mutex
	running map[string]core.CycleKind
	pending map[string]pendingKill // kills whose outcome is unknown, by show
}

// pendingKill is an elimination whose kill was sent but not confirmed.
type pendingKill struct {
	sel    *elimination.Selection
	txHash string
}

func New(gateway chain.Gateway, decider Decider, catalog *actions.Catalog, opts Options) *Engine {
	return &Engine{
		gateway: gateway,
		decider: decider,
		catalog: catalog,
		opts:    opts,
		running: make(map[string]core.CycleKind),
		pending: make(map[string]pendingKill),
	}
}

// Catalog returns the action catalog the engine applies.
func (e *Engine) Catalog() *actions.Catalog {
	return e.catalog
}

// acquire claims the show for one mutating cycle.
func (e *Engine) acquire(showID string, kind core.CycleKind) (func(), error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if holder, busy := e.running[showID]; busy {
		log.Printf("Show %s: %s cycle rejected, %s cycle still running", showID, kind, holder)
		return nil, core.CycleInProgressError(showID)
	}
	e.running[showID] = kind
	return func() {
		e.mu.Lock()
		delete(e.running, showID)
		e.mu.Unlock()
	}, nil
}

// Busy reports whether a mutating cycle currently holds the show.
func (e *Engine) Busy(showID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.running[showID]
	return ok
}

func (e *Engine) loadPendingKill(showID string) (pendingKill, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.pending[showID]
	return p, ok
}

func (e *Engine) setPendingKill(showID string, p pendingKill) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[showID] = p
}

func (e *Engine) clearPendingKill(showID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, showID)
}

// activeRoster reads the show and its living agents. Inactive shows are terminal.
func (e *Engine) activeRoster(ctx context.Context, showID string) ([]core.Agent, error) {
	if showID == "" {
		return nil, core.ValidationError("showId is required")
	}
	show, err := e.gateway.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	if !show.IsActive {
		return nil, core.ShowInactiveError(showID)
	}
	agents, err := e.gateway.GetLivingParticipants(ctx, showID)
	if err != nil {
		return nil, err
	}
	return core.LivingAgents(agents), nil
}

func (e *Engine) record(rec core.CycleRecord, err error) {
	rec.ID = uuid.New().String()
	rec.FinishedAt = time.Now()
	rec.Succeeded = err == nil
	code := ""
	if err != nil {
		rec.Error = err.Error()
		if tagged, ok := core.AsError(err); ok {
			rec.ErrorCode = tagged.Code
			code = string(tagged.Code)
		} else {
			code = "INTERNAL"
		}
		log.Printf("Show %s: %s cycle failed: %v", rec.ShowID, rec.Kind, err)
		e.publish(core.EventCycleFailed, rec.ShowID, rec)
	}
	e.opts.Metrics.ObserveCycle(string(rec.Kind), code, rec.FinishedAt.Sub(rec.StartedAt))

	if e.opts.Ledger != nil {
		if lerr := e.opts.Ledger.Save(rec); lerr != nil {
			log.Printf("Show %s: failed to save cycle record: %v", rec.ShowID, lerr)
		}
	}
}

func (e *Engine) publish(typ core.EventType, showID string, payload interface{}) {
	if e.opts.Events == nil {
		return
	}
	e.opts.Events.Publish(core.Event{
		ID:        uuid.New().String(),
		Type:      typ,
		ShowID:    showID,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}

// post appends a headline. Feed failures are logged and never fail the cycle.
func (e *Engine) post(ctx context.Context, item core.NewsItem) {
	item.ID = uuid.New().String()
	item.CreatedAt = time.Now()
	if e.opts.News != nil {
		if err := e.opts.News.Append(context.WithoutCancel(ctx), item); err != nil {
			log.Printf("Show %s: failed to post news %q: %v", item.ShowID, item.Headline, err)
			return
		}
	}
	e.publish(core.EventNewsPosted, item.ShowID, item)
}
