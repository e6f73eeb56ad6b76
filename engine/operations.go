package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/NethermindEth/chaoschain-reality/actions"
	"github.com/NethermindEth/chaoschain-reality/ai"
	"github.com/NethermindEth/chaoschain-reality/core"
	"github.com/NethermindEth/chaoschain-reality/elimination"
)

// DecisionResult is a fetched, validated decision plus the roster it was made for.
type DecisionResult struct {
	Decision        *ai.Decision        `json:"aiDecision"`
	AvailableAgents []core.AgentSummary `json:"availableAgents"`
}

// ActionResult is an action confirmed on chain.
type ActionResult struct {
	Outcome      *actions.Outcome `json:"outcome"`
	Transactions []core.Receipt   `json:"transactions"`
}

// EliminationResult is a confirmed elimination.
type EliminationResult struct {
	Selection   *elimination.Selection `json:"selection"`
	Transaction *core.Receipt          `json:"transaction"`
}

// CycleResult is a full decision cycle: the decision and the action it produced.
type CycleResult struct {
	Decision *DecisionResult `json:"decision"`
	Action   *ActionResult   `json:"action"`
}

// Roster returns the living agents of an active show.
func (e *Engine) Roster(ctx context.Context, showID string) ([]core.Agent, error) {
	return e.activeRoster(ctx, showID)
}

// RiskRankings ranks the living roster by risk score.
func (e *Engine) RiskRankings(ctx context.Context, showID string) ([]core.RiskRanking, error) {
	agents, err := e.Roster(ctx, showID)
	if err != nil {
		return nil, err
	}
	return elimination.Rank(agents), nil
}

// PreviewElimination runs the selector without writing anything.
func (e *Engine) PreviewElimination(ctx context.Context, showID string) (*elimination.Selection, error) {
	agents, err := e.Roster(ctx, showID)
	if err != nil {
		return nil, err
	}
	return elimination.Select(showID, agents)
}

// RunElimination selects a target and kills it on chain.
func (e *Engine) RunElimination(ctx context.Context, showID string) (*EliminationResult, error) {
	release, err := e.acquire(showID, core.CycleElimination)
	if err != nil {
		return nil, err
	}
	defer release()

	rec := core.CycleRecord{ShowID: showID, Kind: core.CycleElimination, StartedAt: time.Now()}
	res, err := e.eliminate(ctx, showID, &rec)
	e.record(rec, err)
	return res, err
}

func (e *Engine) eliminate(ctx context.Context, showID string, rec *core.CycleRecord) (*EliminationResult, error) {
	agents, err := e.activeRoster(ctx, showID)
	if err != nil {
		return nil, err
	}

	// An earlier kill may have landed without a receipt. Finish that elimination
	// instead of selecting a second target.
	prev, resumed := e.loadPendingKill(showID)
	var sel *elimination.Selection
	if resumed {
		sel = prev.sel
		if _, alive := core.FindAgent(agents, sel.Target.ID); !alive {
			return e.confirmKill(ctx, showID, prev, rec), nil
		}
		log.Printf("Show %s: retrying unconfirmed elimination of %s", showID, sel.Target.ID)
	} else {
		sel, err = elimination.Select(showID, agents)
		if err != nil {
			return nil, err
		}
	}
	rec.EliminatedAgentID = sel.Target.ID

	receipt, err := e.gateway.KillAgent(ctx, showID, sel.Target.ID)
	if err != nil {
		if resumed && errors.Is(err, core.ErrAlreadyEliminated) {
			return e.confirmKill(ctx, showID, prev, rec), nil
		}
		if core.IsRetryable(err) {
			p := pendingKill{sel: sel}
			if tagged, ok := core.AsError(err); ok && tagged.TxHash != "" {
				p.txHash = tagged.TxHash
			} else if resumed {
				p.txHash = prev.txHash
			}
			e.setPendingKill(showID, p)
		} else {
			e.clearPendingKill(showID)
		}
		return nil, err
	}
	e.clearPendingKill(showID)
	return e.eliminated(ctx, showID, sel, receipt, rec), nil
}

// confirmKill completes a pending elimination whose target is already dead on chain.
func (e *Engine) confirmKill(ctx context.Context, showID string, p pendingKill, rec *core.CycleRecord) *EliminationResult {
	e.clearPendingKill(showID)
	rec.EliminatedAgentID = p.sel.Target.ID
	log.Printf("Show %s: earlier elimination of %s confirmed", showID, p.sel.Target.ID)
	return e.eliminated(ctx, showID, p.sel, &core.Receipt{Hash: p.txHash}, rec)
}

func (e *Engine) eliminated(ctx context.Context, showID string, sel *elimination.Selection, receipt *core.Receipt, rec *core.CycleRecord) *EliminationResult {
	rec.Transactions = []core.Receipt{*receipt}
	log.Printf("Show %s: eliminated %s (%s) in tx %s", showID, sel.Target.Name, sel.Target.ID, receipt.Hash)

	e.opts.Metrics.ObserveElimination()
	res := &EliminationResult{Selection: sel, Transaction: receipt}
	e.publish(core.EventAgentEliminated, showID, res)
	e.post(ctx, core.NewsItem{
		ShowID:   showID,
		Kind:     "elimination",
		Headline: fmt.Sprintf("%s was eliminated", sel.Target.Name),
		Body:     sel.Reason,
		AgentIDs: []string{sel.Target.ID},
		TxHash:   receipt.Hash,
	})
	return res
}

// FetchDecision asks the decider for the next action. Nothing is written.
func (e *Engine) FetchDecision(ctx context.Context, showID, extra string) (*DecisionResult, error) {
	agents, err := e.Roster(ctx, showID)
	if err != nil {
		return nil, err
	}
	return e.decide(ctx, showID, agents, extra)
}

func (e *Engine) decide(ctx context.Context, showID string, agents []core.Agent, extra string) (*DecisionResult, error) {
	if len(agents) == 0 {
		return nil, core.NoEligibleAgentsError(showID)
	}
	d, err := e.decider.Decide(ctx, showID, agents, extra)
	if err != nil {
		return nil, err
	}
	res := &DecisionResult{Decision: d, AvailableAgents: core.Summaries(agents)}
	e.publish(core.EventDecisionFetched, showID, res)
	return res, nil
}

// ApplyAction applies a catalog action to the given agents and writes the new traits.
func (e *Engine) ApplyAction(ctx context.Context, showID, action string, agentIDs []string) (*ActionResult, error) {
	if _, err := e.catalog.ValidateParams(action, agentIDs); err != nil {
		return nil, err
	}
	release, err := e.acquire(showID, core.CycleAction)
	if err != nil {
		return nil, err
	}
	defer release()

	rec := core.CycleRecord{ShowID: showID, Kind: core.CycleAction, Action: action, Parameters: agentIDs, StartedAt: time.Now()}
	var res *ActionResult
	agents, err := e.activeRoster(ctx, showID)
	if err == nil {
		res, err = e.apply(ctx, showID, action, agentIDs, agents, &rec)
	}
	e.record(rec, err)
	return res, err
}

// RunDecisionCycle fetches a decision and applies it under a single claim on the show.
func (e *Engine) RunDecisionCycle(ctx context.Context, showID, extra string) (*CycleResult, error) {
	release, err := e.acquire(showID, core.CycleDecision)
	if err != nil {
		return nil, err
	}
	defer release()

	rec := core.CycleRecord{ShowID: showID, Kind: core.CycleDecision, StartedAt: time.Now()}
	res, err := e.decideAndApply(ctx, showID, extra, &rec)
	e.record(rec, err)
	return res, err
}

func (e *Engine) decideAndApply(ctx context.Context, showID, extra string, rec *core.CycleRecord) (*CycleResult, error) {
	agents, err := e.activeRoster(ctx, showID)
	if err != nil {
		return nil, err
	}
	dr, err := e.decide(ctx, showID, agents, extra)
	if err != nil {
		return nil, err
	}
	rec.Action = dr.Decision.Action
	rec.Parameters = dr.Decision.Parameters

	ar, err := e.apply(ctx, showID, dr.Decision.Action, dr.Decision.Parameters, agents, rec)
	if err != nil {
		return nil, err
	}
	return &CycleResult{Decision: dr, Action: ar}, nil
}

// apply computes the outcome and writes each changed vector in parameter order.
// The show must already be claimed.
func (e *Engine) apply(ctx context.Context, showID, action string, agentIDs []string, roster []core.Agent, rec *core.CycleRecord) (*ActionResult, error) {
	targets := make([]core.Agent, 0, len(agentIDs))
	for _, id := range agentIDs {
		a, ok := core.FindAgent(roster, id)
		if !ok {
			return nil, core.InvalidAgentReferenceError(id)
		}
		targets = append(targets, a)
	}

	outcome, err := e.catalog.Apply(action, targets)
	if err != nil {
		return nil, err
	}

	res := &ActionResult{Outcome: outcome}
	for _, ch := range outcome.Changes {
		receipt, err := e.gateway.ApplyTraitUpdate(ctx, ch.AgentID, ch.After)
		if err != nil {
			rec.Transactions = res.Transactions
			return nil, writeFailure(err, res.Transactions)
		}
		res.Transactions = append(res.Transactions, *receipt)
		rec.Changes = append(rec.Changes, ch)
	}
	rec.Transactions = res.Transactions

	e.opts.Metrics.ObserveAction(string(outcome.Action), outcome.Branch)
	log.Printf("Show %s: %s", showID, outcome.Message())
	e.publish(core.EventActionApplied, showID, res)

	item := core.NewsItem{
		ShowID:   showID,
		Kind:     string(outcome.Action),
		Headline: outcome.Headline,
		Body:     outcome.Message(),
		AgentIDs: agentIDs,
	}
	if n := len(res.Transactions); n > 0 {
		item.TxHash = res.Transactions[n-1].Hash
	}
	e.post(ctx, item)
	return res, nil
}

// writeFailure marks a failed trait write as unconfirmed and lists the hashes
// already confirmed before it.
func writeFailure(err error, confirmed []core.Receipt) error {
	tagged, ok := core.AsError(err)
	if !ok {
		return err
	}
	cp := *tagged
	cp.Unconfirmed = true
	if len(confirmed) == 0 {
		return &cp
	}
	hashes := make([]string, 0, len(confirmed))
	for _, r := range confirmed {
		hashes = append(hashes, r.Hash)
	}
	detail := "confirmed before failure: " + strings.Join(hashes, ", ")
	if base := tagged.Details(); base != "" {
		detail = base + "; " + detail
	}
	cp.Detail = detail
	return &cp
}
