package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/NethermindEth/chaoschain-reality/core"
)

func seeded() *MemoryGateway {
	g := NewMemoryGateway()
	tv := core.TraitVector{Popularity: 50, Aggression: 50, Loyalty: 50, Resilience: 50, Charisma: 50, Suspicion: 50, Energy: 50}
	g.AddShow("1", true,
		core.Agent{ID: "3", Name: "Alice", IsAlive: true, Traits: tv},
		core.Agent{ID: "7", Name: "Bob", IsAlive: true, Traits: tv},
		core.Agent{ID: "9", Name: "Cleo", IsAlive: false, Traits: tv},
	)
	return g
}

func TestLivingParticipantsFiltersDead(t *testing.T) {
	g := seeded()
	living, err := g.GetLivingParticipants(context.Background(), "1")
	if err != nil {
		t.Fatalf("GetLivingParticipants: %v", err)
	}
	if len(living) != 2 || living[0].ID != "3" || living[1].ID != "7" {
		t.Fatalf("living = %+v", living)
	}
}

func TestApplyTraitUpdateMinesBlock(t *testing.T) {
	g := seeded()
	next := core.TraitVector{Popularity: 55, Aggression: 60, Loyalty: 50, Resilience: 50, Charisma: 50, Suspicion: 55, Energy: 40}
	r1, err := g.ApplyTraitUpdate(context.Background(), "3", next)
	if err != nil {
		t.Fatalf("ApplyTraitUpdate: %v", err)
	}
	r2, err := g.ApplyTraitUpdate(context.Background(), "7", next)
	if err != nil {
		t.Fatalf("ApplyTraitUpdate: %v", err)
	}
	if r1.BlockNumber != 1 || r2.BlockNumber != 2 || r1.Hash == r2.Hash || r1.GasUsed == 0 {
		t.Fatalf("receipts = %+v %+v", r1, r2)
	}
	if a, _ := g.Agent("3"); a.Traits != next {
		t.Fatalf("stored traits = %+v", a.Traits)
	}
	blocks := g.Blocks()
	if blocks[2].PrevHash != blocks[1].Hash() {
		t.Fatalf("block 2 does not link to block 1")
	}
}

func TestApplyTraitUpdateRejectsOutOfRange(t *testing.T) {
	g := seeded()
	_, err := g.ApplyTraitUpdate(context.Background(), "3", core.TraitVector{Popularity: 101})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestKillAgentTwiceIsTerminal(t *testing.T) {
	g := seeded()
	if _, err := g.KillAgent(context.Background(), "1", "7"); err != nil {
		t.Fatalf("KillAgent: %v", err)
	}
	_, err := g.KillAgent(context.Background(), "1", "7")
	if !errors.Is(err, core.ErrAlreadyEliminated) || core.IsRetryable(err) {
		t.Fatalf("second kill err = %v", err)
	}
	living, _ := g.GetLivingParticipants(context.Background(), "1")
	if len(living) != 1 {
		t.Fatalf("living = %d, want 1", len(living))
	}
}

func TestFailNextInjectsWriteError(t *testing.T) {
	g := seeded()
	g.FailNext("KillAgent", errors.New("nonce too low"))
	_, err := g.KillAgent(context.Background(), "1", "3")
	if !errors.Is(err, core.ErrChainWrite) || !core.IsRetryable(err) {
		t.Fatalf("err = %v", err)
	}
	if a, _ := g.Agent("3"); !a.IsAlive {
		t.Fatalf("failed kill still marked agent dead")
	}
	if _, err := g.KillAgent(context.Background(), "1", "3"); err != nil {
		t.Fatalf("fault should apply once: %v", err)
	}
}

func TestCancelledContextIsTimeout(t *testing.T) {
	g := seeded()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.ApplyTraitUpdate(ctx, "3", core.TraitVector{}); !errors.Is(err, core.ErrTimeout) {
		t.Fatalf("err = %v", err)
	}
}

func TestShowABIPacks(t *testing.T) {
	parsed, err := ParseShowABI()
	if err != nil {
		t.Fatalf("ParseShowABI: %v", err)
	}
	id, err := parseID("agent", "7")
	if err != nil {
		t.Fatalf("parseID: %v", err)
	}
	tv := core.TraitVector{Popularity: 75, Aggression: 40, Loyalty: 60, Resilience: 70, Charisma: 80, Suspicion: 20, Energy: 90}
	data, err := parsed.Pack("updateAgentTraits", append([]interface{}{id}, traitArgs(tv)...)...)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if len(data) != 4+8*32 {
		t.Fatalf("calldata length = %d", len(data))
	}
	if _, err := parseID("show", "abc"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("parseID(abc) err = %v", err)
	}
}

func TestDecodeAgent(t *testing.T) {
	out := []interface{}{"Alice", true, uint8(75), uint8(40), uint8(60), uint8(70), uint8(80), uint8(20), uint8(90)}
	a, err := decodeAgent("3", out)
	if err != nil {
		t.Fatalf("decodeAgent: %v", err)
	}
	if a.RiskScore() != -155 || !a.IsAlive || a.Name != "Alice" {
		t.Fatalf("agent = %+v", a)
	}
	if _, err := decodeAgent("3", out[:3]); err == nil {
		t.Fatalf("expected error for short output")
	}
}
