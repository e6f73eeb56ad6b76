package actions

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/NethermindEth/chaoschain-reality/core"
)

func mid() core.TraitVector {
	return core.TraitVector{Popularity: 50, Aggression: 50, Loyalty: 50, Resilience: 50, Charisma: 50, Suspicion: 50, Energy: 50}
}

func agent(id, name string, tv core.TraitVector) core.Agent {
	return core.Agent{ID: id, Name: name, IsAlive: true, Traits: tv}
}

func pair() []core.Agent {
	return []core.Agent{agent("3", "Alice", mid()), agent("7", "Bob", mid())}
}

func assertApplied(t *testing.T, ch core.TraitChange, want core.TraitDelta) {
	t.Helper()
	if !reflect.DeepEqual(ch.Applied, want) {
		t.Fatalf("%s (%s) applied = %v, want %v", ch.Name, ch.Role, ch.Applied, want)
	}
}

func TestArgueFirstWins(t *testing.T) {
	c := NewCatalog(&SequenceRand{Floats: []float64{0.1}})
	out, err := c.Apply("argue", pair())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Branch != "first_wins" || out.Changes[0].Role != "winner" || out.Changes[1].Role != "loser" {
		t.Fatalf("unexpected branch/roles: %s %s %s", out.Branch, out.Changes[0].Role, out.Changes[1].Role)
	}
	assertApplied(t, out.Changes[0], core.TraitDelta{core.Aggression: 10, core.Suspicion: 5, core.Energy: -10, core.Popularity: 5})
	assertApplied(t, out.Changes[1], core.TraitDelta{core.Aggression: 10, core.Suspicion: 5, core.Energy: -10, core.Popularity: -15})
}

func TestArgueSecondWins(t *testing.T) {
	c := NewCatalog(&SequenceRand{Floats: []float64{0.5}})
	out, err := c.Apply("argue", pair())
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Branch != "second_wins" || out.Changes[1].Role != "winner" {
		t.Fatalf("expected second agent to win, got %+v", out)
	}
	if out.Changes[1].After.Popularity != 55 || out.Changes[0].After.Popularity != 35 {
		t.Fatalf("popularity after = %d/%d", out.Changes[0].After.Popularity, out.Changes[1].After.Popularity)
	}
	if out.Headline != "Bob won a heated argument against Alice" {
		t.Fatalf("headline = %q", out.Headline)
	}
}

func TestDeterministicTwoAgentActions(t *testing.T) {
	cases := []struct {
		action string
		first  core.TraitDelta
		second core.TraitDelta
	}{
		{
			"form_alliance",
			core.TraitDelta{core.Loyalty: 15, core.Popularity: 8, core.Charisma: 5, core.Suspicion: -5, core.Energy: -5},
			core.TraitDelta{core.Loyalty: 15, core.Popularity: 8, core.Charisma: 5, core.Suspicion: -5, core.Energy: -5},
		},
		{
			"betray",
			core.TraitDelta{core.Aggression: 20, core.Popularity: -25, core.Loyalty: -20, core.Suspicion: 15, core.Energy: -15},
			core.TraitDelta{core.Loyalty: -15, core.Popularity: -10, core.Suspicion: 10, core.Energy: -10},
		},
		{
			"gossip",
			core.TraitDelta{core.Charisma: 8, core.Popularity: 5, core.Loyalty: -3, core.Energy: -8},
			core.TraitDelta{core.Suspicion: 12, core.Popularity: -8, core.Energy: -5},
		},
	}
	for _, tc := range cases {
		t.Run(tc.action, func(t *testing.T) {
			c := NewCatalog(&SequenceRand{})
			out, err := c.Apply(tc.action, pair())
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			assertApplied(t, out.Changes[0], tc.first)
			assertApplied(t, out.Changes[1], tc.second)

			again, err := c.Apply(tc.action, pair())
			if err != nil {
				t.Fatalf("second Apply: %v", err)
			}
			if !reflect.DeepEqual(out, again) {
				t.Fatalf("deterministic action produced different outcomes:\n%+v\n%+v", out, again)
			}
		})
	}
}

func TestPerformTaskBranches(t *testing.T) {
	performer := []core.Agent{agent("1", "Cara", core.TraitVector{Charisma: 60, Resilience: 40, Popularity: 50, Energy: 50, Suspicion: 50})}
	if p := TaskSuccessProbability(performer[0].Traits); p != 0.5 {
		t.Fatalf("success probability = %v, want 0.5", p)
	}

	success, err := NewCatalog(&SequenceRand{Floats: []float64{0.49}}).Apply("perform_task", performer)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if success.Branch != "success" {
		t.Fatalf("branch = %s, want success", success.Branch)
	}
	assertApplied(t, success.Changes[0], core.TraitDelta{core.Energy: -15, core.Popularity: 12, core.Resilience: 5, core.Charisma: 3})

	failure, err := NewCatalog(&SequenceRand{Floats: []float64{0.5}}).Apply("perform_task", performer)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if failure.Branch != "failure" {
		t.Fatalf("branch = %s, want failure", failure.Branch)
	}
	assertApplied(t, failure.Changes[0], core.TraitDelta{core.Energy: -15, core.Popularity: -8, core.Resilience: -3, core.Suspicion: 5})
}

func TestAudienceVoteBranches(t *testing.T) {
	subject := []core.Agent{agent("1", "Dex", mid())}
	if p := AudienceApprovalProbability(subject[0].Traits); math.Abs(p-0.65) > 1e-9 {
		t.Fatalf("approval probability = %v, want 0.65", p)
	}

	positive, err := NewCatalog(&SequenceRand{Floats: []float64{0.64}}).Apply("audience_vote", subject)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if positive.Branch != "positive" {
		t.Fatalf("branch = %s", positive.Branch)
	}
	assertApplied(t, positive.Changes[0], core.TraitDelta{core.Popularity: 15, core.Charisma: 5, core.Suspicion: -5})

	negative, err := NewCatalog(&SequenceRand{Floats: []float64{0.66}}).Apply("audience_vote", subject)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if negative.Branch != "negative" {
		t.Fatalf("branch = %s", negative.Branch)
	}
	assertApplied(t, negative.Changes[0], core.TraitDelta{core.Popularity: -20, core.Suspicion: 10, core.Charisma: -3})
}

func TestAudienceVoteFloorForUnpopularAgents(t *testing.T) {
	subject := []core.Agent{agent("1", "Eve", core.TraitVector{})}
	out, err := NewCatalog(&SequenceRand{Floats: []float64{0.29}}).Apply("audience_vote", subject)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Branch != "positive" {
		t.Fatalf("a zero-popularity agent still has a 30%% chance; got %s", out.Branch)
	}
}

func TestRandomEventPicksEachSubEvent(t *testing.T) {
	for i, ev := range SubEvents {
		c := NewCatalog(&SequenceRand{Ints: []int{i}})
		out, err := c.Apply("random_event", []core.Agent{agent("1", "Fay", mid())})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if out.Branch != ev.Name {
			t.Fatalf("draw %d: branch = %s, want %s", i, out.Branch, ev.Name)
		}
		assertApplied(t, out.Changes[0], ev.Delta)
	}
}

func TestSequenceRandWrapsNegativeDraws(t *testing.T) {
	c := NewCatalog(&SequenceRand{Ints: []int{-1}})
	out, err := c.Apply("random_event", []core.Agent{agent("1", "Gus", mid())})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if want := SubEvents[len(SubEvents)-1].Name; out.Branch != want {
		t.Fatalf("branch = %s, want %s", out.Branch, want)
	}
	if v := (&SequenceRand{Ints: []int{-7}}).Intn(6); v != 5 {
		t.Fatalf("Intn(6) with -7 = %d, want 5", v)
	}
}

func TestArityEnforcedBeforeMath(t *testing.T) {
	rng := &SequenceRand{Floats: []float64{0.1}}
	c := NewCatalog(rng)

	if _, err := c.Apply("argue", []core.Agent{agent("3", "Alice", mid())}); !errors.Is(err, core.ErrInvalidArity) {
		t.Fatalf("argue with one agent: err = %v", err)
	}
	if _, err := c.Apply("perform_task", pair()); !errors.Is(err, core.ErrInvalidArity) {
		t.Fatalf("perform_task with two agents: err = %v", err)
	}
	if rng.fi != 0 {
		t.Fatalf("random source was consumed before validation failed")
	}
}

func TestRejectsUnknownAndDuplicate(t *testing.T) {
	c := NewCatalog(nil)
	if _, err := c.Apply("fly", pair()); !errors.Is(err, core.ErrUnknownAction) {
		t.Fatalf("unknown action: err = %v", err)
	}
	a := agent("3", "Alice", mid())
	if _, err := c.Apply("betray", []core.Agent{a, a}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("duplicate ids: err = %v", err)
	}
}

// Every branch of every action, applied to vectors pinned at 0 and at 100, stays in range.
func TestClampingAtBoundaries(t *testing.T) {
	floor := core.TraitVector{}
	ceiling := core.TraitVector{Popularity: 100, Aggression: 100, Loyalty: 100, Resilience: 100, Charisma: 100, Suspicion: 100, Energy: 100}
	draws := []*SequenceRand{
		{Floats: []float64{0}, Ints: []int{0}},
		{Floats: []float64{0.999}, Ints: []int{1}},
		{Ints: []int{2}},
		{Ints: []int{3}},
		{Ints: []int{4}},
		{Ints: []int{5}},
	}
	for _, base := range []core.TraitVector{floor, ceiling} {
		for _, rng := range draws {
			c := NewCatalog(rng)
			for _, d := range c.Definitions() {
				agents := []core.Agent{agent("1", "A", base), agent("2", "B", base)}[:d.Arity]
				out, err := c.Apply(string(d.Name), agents)
				if err != nil {
					t.Fatalf("%s: %v", d.Name, err)
				}
				for _, ch := range out.Changes {
					if err := ch.After.Validate(); err != nil {
						t.Fatalf("%s from %+v: %v", d.Name, base, err)
					}
				}
			}
		}
	}
}

func TestCatalogNames(t *testing.T) {
	want := []string{"argue", "form_alliance", "betray", "perform_task", "gossip", "audience_vote", "random_event"}
	if got := NewCatalog(nil).Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Names = %v, want %v", got, want)
	}
}
