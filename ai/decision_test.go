package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NethermindEth/chaoschain-reality/actions"
	"github.com/NethermindEth/chaoschain-reality/core"
)

type cannedLLM struct {
	reply  string
	err    error
	prompt string
	calls  int
}

func (c *cannedLLM) Complete(_ context.Context, _, prompt string) (string, error) {
	c.calls++
	c.prompt = prompt
	return c.reply, c.err
}

func roster() []core.Agent {
	tv := core.TraitVector{Popularity: 75, Aggression: 40, Loyalty: 60, Resilience: 70, Charisma: 80, Suspicion: 20, Energy: 90}
	return []core.Agent{
		{ID: "3", Name: "Alice", IsAlive: true, Traits: tv},
		{ID: "7", Name: "Bob", IsAlive: true, Traits: tv},
		{ID: "9", Name: "Cleo", IsAlive: false, Traits: tv},
	}
}

func TestParseDecision(t *testing.T) {
	catalog := actions.NewCatalog(nil)
	eligible := core.LivingAgents(roster())

	d, err := ParseDecision("argue(3,7)", catalog, eligible)
	if err != nil {
		t.Fatalf("ParseDecision: %v", err)
	}
	if d.Action != "argue" || len(d.Parameters) != 2 || d.Parameters[0] != "3" || d.Parameters[1] != "7" {
		t.Fatalf("decision = %+v", d)
	}

	cases := []struct {
		raw  string
		want error
	}{
		{"fly(1)", core.ErrUnknownAction},
		{"argue(3,7", core.ErrInvalidDecisionFormat},
		{"", core.ErrInvalidDecisionFormat},
		{"I think argue(3,7)", core.ErrInvalidDecisionFormat},
		{"argue(3,42)", core.ErrInvalidAgentReference},
		{"gossip(3,9)", core.ErrInvalidAgentReference},
		{"argue(3)", core.ErrInvalidArity},
		{"perform_task(3,7)", core.ErrInvalidArity},
	}
	for _, tc := range cases {
		_, err := ParseDecision(tc.raw, catalog, eligible)
		if !errors.Is(err, tc.want) {
			t.Errorf("ParseDecision(%q) err = %v, want %v", tc.raw, err, tc.want)
		}
	}
}

func TestParseDecisionKeepsRawText(t *testing.T) {
	_, err := ParseDecision("argue(3,7", actions.NewCatalog(nil), roster())
	tagged, ok := core.AsError(err)
	if !ok || tagged.Detail != "argue(3,7" {
		t.Fatalf("err = %#v, want raw text in detail", err)
	}

	_, err = ParseDecision("betray(3, 42)", actions.NewCatalog(nil), roster())
	tagged, ok = core.AsError(err)
	if !ok || tagged.Detail != "42" {
		t.Fatalf("err = %#v, want offending id in detail", err)
	}
}

func TestParseDecisionTrimsReply(t *testing.T) {
	d, err := ParseDecision("\n  betray( 7 , 3 )  \nbecause drama", actions.NewCatalog(nil), roster())
	if err != nil {
		t.Fatalf("ParseDecision: %v", err)
	}
	if d.String() != "betray(7,3)" {
		t.Fatalf("decision = %s", d)
	}
}

// Only the first non-empty line is read. Later lines are commentary and never validated.
func TestParseDecisionIgnoresLaterLines(t *testing.T) {
	d, err := ParseDecision("argue(3,7)\nfly(1)", actions.NewCatalog(nil), roster())
	if err != nil {
		t.Fatalf("ParseDecision: %v", err)
	}
	if d.String() != "argue(3,7)" || d.RawResponse != "argue(3,7)\nfly(1)" {
		t.Fatalf("decision = %+v", d)
	}

	d, err = ParseDecision("```\nform_alliance(3,7)\n```", actions.NewCatalog(nil), roster())
	if err != nil || d.Action != "form_alliance" {
		t.Fatalf("fenced reply: %+v, %v", d, err)
	}

	if _, err := ParseDecision("fly(1)\nargue(3,7)", actions.NewCatalog(nil), roster()); !errors.Is(err, core.ErrUnknownAction) {
		t.Fatalf("a valid second line must not rescue an invalid first line: %v", err)
	}
}

func TestDecideUsesLLM(t *testing.T) {
	llm := &cannedLLM{reply: "gossip(7,3)"}
	c := NewClient(llm, actions.NewCatalog(nil), nil)

	d, err := c.Decide(context.Background(), "1", roster(), "Bob is feeling petty")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Action != "gossip" || d.RawResponse != "gossip(7,3)" {
		t.Fatalf("decision = %+v", d)
	}
	if strings.Contains(llm.prompt, "Cleo") {
		t.Fatalf("prompt lists a dead agent:\n%s", llm.prompt)
	}
	if !strings.Contains(llm.prompt, "risk -155") || !strings.Contains(llm.prompt, "Bob is feeling petty") {
		t.Fatalf("prompt missing risk or context:\n%s", llm.prompt)
	}
}

func TestDecideWrapsServiceErrors(t *testing.T) {
	c := NewClient(&cannedLLM{err: errors.New("connection refused")}, actions.NewCatalog(nil), nil)
	_, err := c.Decide(context.Background(), "1", roster(), "")
	if !errors.Is(err, core.ErrDecisionService) || !core.IsRetryable(err) {
		t.Fatalf("err = %v, want retryable DecisionService", err)
	}

	c = NewClient(&cannedLLM{err: context.DeadlineExceeded}, actions.NewCatalog(nil), nil)
	_, err = c.Decide(context.Background(), "1", roster(), "")
	if !errors.Is(err, core.ErrTimeout) {
		t.Fatalf("err = %v, want Timeout", err)
	}
}

func TestDecideEmptyRosterSkipsService(t *testing.T) {
	llm := &cannedLLM{reply: "argue(3,7)"}
	c := NewClient(llm, actions.NewCatalog(nil), nil)
	_, err := c.Decide(context.Background(), "1", nil, "")
	if !errors.Is(err, core.ErrNoEligibleAgents) {
		t.Fatalf("err = %v", err)
	}
	if llm.calls != 0 {
		t.Fatalf("service called %d times", llm.calls)
	}
}

func TestRandomFallbackProducesValidDecisions(t *testing.T) {
	c := NewClient(nil, actions.NewCatalog(nil), &actions.SequenceRand{Ints: []int{0, 1, 2, 3, 4, 5, 6}})
	single := []core.Agent{{ID: "5", Name: "Solo", IsAlive: true}}
	for i := 0; i < 14; i++ {
		d, err := c.Decide(context.Background(), "1", roster(), "")
		if err != nil {
			t.Fatalf("Decide with two agents: %v", err)
		}
		if len(d.Parameters) == 2 && d.Parameters[0] == d.Parameters[1] {
			t.Fatalf("duplicate parameters in %s", d)
		}
		if _, err := c.Decide(context.Background(), "1", single, ""); err != nil {
			t.Fatalf("Decide with one agent: %v", err)
		}
	}
}
