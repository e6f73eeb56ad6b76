package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/NethermindEth/chaoschain-reality/core"
)

func TestGenerateCast(t *testing.T) {
	llm := &cannedLLM{reply: "```json\n[" +
		`{"name": "Alice", "traits": {"popularity": 60, "aggression": 130, "loyalty": 70, "resilience": 50, "charisma": 65, "suspicion": -4, "energy": 80}},` +
		`{"name": "Bob", "traits": {"popularity": 40}},` +
		`{"name": "Cara", "traits": {"energy": 90}}` +
		"]\n```"}
	cast, err := GenerateCast(context.Background(), llm, "desert island", 2)
	if err != nil {
		t.Fatalf("GenerateCast: %v", err)
	}
	if len(cast) != 2 {
		t.Fatalf("cast size = %d, want 2", len(cast))
	}
	if cast[0].ID != "1" || cast[1].ID != "2" || !cast[0].IsAlive {
		t.Fatalf("cast = %+v", cast)
	}
	if cast[0].Traits.Aggression != 100 || cast[0].Traits.Suspicion != 0 {
		t.Fatalf("traits not clamped: %+v", cast[0].Traits)
	}
	if !strings.Contains(llm.prompt, `"desert island"`) {
		t.Fatalf("prompt missing theme: %s", llm.prompt)
	}
}

func TestGenerateCastRejects(t *testing.T) {
	if _, err := GenerateCast(context.Background(), nil, "x", 4); !errors.Is(err, core.ErrDecisionService) {
		t.Fatalf("nil llm: err = %v", err)
	}
	if _, err := GenerateCast(context.Background(), &cannedLLM{}, "x", 1); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("size 1: err = %v", err)
	}
	if _, err := GenerateCast(context.Background(), &cannedLLM{reply: "no cast today"}, "x", 3); !errors.Is(err, core.ErrInvalidDecisionFormat) {
		t.Fatalf("prose reply: err = %v", err)
	}
	dup := `[{"name": "Al"}, {"name": "Al"}]`
	if _, err := ParseCast(dup); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("duplicate names: err = %v", err)
	}
}
