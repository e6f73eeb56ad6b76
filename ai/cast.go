package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// MaxCast bounds how many contestants one GenerateCast call asks for.
const MaxCast = 20

type castMember struct {
	Name   string           `json:"name"`
	Traits core.TraitVector `json:"traits"`
}

const castSystem = "You are the casting director of a reality show."

// GenerateCast asks the text service for n contestants fitting theme.
// Ids are assigned 1..n in reply order and traits are clamped into range.
func GenerateCast(ctx context.Context, llm LLM, theme string, n int) ([]core.Agent, error) {
	if llm == nil {
		return nil, core.DecisionServiceError(fmt.Errorf("no text service configured"))
	}
	if n < 2 || n > MaxCast {
		return nil, core.ValidationError("cast size must be between 2 and %d, got %d", MaxCast, n)
	}
	prompt := fmt.Sprintf(`Create %d unique contestants for a reality show themed "%s".
Give every contestant a memorable name and seven traits between 0 and 100:
popularity, aggression, loyalty, resilience, charisma, suspicion, energy.
Make the cast diverse so alliances and conflicts emerge.

Return a JSON array only, no additional text, like:
[{"name": "Alice", "traits": {"popularity": 60, "aggression": 30, "loyalty": 70, "resilience": 50, "charisma": 65, "suspicion": 20, "energy": 80}}]`, n, theme)

	raw, err := llm.Complete(ctx, castSystem, prompt)
	if err != nil {
		return nil, core.BoundaryError("cast request", err, core.DecisionServiceError)
	}
	cast, err := ParseCast(raw)
	if err != nil {
		log.Printf("[AI] rejected cast reply: %v", err)
		return nil, err
	}
	if len(cast) > n {
		cast = cast[:n]
	}
	return cast, nil
}

// ParseCast decodes a JSON array of contestants, tolerating a fenced code block around it.
func ParseCast(raw string) ([]core.Agent, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "["); i >= 0 {
		if j := strings.LastIndex(raw, "]"); j > i {
			raw = raw[i : j+1]
		}
	}
	var members []castMember
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		return nil, core.InvalidDecisionFormatError(raw)
	}
	if len(members) == 0 {
		return nil, core.InvalidDecisionFormatError(raw)
	}
	out := make([]core.Agent, 0, len(members))
	seen := make(map[string]bool)
	for i, m := range members {
		name := strings.TrimSpace(m.Name)
		if name == "" || seen[name] {
			return nil, core.ValidationError("cast member %d has a missing or duplicate name", i+1)
		}
		seen[name] = true
		out = append(out, core.Agent{
			ID:      strconv.Itoa(i + 1),
			Name:    name,
			IsAlive: true,
			Traits:  m.Traits.Clamped(),
		})
	}
	return out, nil
}
