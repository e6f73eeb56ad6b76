package ai

import (
	"fmt"
	"strings"

	"github.com/NethermindEth/chaoschain-reality/actions"
	"github.com/NethermindEth/chaoschain-reality/core"
)

// BuildPrompt describes the living roster and the available actions.
func BuildPrompt(showID string, agents []core.Agent, extra string, catalog *actions.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Show %s. Living contestants:\n", showID)
	for _, a := range agents {
		t := a.Traits
		fmt.Fprintf(&b, "- id %s, %s: popularity %d, aggression %d, loyalty %d, resilience %d, charisma %d, suspicion %d, energy %d, risk %d\n",
			a.ID, a.Name, t.Popularity, t.Aggression, t.Loyalty, t.Resilience, t.Charisma, t.Suspicion, t.Energy, a.RiskScore())
	}

	b.WriteString("\nAvailable actions:\n")
	for _, d := range catalog.Definitions() {
		fmt.Fprintf(&b, "- %s (%d agent", d.Name, d.Arity)
		if d.Arity > 1 {
			b.WriteString("s")
		}
		fmt.Fprintf(&b, ": %s): %s\n", strings.Join(d.Roles, ", "), d.Description)
	}

	if extra = strings.TrimSpace(extra); extra != "" {
		fmt.Fprintf(&b, "\nProducer notes: %s\n", extra)
	}
	b.WriteString("\nPick the single most dramatic next action. Reply with one line like argue(3,7).")
	return b.String()
}
