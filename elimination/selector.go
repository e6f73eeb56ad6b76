package elimination

import (
	"fmt"
	"sort"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// CandidatePoolSize is how many of the riskiest agents are considered for elimination.
const CandidatePoolSize = 3

// Selection is the result of an elimination pass. Nothing has been written to the chain.
type Selection struct {
	Target     core.Agent         `json:"eliminatedAgent"`
	Reason     string             `json:"eliminationReason"`
	Candidates []core.Agent       `json:"candidates"`
	Rankings   []core.RiskRanking `json:"riskRankings"`
	Remaining  []core.Agent       `json:"remainingAgents"`
}

type scored struct {
	agent core.Agent
	risk  int
}

// Rank orders agents by risk score descending. Agents with equal scores keep roster order.
func Rank(agents []core.Agent) []core.RiskRanking {
	sorted := sortByRisk(agents)
	out := make([]core.RiskRanking, 0, len(sorted))
	for i, s := range sorted {
		out = append(out, core.RiskRanking{
			Rank:       i + 1,
			AgentID:    s.agent.ID,
			Name:       s.agent.Name,
			RiskScore:  s.risk,
			Popularity: s.agent.Traits.Popularity,
		})
	}
	return out
}

func sortByRisk(agents []core.Agent) []scored {
	out := make([]scored, 0, len(agents))
	for _, a := range agents {
		out = append(out, scored{agent: a, risk: a.RiskScore()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].risk > out[j].risk
	})
	return out
}

// better reports whether next should replace acc: lower popularity wins,
// then higher risk. A full tie keeps acc.
func better(acc, next scored) bool {
	if next.agent.Traits.Popularity != acc.agent.Traits.Popularity {
		return next.agent.Traits.Popularity < acc.agent.Traits.Popularity
	}
	return next.risk > acc.risk
}

// Select picks the elimination target among the living agents of a roster.
// Dead agents are ignored. An empty eligible set returns NoEligibleAgentsError.
func Select(showID string, roster []core.Agent) (*Selection, error) {
	eligible := core.LivingAgents(roster)
	if len(eligible) == 0 {
		return nil, core.NoEligibleAgentsError(showID)
	}

	sorted := sortByRisk(eligible)
	n := CandidatePoolSize
	if len(sorted) < n {
		n = len(sorted)
	}
	pool := sorted[:n]

	acc := pool[0]
	for _, next := range pool[1:] {
		if better(acc, next) {
			acc = next
		}
	}

	sel := &Selection{
		Target:   acc.agent,
		Reason:   fmt.Sprintf("Lowest popularity (%d) among high-risk candidates", acc.agent.Traits.Popularity),
		Rankings: Rank(eligible),
	}
	for _, c := range pool {
		sel.Candidates = append(sel.Candidates, c.agent)
	}
	for _, a := range eligible {
		if a.ID != acc.agent.ID {
			sel.Remaining = append(sel.Remaining, a)
		}
	}
	return sel, nil
}
