package actions

import (
	"fmt"

	"github.com/NethermindEth/chaoschain-reality/core"
)

func definitions() []*Definition {
	return []*Definition{
		{
			Name:        Argue,
			Arity:       2,
			Roles:       []string{"participant", "participant"},
			Description: "Two agents argue; a coin flip decides the winner.",
			resolve:     resolveArgue,
		},
		{
			Name:        FormAlliance,
			Arity:       2,
			Roles:       []string{"ally", "ally"},
			Description: "Two agents form an alliance.",
			resolve:     resolveAlliance,
		},
		{
			Name:        Betray,
			Arity:       2,
			Roles:       []string{"betrayer", "betrayed"},
			Description: "The first agent betrays the second.",
			resolve:     resolveBetray,
		},
		{
			Name:        PerformTask,
			Arity:       1,
			Roles:       []string{"performer"},
			Description: "An agent attempts a task; charisma and resilience drive success.",
			resolve:     resolvePerformTask,
		},
		{
			Name:        Gossip,
			Arity:       2,
			Roles:       []string{"gossiper", "target"},
			Description: "The first agent gossips about the second.",
			resolve:     resolveGossip,
		},
		{
			Name:        AudienceVote,
			Arity:       1,
			Roles:       []string{"subject"},
			Description: "The audience votes on an agent; popularity drives a positive result.",
			resolve:     resolveAudienceVote,
		},
		{
			Name:        RandomEvent,
			Arity:       1,
			Roles:       []string{"subject"},
			Description: "Something unexpected happens to an agent.",
			resolve:     resolveRandomEvent,
		},
	}
}

var argueBoth = core.TraitDelta{core.Aggression: 10, core.Suspicion: 5, core.Energy: -10}

func resolveArgue(agents []core.Agent, rng RandSource) resolution {
	winner, loser := 0, 1
	if rng.Float64() >= 0.5 {
		winner, loser = 1, 0
	}
	deltas := make([]core.TraitDelta, 2)
	roles := make([]string, 2)
	deltas[winner] = argueBoth.Merge(core.TraitDelta{core.Popularity: 5})
	deltas[loser] = argueBoth.Merge(core.TraitDelta{core.Popularity: -15})
	roles[winner], roles[loser] = "winner", "loser"

	branch := "first_wins"
	if winner == 1 {
		branch = "second_wins"
	}
	return resolution{
		branch:   branch,
		roles:    roles,
		deltas:   deltas,
		headline: fmt.Sprintf("%s won a heated argument against %s", agents[winner].Name, agents[loser].Name),
	}
}

func resolveAlliance(agents []core.Agent, _ RandSource) resolution {
	both := core.TraitDelta{core.Loyalty: 15, core.Popularity: 8, core.Charisma: 5, core.Suspicion: -5, core.Energy: -5}
	return resolution{
		roles:    []string{"ally", "ally"},
		deltas:   []core.TraitDelta{both, both.Merge(nil)},
		headline: fmt.Sprintf("%s and %s formed an alliance", agents[0].Name, agents[1].Name),
	}
}

func resolveBetray(agents []core.Agent, _ RandSource) resolution {
	return resolution{
		roles: []string{"betrayer", "betrayed"},
		deltas: []core.TraitDelta{
			{core.Aggression: 20, core.Popularity: -25, core.Loyalty: -20, core.Suspicion: 15, core.Energy: -15},
			{core.Loyalty: -15, core.Popularity: -10, core.Suspicion: 10, core.Energy: -10},
		},
		headline: fmt.Sprintf("%s betrayed %s", agents[0].Name, agents[1].Name),
	}
}

// TaskSuccessProbability is (charisma + resilience) / 200.
func TaskSuccessProbability(tv core.TraitVector) float64 {
	return float64(tv.Charisma+tv.Resilience) / 200
}

func resolvePerformTask(agents []core.Agent, rng RandSource) resolution {
	always := core.TraitDelta{core.Energy: -15}
	if rng.Float64() < TaskSuccessProbability(agents[0].Traits) {
		return resolution{
			branch:   "success",
			roles:    []string{"performer"},
			deltas:   []core.TraitDelta{always.Merge(core.TraitDelta{core.Popularity: 12, core.Resilience: 5, core.Charisma: 3})},
			headline: fmt.Sprintf("%s aced the task", agents[0].Name),
		}
	}
	return resolution{
		branch:   "failure",
		roles:    []string{"performer"},
		deltas:   []core.TraitDelta{always.Merge(core.TraitDelta{core.Popularity: -8, core.Resilience: -3, core.Suspicion: 5})},
		headline: fmt.Sprintf("%s failed the task", agents[0].Name),
	}
}

func resolveGossip(agents []core.Agent, _ RandSource) resolution {
	return resolution{
		roles: []string{"gossiper", "target"},
		deltas: []core.TraitDelta{
			{core.Charisma: 8, core.Popularity: 5, core.Loyalty: -3, core.Energy: -8},
			{core.Suspicion: 12, core.Popularity: -8, core.Energy: -5},
		},
		headline: fmt.Sprintf("%s spread gossip about %s", agents[0].Name, agents[1].Name),
	}
}

// AudienceApprovalProbability is 0.3 + 0.7 * popularity / 100.
func AudienceApprovalProbability(tv core.TraitVector) float64 {
	return 0.3 + 0.7*(float64(tv.Popularity)/100)
}

func resolveAudienceVote(agents []core.Agent, rng RandSource) resolution {
	if rng.Float64() < AudienceApprovalProbability(agents[0].Traits) {
		return resolution{
			branch:   "positive",
			roles:    []string{"subject"},
			deltas:   []core.TraitDelta{{core.Popularity: 15, core.Charisma: 5, core.Suspicion: -5}},
			headline: fmt.Sprintf("The audience rallied behind %s", agents[0].Name),
		}
	}
	return resolution{
		branch:   "negative",
		roles:    []string{"subject"},
		deltas:   []core.TraitDelta{{core.Popularity: -20, core.Suspicion: 10, core.Charisma: -3}},
		headline: fmt.Sprintf("The audience turned on %s", agents[0].Name),
	}
}
