package actions

import (
	"fmt"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// SubEvent is one of the six outcomes random_event can draw.
type SubEvent struct {
	Name     string
	Delta    core.TraitDelta
	headline string
}

// SubEvents is drawn uniformly by index.
var SubEvents = []SubEvent{
	{
		Name:     "food_shortage",
		Delta:    core.TraitDelta{core.Energy: -20, core.Aggression: 10, core.Suspicion: 5},
		headline: "A food shortage left %s hungry and irritable",
	},
	{
		Name:     "secret_advantage",
		Delta:    core.TraitDelta{core.Popularity: 10, core.Charisma: 5, core.Suspicion: 8},
		headline: "%s found a secret advantage",
	},
	{
		Name:     "task_failure",
		Delta:    core.TraitDelta{core.Popularity: -10, core.Resilience: -5, core.Energy: -10},
		headline: "%s botched a surprise task",
	},
	{
		Name:     "unexpected_support",
		Delta:    core.TraitDelta{core.Popularity: 15, core.Resilience: 5, core.Loyalty: 5},
		headline: "%s received unexpected support from home",
	},
	{
		Name:     "backstab_attempt",
		Delta:    core.TraitDelta{core.Aggression: 15, core.Loyalty: -10, core.Suspicion: 15, core.Popularity: -5},
		headline: "%s was caught plotting a backstab",
	},
	{
		Name:     "moment_of_glory",
		Delta:    core.TraitDelta{core.Popularity: 20, core.Charisma: 10, core.Energy: -5},
		headline: "%s had a moment of glory",
	},
}

func resolveRandomEvent(agents []core.Agent, rng RandSource) resolution {
	ev := SubEvents[rng.Intn(len(SubEvents))]
	return resolution{
		branch:   ev.Name,
		roles:    []string{"subject"},
		deltas:   []core.TraitDelta{ev.Delta.Merge(nil)},
		headline: fmt.Sprintf(ev.headline, agents[0].Name),
	}
}
