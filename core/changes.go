package core

// TraitChange records what an action did to one agent.
type TraitChange struct {
	AgentID string      `json:"agentId"`
	Name    string      `json:"name"`
	Role    string      `json:"role"`
	Before  TraitVector `json:"before"`
	After   TraitVector `json:"after"`
	Delta   TraitDelta  `json:"delta"`   // as declared by the action
	Applied TraitDelta  `json:"applied"` // after saturation
	Summary string      `json:"summary"`
}

// NewTraitChange computes the next vector for agent under delta.
func NewTraitChange(agent Agent, role string, delta TraitDelta) TraitChange {
	after := agent.Traits.Apply(delta)
	return TraitChange{
		AgentID: agent.ID,
		Name:    agent.Name,
		Role:    role,
		Before:  agent.Traits,
		After:   after,
		Delta:   delta,
		Applied: agent.Traits.Diff(after),
		Summary: delta.String(),
	}
}
