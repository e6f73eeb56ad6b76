package core

import "time"

// Agent is a show participant as read from the contract.
type Agent struct {
	ID      string      `json:"agentId"`
	Name    string      `json:"name"`
	IsAlive bool        `json:"isAlive"`
	Traits  TraitVector `json:"traits"`
}

// RiskScore returns the agent's current risk score.
func (a Agent) RiskScore() int {
	return RiskScore(a.Traits)
}

// Show is a bounded competition over a roster of agents.
type Show struct {
	ID             string    `json:"showId"`
	IsActive       bool      `json:"isActive"`
	ParticipantIDs []string  `json:"participantIds"`
	StartTime      time.Time `json:"startTime,omitempty"`
	EndTime        time.Time `json:"endTime,omitempty"`
}

// HasParticipant reports whether agentID is on the show's roster.
func (s Show) HasParticipant(agentID string) bool {
	for _, id := range s.ParticipantIDs {
		if id == agentID {
			return true
		}
	}
	return false
}

// AgentSummary is the compact agent view returned alongside decisions.
type AgentSummary struct {
	AgentID   string `json:"agentId"`
	Name      string `json:"name"`
	RiskScore int    `json:"riskScore"`
}

// RiskRanking is one row of a show's risk table.
type RiskRanking struct {
	Rank       int    `json:"rank"`
	AgentID    string `json:"agentId"`
	Name       string `json:"name"`
	RiskScore  int    `json:"riskScore"`
	Popularity int    `json:"popularity"`
}

// LivingAgents filters a roster down to agents that are still alive, preserving order.
func LivingAgents(agents []Agent) []Agent {
	living := make([]Agent, 0, len(agents))
	for _, a := range agents {
		if a.IsAlive {
			living = append(living, a)
		}
	}
	return living
}

// Summaries maps agents to their compact view.
func Summaries(agents []Agent) []AgentSummary {
	out := make([]AgentSummary, 0, len(agents))
	for _, a := range agents {
		out = append(out, AgentSummary{AgentID: a.ID, Name: a.Name, RiskScore: a.RiskScore()})
	}
	return out
}

// FindAgent returns the agent with the given id from a roster.
func FindAgent(agents []Agent, id string) (Agent, bool) {
	for _, a := range agents {
		if a.ID == id {
			return a, true
		}
	}
	return Agent{}, false
}

// Receipt is the confirmation of a contract write.
type Receipt struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"blockNumber"`
	GasUsed     uint64 `json:"gasUsed"`
}
