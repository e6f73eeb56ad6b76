package core

import "time"

// CycleKind names what a ledger entry recorded.
type CycleKind string

const (
	CycleDecision    CycleKind = "decision"
	CycleAction      CycleKind = "action"
	CycleElimination CycleKind = "elimination"
)

// CycleRecord is one engine invocation as kept in the ledger.
type CycleRecord struct {
	ID                string        `json:"id"`
	ShowID            string        `json:"showId"`
	Kind              CycleKind     `json:"kind"`
	Action            string        `json:"action,omitempty"`
	Parameters        []string      `json:"parameters,omitempty"`
	Succeeded         bool          `json:"succeeded"`
	ErrorCode         ErrorCode     `json:"errorCode,omitempty"`
	Error             string        `json:"error,omitempty"`
	Changes           []TraitChange `json:"traitChanges,omitempty"`
	EliminatedAgentID string        `json:"eliminatedAgentId,omitempty"`
	Transactions      []Receipt     `json:"transactions,omitempty"`
	StartedAt         time.Time     `json:"startedAt"`
	FinishedAt        time.Time     `json:"finishedAt"`
}

// NewsItem is a headline shown in the show's feed.
type NewsItem struct {
	ID        string    `json:"id"`
	ShowID    string    `json:"showId"`
	Kind      string    `json:"kind"`
	Headline  string    `json:"headline"`
	Body      string    `json:"body,omitempty"`
	AgentIDs  []string  `json:"agentIds,omitempty"`
	TxHash    string    `json:"txHash,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventType tags messages on the live feed.
type EventType string

const (
	EventDecisionFetched EventType = "DECISION_FETCHED"
	EventActionApplied   EventType = "ACTION_APPLIED"
	EventAgentEliminated EventType = "AGENT_ELIMINATED"
	EventCycleFailed     EventType = "CYCLE_FAILED"
	EventNewsPosted      EventType = "NEWS_POSTED"
	EventShowArchived    EventType = "SHOW_ARCHIVED"
)

// Event is published to websocket clients and NATS.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ShowID    string      `json:"showId"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
