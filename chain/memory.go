package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// Tx is a write recorded by the memory gateway.
type Tx struct {
	Method    string            `json:"method"`
	ShowID    string            `json:"showId,omitempty"`
	AgentID   string            `json:"agentId"`
	Traits    *core.TraitVector `json:"traits,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// Block groups one write. Each write is mined into its own block.
type Block struct {
	Height    uint64 `json:"height"`
	PrevHash  string `json:"prev_hash"`
	Tx        Tx     `json:"tx"`
	Timestamp int64  `json:"timestamp"`
}

// Hash returns the block's keccak hash.
func (b *Block) Hash() string {
	data, err := json.Marshal(b)
	if err != nil {
		return ""
	}
	return crypto.Keccak256Hash(data).Hex()
}

// MemoryGateway is an in-process show ledger for local runs and tests.
type MemoryGateway struct {
	mu     sync.Mutex
	shows  map[string]*core.Show
	agents map[string]*core.Agent
	blocks []Block
	faults map[string]error
}

// NewMemoryGateway returns a gateway holding only a genesis block.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		shows:  make(map[string]*core.Show),
		agents: make(map[string]*core.Agent),
		blocks: []Block{{Height: 0, PrevHash: "0x0", Timestamp: time.Now().Unix()}},
		faults: make(map[string]error),
	}
}

// AddShow registers a show with the given roster. Agents are added or replaced.
func (m *MemoryGateway) AddShow(showID string, active bool, agents ...core.Agent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	show := &core.Show{ID: showID, IsActive: active, StartTime: time.Now()}
	for _, a := range agents {
		a := a
		a.Traits = a.Traits.Clamped()
		m.agents[a.ID] = &a
		show.ParticipantIDs = append(show.ParticipantIDs, a.ID)
	}
	m.shows[showID] = show
}

// SetActive flips a show's active flag.
func (m *MemoryGateway) SetActive(showID string, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shows[showID]; ok {
		s.IsActive = active
		if !active {
			s.EndTime = time.Now()
		}
	}
}

// FailNext makes the next call of method ("GetShow", "GetLivingParticipants",
// "ApplyTraitUpdate" or "KillAgent") return err.
func (m *MemoryGateway) FailNext(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faults[method] = err
}

// Agent returns a snapshot of an agent's stored state.
func (m *MemoryGateway) Agent(agentID string) (core.Agent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.agents[agentID]
	if !ok {
		return core.Agent{}, false
	}
	return *a, true
}

// Blocks returns a copy of the mined blocks, genesis included.
func (m *MemoryGateway) Blocks() []Block {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Block, len(m.blocks))
	copy(out, m.blocks)
	return out
}

func (m *MemoryGateway) fault(method string) error {
	err, ok := m.faults[method]
	if !ok {
		return nil
	}
	delete(m.faults, method)
	return err
}

func (m *MemoryGateway) GetShow(ctx context.Context, showID string) (core.Show, error) {
	if err := ctx.Err(); err != nil {
		return core.Show{}, core.TimeoutError("read show", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("GetShow"); err != nil {
		return core.Show{}, core.ChainReadError("show "+showID, err)
	}
	s, ok := m.shows[showID]
	if !ok {
		return core.Show{}, core.ChainReadError("show "+showID, fmt.Errorf("show %s does not exist", showID))
	}
	show := *s
	show.ParticipantIDs = append([]string(nil), s.ParticipantIDs...)
	return show, nil
}

func (m *MemoryGateway) GetLivingParticipants(ctx context.Context, showID string) ([]core.Agent, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.TimeoutError("read participants", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fault("GetLivingParticipants"); err != nil {
		return nil, core.ChainReadError("participants of show "+showID, err)
	}
	s, ok := m.shows[showID]
	if !ok {
		return nil, core.ChainReadError("participants of show "+showID, fmt.Errorf("show %s does not exist", showID))
	}
	var living []core.Agent
	for _, id := range s.ParticipantIDs {
		if a := m.agents[id]; a != nil && a.IsAlive {
			living = append(living, *a)
		}
	}
	return living, nil
}

func (m *MemoryGateway) ApplyTraitUpdate(ctx context.Context, agentID string, traits core.TraitVector) (*core.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.TimeoutError("update traits", err)
	}
	if err := traits.Validate(); err != nil {
		return nil, core.ValidationError("agent %s: %v", agentID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	op := "update traits of agent " + agentID
	if err := m.fault("ApplyTraitUpdate"); err != nil {
		return nil, core.ChainWriteError(op, err)
	}
	a, ok := m.agents[agentID]
	if !ok {
		return nil, core.ChainWriteError(op, fmt.Errorf("agent %s does not exist", agentID))
	}
	a.Traits = traits
	return m.mine(Tx{Method: "updateAgentTraits", AgentID: agentID, Traits: &traits}), nil
}

func (m *MemoryGateway) KillAgent(ctx context.Context, showID, agentID string) (*core.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.TimeoutError("eliminate agent", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	op := "eliminate agent " + agentID
	if err := m.fault("KillAgent"); err != nil {
		return nil, core.ChainWriteError(op, err)
	}
	s, ok := m.shows[showID]
	if !ok || !s.HasParticipant(agentID) {
		return nil, core.ChainWriteError(op, fmt.Errorf("agent %s is not in show %s", agentID, showID))
	}
	a := m.agents[agentID]
	if !a.IsAlive {
		return nil, core.AlreadyEliminatedError(agentID)
	}
	a.IsAlive = false
	return m.mine(Tx{Method: "killAgent", ShowID: showID, AgentID: agentID}), nil
}

// mine appends a block for tx. Caller holds mu.
func (m *MemoryGateway) mine(tx Tx) *core.Receipt {
	now := time.Now()
	tx.Timestamp = now.UnixNano()
	last := m.blocks[len(m.blocks)-1]
	b := Block{Height: last.Height + 1, PrevHash: last.Hash(), Tx: tx, Timestamp: now.Unix()}
	m.blocks = append(m.blocks, b)

	txData, _ := json.Marshal(tx)
	return &core.Receipt{
		Hash:        crypto.Keccak256Hash(txData, []byte(b.PrevHash)).Hex(),
		BlockNumber: b.Height,
		GasUsed:     uint64(21000 + 16*len(txData)),
	}
}
