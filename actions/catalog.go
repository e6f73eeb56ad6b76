package actions

import (
	"fmt"
	"strings"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// Name identifies a catalog entry.
type Name string

const (
	Argue        Name = "argue"
	FormAlliance Name = "form_alliance"
	Betray       Name = "betray"
	PerformTask  Name = "perform_task"
	Gossip       Name = "gossip"
	AudienceVote Name = "audience_vote"
	RandomEvent  Name = "random_event"
)

// Definition declares an action's arity, roles and how it resolves.
type Definition struct {
	Name        Name
	Arity       int
	Roles       []string // parameter roles in order
	Description string
	resolve     func(agents []core.Agent, rng RandSource) resolution
}

type resolution struct {
	branch   string
	roles    []string
	deltas   []core.TraitDelta
	headline string
}

// Outcome is the computed result of an action. Nothing has been written yet.
type Outcome struct {
	Action   Name               `json:"action"`
	Branch   string             `json:"branch,omitempty"`
	Headline string             `json:"headline"`
	Changes  []core.TraitChange `json:"traitChanges"`
}

// Change returns the change entry for agentID, if present.
func (o *Outcome) Change(agentID string) (core.TraitChange, bool) {
	for _, c := range o.Changes {
		if c.AgentID == agentID {
			return c, true
		}
	}
	return core.TraitChange{}, false
}

// Catalog holds the fixed action table and the random source used for branch draws.
type Catalog struct {
	defs  map[Name]*Definition
	order []Name
	rng   RandSource
}

// NewCatalog builds the catalog. A nil rng uses DefaultRand.
func NewCatalog(rng RandSource) *Catalog {
	if rng == nil {
		rng = DefaultRand()
	}
	c := &Catalog{defs: make(map[Name]*Definition), rng: rng}
	for _, d := range definitions() {
		c.defs[d.Name] = d
		c.order = append(c.order, d.Name)
	}
	return c
}

// Names lists every action in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, string(n))
	}
	return out
}

// Definitions lists every entry in catalog order.
func (c *Catalog) Definitions() []*Definition {
	out := make([]*Definition, 0, len(c.order))
	for _, n := range c.order {
		out = append(out, c.defs[n])
	}
	return out
}

// Lookup returns the definition for name or an UnknownActionError.
func (c *Catalog) Lookup(name string) (*Definition, error) {
	d, ok := c.defs[Name(strings.TrimSpace(name))]
	if !ok {
		return nil, core.UnknownActionError(name)
	}
	return d, nil
}

// ValidateParams checks the action exists and the agent id list fits its arity.
func (c *Catalog) ValidateParams(name string, agentIDs []string) (*Definition, error) {
	d, err := c.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(agentIDs) != d.Arity {
		return nil, core.InvalidArityError(string(d.Name), d.Arity, len(agentIDs))
	}
	seen := make(map[string]bool, len(agentIDs))
	for _, id := range agentIDs {
		if strings.TrimSpace(id) == "" {
			return nil, core.ValidationError("action %s: empty agent id", d.Name)
		}
		if seen[id] {
			return nil, core.ValidationError("action %s: agent %s listed twice", d.Name, id)
		}
		seen[id] = true
	}
	return d, nil
}

// Apply computes each target's next trait vector. agents must be in parameter order.
// Arity is enforced before any draw or trait math.
func (c *Catalog) Apply(name string, agents []core.Agent) (*Outcome, error) {
	ids := make([]string, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	d, err := c.ValidateParams(name, ids)
	if err != nil {
		return nil, err
	}

	res := d.resolve(agents, c.rng)
	outcome := &Outcome{
		Action:   d.Name,
		Branch:   res.branch,
		Headline: res.headline,
		Changes:  make([]core.TraitChange, 0, len(agents)),
	}
	for i, a := range agents {
		outcome.Changes = append(outcome.Changes, core.NewTraitChange(a, res.roles[i], res.deltas[i]))
	}
	return outcome, nil
}

// Message renders a one-line summary of the outcome for API responses.
func (o *Outcome) Message() string {
	var parts []string
	for _, ch := range o.Changes {
		parts = append(parts, fmt.Sprintf("%s (%s): %s", ch.Name, ch.Role, ch.Summary))
	}
	return fmt.Sprintf("%s. %s", o.Headline, strings.Join(parts, "; "))
}
