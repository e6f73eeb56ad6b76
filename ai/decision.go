package ai

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/NethermindEth/chaoschain-reality/actions"
	"github.com/NethermindEth/chaoschain-reality/core"
)

var decisionPattern = regexp.MustCompile(`^(\w+)\(([^)]+)\)$`)

const systemPrompt = "You are the showrunner of a reality competition. " +
	"Answer with exactly one line of the form action_name(agentId) or action_name(agentId1,agentId2) and nothing else."

// Decision is a parsed and validated action choice.
type Decision struct {
	Action      string   `json:"action"`
	Parameters  []string `json:"parameters"`
	RawResponse string   `json:"rawResponse"`
}

// String renders the decision back into reply form.
func (d Decision) String() string {
	return fmt.Sprintf("%s(%s)", d.Action, strings.Join(d.Parameters, ","))
}

// ParseDecision validates a raw reply against the catalog and the eligible roster.
// Only the first non-empty line is considered.
func ParseDecision(raw string, catalog *actions.Catalog, eligible []core.Agent) (*Decision, error) {
	line := firstLine(raw)
	m := decisionPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, core.InvalidDecisionFormatError(raw)
	}

	params := strings.Split(m[2], ",")
	for i := range params {
		params[i] = strings.TrimSpace(params[i])
	}

	def, err := catalog.Lookup(m[1])
	if err != nil {
		return nil, err
	}
	for _, id := range params {
		if a, ok := core.FindAgent(eligible, id); !ok || !a.IsAlive {
			return nil, core.InvalidAgentReferenceError(id)
		}
	}
	if _, err := catalog.ValidateParams(string(def.Name), params); err != nil {
		return nil, err
	}
	return &Decision{Action: string(def.Name), Parameters: params, RawResponse: raw}, nil
}

func firstLine(raw string) string {
	for _, l := range strings.Split(raw, "\n") {
		l = strings.Trim(strings.TrimSpace(l), "`")
		if l != "" {
			return l
		}
	}
	return ""
}

// Client asks the text service for the next dramatic action.
type Client struct {
	llm     LLM
	catalog *actions.Catalog
	rng     actions.RandSource
}

// NewClient wires the decision client. A nil llm falls back to a random catalog pick,
// which keeps local runs working without an API key.
func NewClient(llm LLM, catalog *actions.Catalog, rng actions.RandSource) *Client {
	if rng == nil {
		rng = actions.DefaultRand()
	}
	if llm == nil {
		log.Println("Warning: no decision service configured, using random decisions")
	}
	return &Client{llm: llm, catalog: catalog, rng: rng}
}

// Complete exposes the underlying text endpoint for other features.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.llm == nil {
		return "", core.DecisionServiceError(fmt.Errorf("no decision service configured"))
	}
	out, err := c.llm.Complete(ctx, system, prompt)
	if err != nil {
		return "", core.BoundaryError("decision request", err, core.DecisionServiceError)
	}
	return out, nil
}

// Decide builds the prompt for agents, asks the service and parses the reply.
// No retry happens here.
func (c *Client) Decide(ctx context.Context, showID string, agents []core.Agent, extra string) (*Decision, error) {
	eligible := core.LivingAgents(agents)
	if len(eligible) == 0 {
		return nil, core.NoEligibleAgentsError(showID)
	}

	var raw string
	if c.llm == nil {
		raw = c.randomReply(eligible)
	} else {
		var err error
		raw, err = c.Complete(ctx, systemPrompt, BuildPrompt(showID, eligible, extra, c.catalog))
		if err != nil {
			return nil, err
		}
	}

	d, err := ParseDecision(raw, c.catalog, eligible)
	if err != nil {
		log.Printf("[AI] show %s: rejected decision %q: %v", showID, raw, err)
		return nil, err
	}
	return d, nil
}

// randomReply picks an action whose arity the roster can satisfy.
func (c *Client) randomReply(eligible []core.Agent) string {
	var defs []*actions.Definition
	for _, d := range c.catalog.Definitions() {
		if d.Arity <= len(eligible) {
			defs = append(defs, d)
		}
	}
	d := defs[c.rng.Intn(len(defs))]
	perm := make([]core.Agent, len(eligible))
	copy(perm, eligible)
	ids := make([]string, 0, d.Arity)
	for i := 0; i < d.Arity; i++ {
		j := i + c.rng.Intn(len(perm)-i)
		perm[i], perm[j] = perm[j], perm[i]
		ids = append(ids, perm[i].ID)
	}
	return Decision{Action: string(d.Name), Parameters: ids}.String()
}
