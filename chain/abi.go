package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// ShowABI covers the subset of the show contract the gateway uses.
const ShowABI = `[
  {"type":"function","name":"isShowActive","stateMutability":"view",
   "inputs":[{"name":"showId","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getShowParticipants","stateMutability":"view",
   "inputs":[{"name":"showId","type":"uint256"}],
   "outputs":[{"name":"","type":"uint256[]"}]},
  {"type":"function","name":"getAgent","stateMutability":"view",
   "inputs":[{"name":"agentId","type":"uint256"}],
   "outputs":[
     {"name":"name","type":"string"},
     {"name":"isAlive","type":"bool"},
     {"name":"popularity","type":"uint8"},
     {"name":"aggression","type":"uint8"},
     {"name":"loyalty","type":"uint8"},
     {"name":"resilience","type":"uint8"},
     {"name":"charisma","type":"uint8"},
     {"name":"suspicion","type":"uint8"},
     {"name":"energy","type":"uint8"}]},
  {"type":"function","name":"updateAgentTraits","stateMutability":"nonpayable",
   "inputs":[
     {"name":"agentId","type":"uint256"},
     {"name":"popularity","type":"uint8"},
     {"name":"aggression","type":"uint8"},
     {"name":"loyalty","type":"uint8"},
     {"name":"resilience","type":"uint8"},
     {"name":"charisma","type":"uint8"},
     {"name":"suspicion","type":"uint8"},
     {"name":"energy","type":"uint8"}],
   "outputs":[]},
  {"type":"function","name":"killAgent","stateMutability":"nonpayable",
   "inputs":[{"name":"showId","type":"uint256"},{"name":"agentId","type":"uint256"}],
   "outputs":[]}
]`

// ParseShowABI parses ShowABI.
func ParseShowABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(ShowABI))
}

// parseID converts a decimal id string into a uint256 argument.
func parseID(kind, id string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(id), 10)
	if !ok || n.Sign() < 0 {
		return nil, core.ValidationError("%s id %q is not a non-negative integer", kind, id)
	}
	return n, nil
}

// traitArgs flattens a vector into the contract's uint8 argument order.
func traitArgs(tv core.TraitVector) []interface{} {
	values := tv.Clamped().Values()
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		out = append(out, uint8(v))
	}
	return out
}

// decodeAgent maps getAgent's outputs onto an Agent.
func decodeAgent(id string, out []interface{}) (core.Agent, error) {
	if len(out) != 9 {
		return core.Agent{}, fmt.Errorf("getAgent returned %d values, want 9", len(out))
	}
	name, ok1 := out[0].(string)
	alive, ok2 := out[1].(bool)
	if !ok1 || !ok2 {
		return core.Agent{}, fmt.Errorf("getAgent returned unexpected types %T, %T", out[0], out[1])
	}
	var values [7]int
	for i := range values {
		v, ok := out[2+i].(uint8)
		if !ok {
			return core.Agent{}, fmt.Errorf("getAgent trait %d has type %T", i, out[2+i])
		}
		values[i] = int(v)
	}
	return core.Agent{ID: id, Name: name, IsAlive: alive, Traits: core.TraitVectorFromValues(values)}, nil
}
