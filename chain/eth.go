package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// EthConfig points the gateway at a deployed show contract.
type EthConfig struct {
	RPCURL          string
	ContractAddress string
	AdminPrivateKey string // hex, with or without 0x
	ChainID         int64  // 0 asks the node
	Timeout         time.Duration
}

// EthGateway reads and writes the show contract over JSON-RPC, signing writes with the admin key.
type EthGateway struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	address  common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	timeout  time.Duration
}

// DialEth connects to the RPC endpoint and binds the contract.
func DialEth(ctx context.Context, cfg EthConfig) (*EthGateway, error) {
	if !common.IsHexAddress(cfg.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address %q", cfg.ContractAddress)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.AdminPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid admin private key: %w", err)
	}
	parsed, err := ParseShowABI()
	if err != nil {
		return nil, fmt.Errorf("failed to parse show ABI: %w", err)
	}

	dialCtx, cancel := withTimeout(ctx, cfg.Timeout)
	defer cancel()
	client, err := ethclient.DialContext(dialCtx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCURL, err)
	}

	chainID := big.NewInt(cfg.ChainID)
	if cfg.ChainID == 0 {
		if chainID, err = client.ChainID(dialCtx); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to read chain id: %w", err)
		}
	}

	address := common.HexToAddress(cfg.ContractAddress)
	g := &EthGateway{
		client:   client,
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		address:  address,
		key:      key,
		chainID:  chainID,
		timeout:  cfg.Timeout,
	}
	log.Printf("Chain gateway connected: contract %s, chain %s, admin %s",
		address.Hex(), chainID, crypto.PubkeyToAddress(key.PublicKey).Hex())
	return g, nil
}

// Close releases the RPC connection.
func (g *EthGateway) Close() {
	g.client.Close()
}

func (g *EthGateway) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	var out []interface{}
	if err := g.contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func (g *EthGateway) GetShow(ctx context.Context, showID string) (core.Show, error) {
	id, err := parseID("show", showID)
	if err != nil {
		return core.Show{}, err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.call(ctx, "isShowActive", id)
	if err != nil {
		return core.Show{}, core.BoundaryError("isShowActive", err, func(e error) *core.Error { return core.ChainReadError("show status", e) })
	}
	active, _ := out[0].(bool)

	out, err = g.call(ctx, "getShowParticipants", id)
	if err != nil {
		return core.Show{}, core.BoundaryError("getShowParticipants", err, func(e error) *core.Error { return core.ChainReadError("show participants", e) })
	}
	ids, ok := out[0].([]*big.Int)
	if !ok {
		return core.Show{}, core.ChainReadError("show participants", fmt.Errorf("unexpected type %T", out[0]))
	}
	show := core.Show{ID: showID, IsActive: active}
	for _, n := range ids {
		show.ParticipantIDs = append(show.ParticipantIDs, n.String())
	}
	return show, nil
}

func (g *EthGateway) getAgent(ctx context.Context, agentID string) (core.Agent, error) {
	id, err := parseID("agent", agentID)
	if err != nil {
		return core.Agent{}, err
	}
	out, err := g.call(ctx, "getAgent", id)
	if err != nil {
		return core.Agent{}, core.BoundaryError("getAgent", err, func(e error) *core.Error { return core.ChainReadError("agent "+agentID, e) })
	}
	a, err := decodeAgent(agentID, out)
	if err != nil {
		return core.Agent{}, core.ChainReadError("agent "+agentID, err)
	}
	return a, nil
}

func (g *EthGateway) GetLivingParticipants(ctx context.Context, showID string) ([]core.Agent, error) {
	show, err := g.GetShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	var living []core.Agent
	for _, id := range show.ParticipantIDs {
		a, err := g.getAgent(ctx, id)
		if err != nil {
			return nil, err
		}
		if a.IsAlive {
			living = append(living, a)
		}
	}
	return living, nil
}

func (g *EthGateway) ApplyTraitUpdate(ctx context.Context, agentID string, traits core.TraitVector) (*core.Receipt, error) {
	id, err := parseID("agent", agentID)
	if err != nil {
		return nil, err
	}
	args := append([]interface{}{id}, traitArgs(traits)...)
	return g.transact(ctx, "update traits of agent "+agentID, "updateAgentTraits", args...)
}

func (g *EthGateway) KillAgent(ctx context.Context, showID, agentID string) (*core.Receipt, error) {
	sid, err := parseID("show", showID)
	if err != nil {
		return nil, err
	}
	aid, err := parseID("agent", agentID)
	if err != nil {
		return nil, err
	}

	readCtx, cancel := withTimeout(ctx, g.timeout)
	a, err := g.getAgent(readCtx, agentID)
	cancel()
	if err != nil {
		return nil, err
	}
	if !a.IsAlive {
		return nil, core.AlreadyEliminatedError(agentID)
	}
	return g.transact(ctx, "eliminate agent "+agentID, "killAgent", sid, aid)
}

func (g *EthGateway) transact(ctx context.Context, op, method string, args ...interface{}) (*core.Receipt, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()
	fail := func(e error) *core.Error { return core.ChainWriteError(op, e) }

	opts, err := bind.NewKeyedTransactorWithChainID(g.key, g.chainID)
	if err != nil {
		return nil, core.ChainWriteError(op, err)
	}
	opts.Context = ctx

	tx, err := g.contract.Transact(opts, method, args...)
	if err != nil {
		return nil, core.BoundaryError(op, err, fail)
	}
	log.Printf("Chain tx %s sent: %s", method, tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, g.client, tx)
	if err != nil {
		pending := *core.BoundaryError(op, err, fail)
		pending.TxHash = tx.Hash().Hex()
		return nil, &pending
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, core.ChainWriteError(op, fmt.Errorf("transaction %s reverted", tx.Hash().Hex()))
	}
	return &core.Receipt{
		Hash:        tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}
