package da

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/Layr-Labs/eigenda/api/clients"
	"github.com/Layr-Labs/eigenda/core/auth"
)

const (
	DefaultHost           = "disperser-holesky.eigenda.xyz"
	DefaultPort           = "443"
	DefaultRequestTimeout = 30 * time.Second
	DefaultPollInterval   = 5 * time.Second
	DefaultMaxWait        = 30 * time.Minute
)

// Blob statuses reported by the disperser.
const (
	StatusConfirmed = "CONFIRMED"
	StatusFinalized = "FINALIZED"
	StatusFailed    = "FAILED"
)

// BlobState is the part of a disperser status reply the archive needs.
// BatchHeaderHash is empty until the blob is confirmed.
type BlobState struct {
	Status          string
	BatchHeaderHash []byte
	BlobIndex       uint32
}

// BlobClient is the disperser surface used by Service.
type BlobClient interface {
	Disperse(ctx context.Context, data []byte) ([]byte, error)
	Status(ctx context.Context, requestID []byte) (*BlobState, error)
	Retrieve(ctx context.Context, batchHeaderHash []byte, blobIndex uint32) ([]byte, error)
}

// Config configures the EigenDA disperser connection.
type Config struct {
	AuthKey        string
	Host           string
	Port           string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	MaxWait        time.Duration
	Insecure       bool
}

func DefaultConfig(authKey string) Config {
	return Config{
		AuthKey:        authKey,
		Host:           DefaultHost,
		Port:           DefaultPort,
		RequestTimeout: DefaultRequestTimeout,
		PollInterval:   DefaultPollInterval,
		MaxWait:        DefaultMaxWait,
	}
}

// NormalizeKey strips an optional 0x prefix, left-pads to 64 hex characters and checks the result decodes.
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, "0x")
	if key == "" {
		return "", fmt.Errorf("EIGENDA_AUTH_PK is not set")
	}
	if len(key) < 64 {
		key = strings.Repeat("0", 64-len(key)) + key
	} else if len(key) > 64 {
		return "", fmt.Errorf("invalid EIGENDA_AUTH_PK length: got %d, expected 64 hex characters", len(key))
	}
	if _, err := hex.DecodeString(key); err != nil {
		return "", fmt.Errorf("invalid EIGENDA_AUTH_PK: hex decoding failed: %w", err)
	}
	return key, nil
}

type eigenClient struct {
	client clients.DisperserClient
}

// NewEigenClient dials the EigenDA disperser with a local request signer.
func NewEigenClient(cfg Config) (BlobClient, error) {
	key, err := NormalizeKey(cfg.AuthKey)
	if err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	signer := auth.NewLocalBlobRequestSigner("0x" + key)
	client, err := clients.NewDisperserClient(&clients.Config{
		Hostname:          cfg.Host,
		Port:              cfg.Port,
		Timeout:           cfg.RequestTimeout,
		UseSecureGrpcFlag: !cfg.Insecure,
	}, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to create disperser client: %w", err)
	}
	return &eigenClient{client: client}, nil
}

func (c *eigenClient) Disperse(ctx context.Context, data []byte) ([]byte, error) {
	// empty quorum list disperses to the default quorums
	_, requestID, err := c.client.DisperseBlob(ctx, data, []uint8{})
	if err != nil {
		return nil, fmt.Errorf("error dispersing blob: %w", err)
	}
	return requestID, nil
}

func (c *eigenClient) Status(ctx context.Context, requestID []byte) (*BlobState, error) {
	reply, err := c.client.GetBlobStatus(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("error getting blob status: %w", err)
	}
	state := &BlobState{Status: reply.Status.String()}
	if reply.Info != nil && reply.Info.BlobVerificationProof != nil {
		proof := reply.Info.BlobVerificationProof
		if proof.BatchMetadata != nil {
			state.BatchHeaderHash = proof.BatchMetadata.BatchHeaderHash
		}
		state.BlobIndex = uint32(proof.BlobIndex)
	}
	return state, nil
}

func (c *eigenClient) Retrieve(ctx context.Context, batchHeaderHash []byte, blobIndex uint32) ([]byte, error) {
	data, err := c.client.RetrieveBlob(ctx, batchHeaderHash, blobIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve blob: %w", err)
	}
	return data, nil
}
