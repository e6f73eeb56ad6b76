package da

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/Layr-Labs/eigenda/encoding/utils/codec"
	"github.com/google/uuid"

	"github.com/NethermindEth/chaoschain-reality/core"
	"github.com/NethermindEth/chaoschain-reality/storage"
)

// Archive limits: how much of the ledger and feed goes into one blob.
const (
	MaxCycles = 500
	MaxNews   = 500
)

// ErrNotFound is returned when a data id has no confirmed blob behind it.
var ErrNotFound = errors.New("archive not found")

// ShowArchive is the blob payload.
type ShowArchive struct {
	ShowID    string             `json:"showId"`
	CreatedAt time.Time          `json:"createdAt"`
	Cycles    []core.CycleRecord `json:"cycles"`
	News      []core.NewsItem    `json:"news"`
}

// BlobReference records where a show archive was dispersed.
type BlobReference struct {
	DataID    string    `json:"dataId"`
	ShowID    string    `json:"showId"`
	Status    string    `json:"status"`
	Cycles    int       `json:"cycles"`
	NewsItems int       `json:"newsItems"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// CycleSource lists a show's ledger, newest first.
type CycleSource interface {
	List(showID string, limit int) ([]core.CycleRecord, error)
}

// NewsSource lists a show's feed, newest first.
type NewsSource interface {
	List(ctx context.Context, showID string, limit int) ([]core.NewsItem, error)
}

// Publisher receives SHOW_ARCHIVED events.
type Publisher interface {
	Publish(core.Event)
}

// Options are the optional collaborators of a Service.
type Options struct {
	News         NewsSource
	Index        storage.Storage
	Events       Publisher
	PollInterval time.Duration
	MaxWait      time.Duration
	Retries      int
	RetryBackoff time.Duration
}

// Service archives show history to EigenDA.
type Service struct {
	client  BlobClient
	cycles  CycleSource
	news    NewsSource
	index   storage.Storage
	events  Publisher
	poll    time.Duration
	maxWait time.Duration
	retries int
	backoff time.Duration
}

func NewService(client BlobClient, cycles CycleSource, opts Options) *Service {
	s := &Service{
		client:  client,
		cycles:  cycles,
		news:    opts.News,
		index:   opts.Index,
		events:  opts.Events,
		poll:    opts.PollInterval,
		maxWait: opts.MaxWait,
		retries: opts.Retries,
		backoff: opts.RetryBackoff,
	}
	if s.poll <= 0 {
		s.poll = DefaultPollInterval
	}
	if s.maxWait <= 0 {
		s.maxWait = DefaultMaxWait
	}
	if s.retries <= 0 {
		s.retries = 3
	}
	if s.backoff <= 0 {
		s.backoff = 2 * time.Second
	}
	return s
}

// Encode packs an archive into a blob whose 32-byte symbols stay inside the bn254 field.
func Encode(a *ShowArchive) ([]byte, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal archive: %w", err)
	}
	return codec.ConvertByPaddingEmptyByte(raw), nil
}

// Decode reverses Encode. Trailing zero padding added by the disperser is dropped.
func Decode(blob []byte) (*ShowArchive, error) {
	raw := bytes.TrimRight(codec.RemoveEmptyByteFromPaddedBytes(blob), "\x00")
	if len(raw) == 0 {
		return nil, fmt.Errorf("retrieved blob is empty")
	}
	var a ShowArchive
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal archive: %w", err)
	}
	return &a, nil
}

// Archive disperses the show's ledger and feed and waits until the blob is confirmed.
func (s *Service) Archive(ctx context.Context, showID string) (*BlobReference, error) {
	if showID == "" {
		return nil, core.ValidationError("showId is required")
	}
	archive := &ShowArchive{ShowID: showID, CreatedAt: time.Now().UTC()}
	cycles, err := s.cycles.List(showID, MaxCycles)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	archive.Cycles = cycles
	if s.news != nil {
		items, err := s.news.List(ctx, showID, MaxNews)
		if err != nil {
			return nil, fmt.Errorf("list news: %w", err)
		}
		archive.News = items
	}

	blob, err := Encode(archive)
	if err != nil {
		return nil, err
	}

	var requestID []byte
	err = s.retry(ctx, func() error {
		requestID, err = s.client.Disperse(ctx, blob)
		return err
	})
	if err != nil {
		return nil, err
	}
	dataID := hex.EncodeToString(requestID)
	log.Printf("Archive for show %s dispersed: %s (%d bytes)", showID, dataID, len(blob))

	state, err := s.waitForStatus(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("blob %s dispersed but status tracking failed: %w", dataID, err)
	}

	ref := &BlobReference{
		DataID:    dataID,
		ShowID:    showID,
		Status:    state.Status,
		Cycles:    len(archive.Cycles),
		NewsItems: len(archive.News),
		Size:      len(blob),
		CreatedAt: archive.CreatedAt,
	}
	if s.index != nil {
		if err := s.index.PutObject(referenceKey(ref), ref); err != nil {
			log.Printf("Failed to index archive %s: %v", dataID, err)
		}
	}
	if s.events != nil {
		s.events.Publish(core.Event{
			ID:        uuid.New().String(),
			Type:      core.EventShowArchived,
			ShowID:    showID,
			Payload:   ref,
			Timestamp: time.Now(),
		})
	}
	return ref, nil
}

// Retrieve fetches and decodes an archive by the data id Archive returned.
func (s *Service) Retrieve(ctx context.Context, dataID string) (*ShowArchive, error) {
	requestID, err := hex.DecodeString(strings.TrimPrefix(dataID, "0x"))
	if err != nil || len(requestID) == 0 {
		return nil, core.ValidationError("invalid data id %q", dataID)
	}
	state, err := s.client.Status(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(state.BatchHeaderHash) == 0 {
		return nil, fmt.Errorf("%w: blob %s is %s", ErrNotFound, dataID, state.Status)
	}
	blob, err := s.client.Retrieve(ctx, state.BatchHeaderHash, state.BlobIndex)
	if err != nil {
		return nil, err
	}
	return Decode(blob)
}

// References lists indexed archives for a show, newest first.
func (s *Service) References(showID string) ([]BlobReference, error) {
	if s.index == nil {
		return nil, nil
	}
	keys, err := s.index.KeysByPrefix(referencePrefix(showID))
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	out := make([]BlobReference, 0, len(keys))
	for _, k := range keys {
		var ref BlobReference
		if err := s.index.GetObject(k, &ref); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, nil
}

func referencePrefix(showID string) string {
	return "archive:" + showID + ":"
}

func referenceKey(ref *BlobReference) string {
	return fmt.Sprintf("%s%020d:%s", referencePrefix(ref.ShowID), ref.CreatedAt.UnixNano(), ref.DataID)
}

func (s *Service) waitForStatus(ctx context.Context, requestID []byte) (*BlobState, error) {
	ctx, cancel := context.WithTimeout(ctx, s.maxWait)
	defer cancel()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			state, err := s.client.Status(ctx, requestID)
			if err != nil {
				return nil, err
			}
			switch state.Status {
			case StatusConfirmed, StatusFinalized:
				return state, nil
			case StatusFailed:
				return nil, fmt.Errorf("blob dispersal failed with status: %s", state.Status)
			}
			log.Printf("Current blob status: %s", state.Status)
		case <-ctx.Done():
			return nil, fmt.Errorf("timed out waiting for blob confirmation: %w", ctx.Err())
		}
	}
}

func (s *Service) retry(ctx context.Context, f func() error) error {
	wait := s.backoff
	var err error
	for i := 0; i < s.retries; i++ {
		if err = f(); err == nil {
			return nil
		}
		if i < s.retries-1 {
			log.Printf("Attempt %d failed: %v. Retrying in %v...", i+1, err, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return err
			}
			wait *= 2
		}
	}
	return err
}
