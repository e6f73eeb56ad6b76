package storage

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/NethermindEth/chaoschain-reality/core"
)

// CycleRepository keeps engine cycle records keyed by show and time.
type CycleRepository struct {
	db Storage
}

func NewCycleRepository(db Storage) *CycleRepository {
	return &CycleRepository{db: db}
}

func cyclePrefix(showID string) string {
	return fmt.Sprintf("cycle:%s:", showID)
}

// cycleKey zero-pads the timestamp so keys sort chronologically.
func cycleKey(rec core.CycleRecord) string {
	return fmt.Sprintf("%s%020d:%s", cyclePrefix(rec.ShowID), rec.StartedAt.UnixNano(), rec.ID)
}

func (r *CycleRepository) Save(rec core.CycleRecord) error {
	if rec.ShowID == "" || rec.ID == "" {
		return fmt.Errorf("cycle record needs a show id and an id")
	}
	return r.db.PutObject(cycleKey(rec), rec)
}

// List returns up to limit records for a show, newest first. limit <= 0 returns all.
func (r *CycleRepository) List(showID string, limit int) ([]core.CycleRecord, error) {
	entries, err := r.db.GetByPrefix(cyclePrefix(showID))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]core.CycleRecord, 0, len(keys))
	for _, k := range keys {
		var rec core.CycleRecord
		if err := json.Unmarshal(entries[k], &rec); err != nil {
			log.Printf("Skipping unreadable cycle record %s: %v", k, err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count returns how many records a show has.
func (r *CycleRepository) Count(showID string) (int, error) {
	keys, err := r.db.KeysByPrefix(cyclePrefix(showID))
	return len(keys), err
}

// ClearShow removes every record for a show.
func (r *CycleRepository) ClearShow(showID string) error {
	return r.db.DeleteByPrefix(cyclePrefix(showID))
}
