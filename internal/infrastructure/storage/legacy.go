package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/vitos/crypto_screener/internal/domain"
)

// legacyHistoryFile is the JSON layout written by the predecessor screener.
// Two shapes exist in the wild: the original flat "coins" list and the later
// per-tier map. Both carry last_updated. Decoding fills whichever section is
// present; the caller tags the variant from that.
type legacyHistoryFile struct {
	LastUpdated string              `json:"last_updated"`
	Coins       []string            `json:"coins,omitempty"`
	Tiers       map[string][]string `json:"tiers,omitempty"`
}

const legacyTimeLayout = "2006-01-02 15:04:05 UTC"

// LoadLegacyHistoryFile reads a coins_history.json left behind by the old
// tool and returns it as a tagged snapshot. A missing file is not an error:
// it returns a HistoryEmpty snapshot.
func LoadLegacyHistoryFile(path string) (*domain.HistorySnapshot, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &domain.HistorySnapshot{Kind: domain.HistoryEmpty}, nil
	}
	if err != nil {
		return nil, err
	}

	var file legacyHistoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse legacy history %s: %w", path, err)
	}

	snap := &domain.HistorySnapshot{Kind: domain.HistoryEmpty}
	switch {
	case len(file.Tiers) > 0:
		snap.Kind = domain.HistoryPerTier
		snap.Tiers = make(map[string][]string, len(file.Tiers))
		for id, symbols := range file.Tiers {
			sorted := append([]string(nil), symbols...)
			sort.Strings(sorted)
			snap.Tiers[id] = sorted
		}
	case len(file.Coins) > 0:
		snap.Kind = domain.HistoryLegacyFlat
		snap.Symbols = append([]string(nil), file.Coins...)
		sort.Strings(snap.Symbols)
	}

	if t, err := time.Parse(legacyTimeLayout, file.LastUpdated); err == nil {
		snap.UpdatedAt = t.UTC()
	}
	return snap, nil
}

// ImportLegacyHistory migrates a legacy JSON history file into the store once.
// It only runs when the store holds no history yet, so an already-migrated
// store is never clobbered by a stale file.
func (s *SQLiteStore) ImportLegacyHistory(ctx context.Context, path string) error {
	current, err := s.LoadHistory(ctx)
	if err != nil {
		return err
	}
	if current.Kind != domain.HistoryEmpty {
		return nil
	}

	legacy, err := LoadLegacyHistoryFile(path)
	if err != nil {
		return err
	}
	if legacy.Kind == domain.HistoryEmpty {
		return nil
	}
	return s.SaveHistory(ctx, legacy)
}
