package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vitos/crypto_screener/internal/domain"
)

// Tier ID under which a migrated legacy flat list is stored. A wildcard row
// set marks the snapshot as HistoryLegacyFlat on load.
const legacyTierID = "*"

// SQLiteStore persists the run history (per-tier symbol sets) and the
// free-text annotations. Read once at run start, history written at most once
// at run end.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS tier_history (
			tier_id TEXT NOT NULL,
			symbol TEXT NOT NULL,
			PRIMARY KEY (tier_id, symbol)
		);`,
		`CREATE TABLE IF NOT EXISTS history_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS annotations (
			symbol TEXT PRIMARY KEY,
			note TEXT NOT NULL
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("failed to exec query %s: %w", q, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadHistory returns the previous run's snapshot. An empty store yields
// HistoryEmpty, wildcard rows yield the migrated legacy flat shape.
func (s *SQLiteStore) LoadHistory(ctx context.Context) (*domain.HistorySnapshot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tier_id, symbol FROM tier_history ORDER BY tier_id, symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make(map[string][]string)
	for rows.Next() {
		var tierID, symbol string
		if err := rows.Scan(&tierID, &symbol); err != nil {
			return nil, err
		}
		tiers[tierID] = append(tiers[tierID], symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap := &domain.HistorySnapshot{Kind: domain.HistoryEmpty}
	if legacy, ok := tiers[legacyTierID]; ok {
		snap.Kind = domain.HistoryLegacyFlat
		snap.Symbols = legacy
	} else if len(tiers) > 0 {
		snap.Kind = domain.HistoryPerTier
		snap.Tiers = tiers
	}

	var updatedAt time.Time
	err = s.db.QueryRowContext(ctx, `SELECT updated_at FROM history_meta WHERE id = 1`).Scan(&updatedAt)
	if err == nil {
		snap.UpdatedAt = updatedAt.UTC()
	} else if err != sql.ErrNoRows {
		return nil, err
	}
	return snap, nil
}

// SaveHistory overwrites the persisted sets with the given snapshot in one
// transaction. No merging with the previous contents.
func (s *SQLiteStore) SaveHistory(ctx context.Context, snap *domain.HistorySnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tier_history`); err != nil {
		return err
	}

	insert := func(tierID string, symbols []string) error {
		sorted := append([]string(nil), symbols...)
		sort.Strings(sorted)
		for _, symbol := range sorted {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tier_history (tier_id, symbol) VALUES (?, ?)`, tierID, symbol); err != nil {
				return err
			}
		}
		return nil
	}

	switch snap.Kind {
	case domain.HistoryLegacyFlat:
		if err := insert(legacyTierID, snap.Symbols); err != nil {
			return err
		}
	case domain.HistoryPerTier:
		for tierID, symbols := range snap.Tiers {
			if err := insert(tierID, symbols); err != nil {
				return err
			}
		}
	}

	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history_meta (id, updated_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`, updatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadAnnotations(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol, note FROM annotations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make(map[string]string)
	for rows.Next() {
		var symbol, note string
		if err := rows.Scan(&symbol, &note); err != nil {
			return nil, err
		}
		notes[symbol] = note
	}
	return notes, rows.Err()
}
