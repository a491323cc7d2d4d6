package domain

import (
	"context"
	"time"
)

// TickerSource is the exchange 24hr ticker feed. The snapshot is mandatory:
// a run has no meaning without it, so a total failure here is fatal.
type TickerSource interface {
	FetchTickerSnapshot(ctx context.Context) ([]Quote, error)
}

// CandleSource is the exchange historical candle feed, queried once per
// admitted instrument over a bounded daily window. Candles come back ordered
// by time ascending; an empty slice is a valid "no data" answer.
type CandleSource interface {
	FetchHistoricalWindow(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error)
}

// ReferenceProvider is one independent market-data source. Records are raw:
// deduplication and merging happen in the core, not in the adapter.
type ReferenceProvider interface {
	Name() string
	FetchReferenceListing(ctx context.Context) ([]ReferenceRecord, error)
}

// HistoryRepository persists the per-tier symbol sets across runs.
type HistoryRepository interface {
	LoadHistory(ctx context.Context) (*HistorySnapshot, error)
	SaveHistory(ctx context.Context, snap *HistorySnapshot) error
}

// AnnotationRepository exposes the free-text notes keyed by symbol. Written by
// an external editing path; read-only from this core's perspective.
type AnnotationRepository interface {
	LoadAnnotations(ctx context.Context) (map[string]string, error)
}
