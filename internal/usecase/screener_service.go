package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/crypto_screener/internal/domain"
)

// ScreenResult is the outcome of one completed run, handed to the report
// assembler. Rows keep quote order; sorting happens during assembly.
type ScreenResult struct {
	GeneratedAt time.Time
	Rows        []*domain.ScreenedInstrument
	NewByTier   map[string][]string
	Annotations map[string]string
}

// ScreenerService drives the single-shot batch pipeline: load persisted
// state, fetch the mandatory ticker snapshot, reconcile the two reference
// providers, screen and tier, enrich with historical lows, detect novelty and
// commit the new history snapshot. Everything except the ticker fetch
// degrades instead of failing the run.
type ScreenerService struct {
	tickers     domain.TickerSource
	primary     domain.ReferenceProvider
	secondary   domain.ReferenceProvider
	tierer      *Tierer
	calc        *LowBounceCalculator
	history     domain.HistoryRepository
	annotations domain.AnnotationRepository
	log         *zap.Logger

	timeNow func() time.Time // for tests
}

func NewScreenerService(
	tickers domain.TickerSource,
	primary, secondary domain.ReferenceProvider,
	tierer *Tierer,
	calc *LowBounceCalculator,
	history domain.HistoryRepository,
	annotations domain.AnnotationRepository,
	log *zap.Logger,
) *ScreenerService {
	return &ScreenerService{
		tickers:     tickers,
		primary:     primary,
		secondary:   secondary,
		tierer:      tierer,
		calc:        calc,
		history:     history,
		annotations: annotations,
		log:         log,
		timeNow:     time.Now,
	}
}

func (s *ScreenerService) Run(ctx context.Context) (*ScreenResult, error) {
	prev, err := s.history.LoadHistory(ctx)
	if err != nil {
		s.log.Warn("could not load run history, novelty disabled this run", zap.Error(err))
		prev = &domain.HistorySnapshot{Kind: domain.HistoryEmpty}
	}
	notes, err := s.annotations.LoadAnnotations(ctx)
	if err != nil {
		s.log.Warn("could not load annotations", zap.Error(err))
		notes = map[string]string{}
	}

	quotes, err := s.tickers.FetchTickerSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker snapshot: %w", err)
	}
	s.log.Info("fetched perpetual tickers", zap.Int("count", len(quotes)))

	refA := s.fetchReference(ctx, s.primary)
	refB := s.fetchReference(ctx, s.secondary)
	merged := MergeReferences(DedupBySymbol(refA), DedupBySymbol(refB))
	s.log.Info("merged reference providers",
		zap.Int("primary", len(refA)),
		zap.Int("secondary", len(refB)),
		zap.Int("merged", len(merged)))

	rows := s.tierer.Screen(quotes, merged)
	s.log.Info("screened instruments", zap.Int("admitted", len(rows)))

	s.calc.Enrich(ctx, rows)

	newByTier := MarkNovelty(rows, prev)
	for tier, symbols := range newByTier {
		s.log.Info("new instruments detected", zap.String("tier", tier), zap.Strings("symbols", symbols))
	}
	for _, row := range rows {
		row.Note = notes[row.Symbol]
	}

	// State is committed only after every instrument has been processed, so
	// an interrupted run leaves the previous snapshot intact.
	now := s.timeNow()
	if err := s.history.SaveHistory(ctx, Snapshot(rows, now)); err != nil {
		s.log.Warn("could not save run history", zap.Error(err))
	}

	return &ScreenResult{
		GeneratedAt: now.UTC(),
		Rows:        rows,
		NewByTier:   newByTier,
		Annotations: notes,
	}, nil
}

// fetchReference tolerates a fully failed provider: its contribution becomes
// empty and the other source still populates the merge.
func (s *ScreenerService) fetchReference(ctx context.Context, provider domain.ReferenceProvider) []domain.ReferenceRecord {
	if provider == nil {
		return nil
	}
	records, err := provider.FetchReferenceListing(ctx)
	if err != nil {
		s.log.Warn("reference provider failed, continuing without it",
			zap.String("provider", provider.Name()), zap.Error(err))
		return nil
	}
	s.log.Info("fetched reference listing",
		zap.String("provider", provider.Name()), zap.Int("count", len(records)))
	return records
}
