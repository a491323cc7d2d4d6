package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitos/crypto_screener/internal/domain"
)

type mockTickers struct {
	quotes []domain.Quote
	err    error
}

func (m *mockTickers) FetchTickerSnapshot(ctx context.Context) ([]domain.Quote, error) {
	return m.quotes, m.err
}

type mockProvider struct {
	name    string
	records []domain.ReferenceRecord
	err     error
}

func (m *mockProvider) Name() string { return m.name }
func (m *mockProvider) FetchReferenceListing(ctx context.Context) ([]domain.ReferenceRecord, error) {
	return m.records, m.err
}

type mockStore struct {
	snap     *domain.HistorySnapshot
	loadErr  error
	saved    *domain.HistorySnapshot
	saveErr  error
	notes    map[string]string
	notesErr error
}

func (m *mockStore) LoadHistory(ctx context.Context) (*domain.HistorySnapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.snap == nil {
		return &domain.HistorySnapshot{Kind: domain.HistoryEmpty}, nil
	}
	return m.snap, nil
}

func (m *mockStore) SaveHistory(ctx context.Context, snap *domain.HistorySnapshot) error {
	m.saved = snap
	return m.saveErr
}

func (m *mockStore) LoadAnnotations(ctx context.Context) (map[string]string, error) {
	return m.notes, m.notesErr
}

func newTestService(tickers *mockTickers, a, b *mockProvider, candles domain.CandleSource, store *mockStore) *ScreenerService {
	tierer := &Tierer{
		Tiers:  domain.DefaultTiers(),
		MinFDV: 100_000_000,
		Change: Change24hPolicy{ZeroMeansMissing: true},
	}
	svc := NewScreenerService(tickers, a, b, tierer, newTestCalculator(candles), store, store, zap.NewNop())
	svc.timeNow = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
	return svc
}

// Scenario: a 1000-prefixed contract whose reference data only the secondary
// provider knows, with the exchange reporting a zero 24h change.
func TestRun_EndToEnd(t *testing.T) {
	tickers := &mockTickers{quotes: []domain.Quote{{
		Symbol:    "1000FOO",
		LastPrice: 2.0,
	}}}
	primary := &mockProvider{name: "coingecko"} // no entry for FOO
	secondary := &mockProvider{name: "coinmarketcap", records: []domain.ReferenceRecord{{
		Symbol:    "FOO",
		Name:      "Foo Protocol",
		FDV:       domain.Float64(200_000_000),
		MarketCap: domain.Float64(150_000_000),
		Change24h: domain.Float64(3.2),
		Change30d: domain.Float64(10),
	}}}
	candles := newFakeCandleSource()
	candles.responses["1000FOO"] = []candleResponse{{candles: []domain.Candle{
		{OpenTime: day(1), Low: 1.0},
	}}}
	store := &mockStore{notes: map[string]string{"1000FOO": "watching"}}

	res, err := newTestService(tickers, primary, secondary, candles, store).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)

	row := res.Rows[0]
	assert.Equal(t, "1000FOO", row.Symbol)
	assert.Equal(t, "100m-250m", row.TierID)
	assert.Equal(t, 3.2, row.Change24h, "exchange zero falls back to the reference value")
	assert.Equal(t, 200_000_000.0, *row.FDV)
	require.NotNil(t, row.Bounce)
	assert.InDelta(t, 100.0, *row.Bounce, 1e-9)
	assert.Equal(t, "watching", row.Note)
	assert.False(t, row.IsNew, "first run: empty history yields zero novelty")

	// State committed with the current per-tier sets.
	require.NotNil(t, store.saved)
	assert.Equal(t, domain.HistoryPerTier, store.saved.Kind)
	assert.Equal(t, []string{"1000FOO"}, store.saved.Tiers["100m-250m"])
}

func TestRun_SecondRunFlagsNewInstrument(t *testing.T) {
	tickers := &mockTickers{quotes: []domain.Quote{
		{Symbol: "OLD", LastPrice: 1},
		{Symbol: "FRESH", LastPrice: 1},
	}}
	primary := &mockProvider{name: "coingecko", records: []domain.ReferenceRecord{
		{Symbol: "OLD", FDV: domain.Float64(200e6), MarketCap: domain.Float64(150e6)},
		{Symbol: "FRESH", FDV: domain.Float64(200e6), MarketCap: domain.Float64(150e6)},
	}}
	secondary := &mockProvider{name: "coinmarketcap"}
	candles := newFakeCandleSource() // every query fails; degradation, not abort
	store := &mockStore{snap: &domain.HistorySnapshot{
		Kind:  domain.HistoryPerTier,
		Tiers: map[string][]string{"100m-250m": {"OLD"}},
	}}

	res, err := newTestService(tickers, primary, secondary, candles, store).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)

	assert.False(t, res.Rows[0].IsNew)
	assert.True(t, res.Rows[1].IsNew)
	assert.Equal(t, map[string][]string{"100m-250m": {"FRESH"}}, res.NewByTier)
	assert.Nil(t, res.Rows[0].Low, "failed window queries degrade to unknown")
}

func TestRun_TickerFailureIsFatal(t *testing.T) {
	tickers := &mockTickers{err: errors.New("connection refused")}
	store := &mockStore{}

	_, err := newTestService(tickers, &mockProvider{name: "a"}, &mockProvider{name: "b"},
		newFakeCandleSource(), store).Run(context.Background())

	require.Error(t, err)
	assert.Nil(t, store.saved, "no state committed on a failed run")
}

func TestRun_ProviderFailureDegradesToOtherSource(t *testing.T) {
	tickers := &mockTickers{quotes: []domain.Quote{{Symbol: "FOO", LastPrice: 1}}}
	primary := &mockProvider{name: "coingecko", err: errors.New("timeout")}
	secondary := &mockProvider{name: "coinmarketcap", records: []domain.ReferenceRecord{
		{Symbol: "FOO", FDV: domain.Float64(200e6), MarketCap: domain.Float64(150e6)},
	}}
	candles := newFakeCandleSource()

	res, err := newTestService(tickers, primary, secondary, candles, &mockStore{}).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
}

func TestRun_HistoryFailuresAreNotFatal(t *testing.T) {
	tickers := &mockTickers{quotes: []domain.Quote{{Symbol: "FOO", LastPrice: 1}}}
	primary := &mockProvider{name: "coingecko", records: []domain.ReferenceRecord{
		{Symbol: "FOO", FDV: domain.Float64(200e6), MarketCap: domain.Float64(150e6)},
	}}
	store := &mockStore{
		loadErr:  errors.New("disk gone"),
		saveErr:  errors.New("disk still gone"),
		notesErr: errors.New("disk very gone"),
	}

	res, err := newTestService(tickers, primary, &mockProvider{name: "b"},
		newFakeCandleSource(), store).Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, res.Rows, 1)
	assert.False(t, res.Rows[0].IsNew)
}
