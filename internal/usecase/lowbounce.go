package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vitos/crypto_screener/internal/domain"
	"github.com/vitos/crypto_screener/internal/retry"
)

// LowBounceCalculator enriches screened instruments with the minimum price
// over a fixed calendar window and the percentage recovery from it. This is
// the dominant latency contributor of a run: one bounded historical query per
// instrument, sequential, with pacing pauses between batches. An instrument
// whose retries are exhausted degrades to unknown and never aborts the batch.
type LowBounceCalculator struct {
	candles     domain.CandleSource
	policy      retry.Policy
	windowStart time.Time
	windowEnd   time.Time
	pauseEvery  int           // instruments between pacing pauses
	pause       time.Duration // pacing pause length
	log         *zap.Logger

	sleep func(ctx context.Context, d time.Duration) // for tests
}

// DefaultRetryDelay waits longer on a rate limit than on a transport hiccup,
// matching the upstream's documented ban-avoidance guidance.
func DefaultRetryDelay(err error, attempt int) time.Duration {
	if domain.IsRateLimited(err) {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// HistoricalRetryable implements the window-query policy: 429 and transport
// errors consume retry attempts, any other upstream status abandons the
// instrument immediately.
func HistoricalRetryable(err error) bool {
	if domain.IsRateLimited(err) {
		return true
	}
	if _, ok := domain.IsUpstreamStatus(err); ok {
		return false
	}
	return true
}

func NewLowBounceCalculator(candles domain.CandleSource, windowStart, windowEnd time.Time, log *zap.Logger) *LowBounceCalculator {
	return &LowBounceCalculator{
		candles: candles,
		policy: retry.Policy{
			MaxAttempts: 3,
			Delay:       DefaultRetryDelay,
			Retryable:   HistoricalRetryable,
		},
		windowStart: windowStart,
		windowEnd:   windowEnd,
		pauseEvery:  10,
		pause:       500 * time.Millisecond,
		log:         log,
	}
}

// Enrich fills Low, LowDate and Bounce on every row in place, pacing the
// upstream between batches.
func (c *LowBounceCalculator) Enrich(ctx context.Context, rows []*domain.ScreenedInstrument) {
	sleep := c.sleep
	if sleep == nil {
		sleep = func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-t.C:
			case <-ctx.Done():
			}
		}
	}

	for i, row := range rows {
		if i == 0 || (i+1)%20 == 0 {
			c.log.Info("fetching historical lows",
				zap.Int("processed", i+1),
				zap.Int("total", len(rows)))
		}

		low, lowDate := c.windowLow(ctx, row.Symbol)
		row.Low = low
		row.LowDate = lowDate
		row.Bounce = Bounce(row.Price, low)

		if c.pauseEvery > 0 && (i+1)%c.pauseEvery == 0 {
			sleep(ctx, c.pause)
		}
	}
}

// windowLow returns the minimum per-candle low in the window and its date.
// Ties resolve to the earliest candle. Both values degrade to unknown (nil,
// empty) on any failure that survives the retry policy.
func (c *LowBounceCalculator) windowLow(ctx context.Context, symbol string) (*float64, string) {
	var candles []domain.Candle
	err := c.policy.Do(ctx, func() error {
		got, err := c.candles.FetchHistoricalWindow(ctx, symbol, c.windowStart, c.windowEnd)
		if err != nil {
			return err
		}
		candles = got
		return nil
	})
	if err != nil {
		c.log.Debug("historical window unavailable", zap.String("symbol", symbol), zap.Error(err))
		return nil, ""
	}
	if len(candles) == 0 {
		return nil, ""
	}

	lowIdx := 0
	for i, candle := range candles {
		if candle.Low < candles[lowIdx].Low {
			lowIdx = i
		}
	}
	low := candles[lowIdx].Low
	date := time.UnixMilli(candles[lowIdx].OpenTime).UTC().Format("2006-01-02")
	return &low, date
}

// Bounce is the percentage recovery of price above low. Nil when the low is
// unknown or non-positive; never a division error.
func Bounce(price float64, low *float64) *float64 {
	if low == nil || *low <= 0 {
		return nil
	}
	b := (price - *low) / *low * 100
	return &b
}
