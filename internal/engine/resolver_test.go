package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Felixpere/final-project/internal/model"
	"github.com/Felixpere/final-project/internal/series"
)

func longSignal(symbol string, ts time.Time) model.Signal {
	return model.Signal{
		Symbol:    symbol,
		Direction: model.DirectionLong,
		Entry:     decimal.NewFromFloat(1.0),
		TP40:      decimal.NewFromFloat(1.01),
		TP60:      decimal.NewFromFloat(1.02),
		TP80:      decimal.NewFromFloat(1.03),
		TP100:     decimal.NewFromFloat(1.04),
		Timestamp: ts,
	}
}

func TestResolve_LongCandleHit(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sig := longSignal("ABCUSDT", t0)

	// One candle whose high reaches TP80 but not TP100.
	idx := series.Build([]model.Candle{{
		Symbol:    "ABCUSDT",
		Period:    "1d",
		Open:      decimal.NewFromFloat(1.0),
		High:      decimal.NewFromFloat(1.035),
		Low:       decimal.NewFromFloat(0.99),
		Close:     decimal.NewFromFloat(1.03),
		Volume:    decimal.NewFromInt(1),
		Timestamp: t0.Add(24 * time.Hour),
	}}, nil)

	out := NewResolver(idx, decimal.NewFromFloat(0.001)).Resolve(sig)

	for l := model.TP40; l <= model.TP80; l++ {
		assert.Equal(t, model.StateHit, out.Levels[l].State, l.String())
		assert.True(t, out.Levels[l].HitTime.Equal(t0.Add(24*time.Hour)))
	}
	assert.Equal(t, model.StateNotHit, out.Levels[model.TP100].State)
}

func TestResolve_ShortToleranceEventMatch(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	sig := model.Signal{
		Symbol:    "XYZUSDT",
		Direction: model.DirectionShort,
		Entry:     decimal.NewFromInt(100),
		TP40:      decimal.NewFromInt(99),
		TP60:      decimal.NewFromInt(98),
		TP80:      decimal.NewFromInt(97),
		TP100:     decimal.NewFromInt(96),
		Timestamp: t0,
	}

	// No candles for the symbol, only a pre-computed crossing event
	// 0.04% away from TP40.
	idx := series.Build(nil, []model.UpdateEvent{{
		Symbol:    "XYZUSDT",
		Direction: model.DirectionShort,
		HitPrice:  decimal.NewFromFloat(99.04),
		Timestamp: t0.Add(5 * time.Minute),
	}})

	out := NewResolver(idx, decimal.NewFromFloat(0.001)).Resolve(sig)

	assert.Equal(t, model.StateHit, out.Levels[model.TP40].State)
	assert.True(t, out.Levels[model.TP40].HitTime.Equal(t0.Add(5*time.Minute)))
	assert.True(t, out.Levels[model.TP40].HitPrice.Equal(decimal.NewFromFloat(99.04)))

	// The other targets are far outside the tolerance band.
	for l := model.TP60; l <= model.TP100; l++ {
		assert.Equal(t, model.StateNotHit, out.Levels[l].State, l.String())
	}
}

func TestResolve_MissingSymbolIsNoData(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	idx := series.Build(nil, nil)

	out := NewResolver(idx, decimal.NewFromFloat(0.001)).Resolve(longSignal("GHOSTUSDT", t0))

	assert.True(t, out.AllNoData())
	for l := model.TP40; l <= model.TP100; l++ {
		assert.Equal(t, model.StateNoData, out.Levels[l].State, l.String())
	}
}

func TestResolve_NoDataAfterSignalTime(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	// All price history predates the signal: unknown, not a miss.
	idx := series.Build([]model.Candle{{
		Symbol:    "ABCUSDT",
		Period:    "1d",
		High:      decimal.NewFromFloat(2.0),
		Low:       decimal.NewFromFloat(0.5),
		Timestamp: t0.Add(-24 * time.Hour),
	}}, nil)

	out := NewResolver(idx, decimal.NewFromFloat(0.001)).Resolve(longSignal("ABCUSDT", t0))
	assert.True(t, out.AllNoData())
}
