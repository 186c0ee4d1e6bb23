package series

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Felixpere/final-project/internal/model"
)

func candle(symbol string, ts time.Time, high, low float64) model.Candle {
	return model.Candle{
		Symbol:    symbol,
		Period:    "1d",
		Open:      decimal.NewFromFloat(low),
		High:      decimal.NewFromFloat(high),
		Low:       decimal.NewFromFloat(low),
		Close:     decimal.NewFromFloat(high),
		Volume:    decimal.NewFromInt(1),
		Timestamp: ts,
	}
}

func event(symbol string, ts time.Time, price float64) model.UpdateEvent {
	return model.UpdateEvent{
		Symbol:    symbol,
		Direction: model.DirectionLong,
		HitPrice:  decimal.NewFromFloat(price),
		Timestamp: ts,
	}
}

func TestFirstCrossing_Long(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := Build([]model.Candle{
		candle("PYTHUSDT", t0, 1.00, 0.95),                   // at t0, must be skipped
		candle("PYTHUSDT", t0.Add(24*time.Hour), 1.01, 0.96), // below target
		candle("PYTHUSDT", t0.Add(48*time.Hour), 1.05, 0.97), // first crossing
		candle("PYTHUSDT", t0.Add(72*time.Hour), 1.10, 0.98),
	}, nil)

	ss := idx.Symbol("PYTHUSDT")
	cross, res := ss.FirstCrossing(t0, decimal.NewFromFloat(1.03), model.DirectionLong)
	assert.Equal(t, Match, res)
	assert.True(t, cross.Timestamp.Equal(t0.Add(48*time.Hour)))
	assert.True(t, cross.Price.Equal(decimal.NewFromFloat(1.03)))
}

func TestFirstCrossing_Short(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := Build([]model.Candle{
		candle("TIAUSDT", t0.Add(24*time.Hour), 101, 99.5),
		candle("TIAUSDT", t0.Add(48*time.Hour), 100, 98.9),
	}, nil)

	ss := idx.Symbol("TIAUSDT")
	cross, res := ss.FirstCrossing(t0, decimal.NewFromInt(99), model.DirectionShort)
	assert.Equal(t, Match, res)
	assert.True(t, cross.Timestamp.Equal(t0.Add(48*time.Hour)))
}

func TestFirstCrossing_NoMatchVersusNoData(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := Build([]model.Candle{
		candle("MYROUSDT", t0.Add(24*time.Hour), 1.01, 0.99),
	}, nil)
	ss := idx.Symbol("MYROUSDT")

	// Data exists after t0 but never reaches the target.
	_, res := ss.FirstCrossing(t0, decimal.NewFromFloat(1.50), model.DirectionLong)
	assert.Equal(t, NoMatch, res)

	// No data at all past the query time.
	_, res = ss.FirstCrossing(t0.Add(48*time.Hour), decimal.NewFromFloat(1.50), model.DirectionLong)
	assert.Equal(t, NoData, res)

	// Unknown symbol has no series.
	assert.Nil(t, idx.Symbol("NOSUCH"))
}

func TestToleranceMatch_Boundary(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	target := decimal.NewFromInt(100)
	tolerance := decimal.NewFromFloat(0.001) // 0.1%

	tests := []struct {
		name  string
		price float64
		want  Result
	}{
		{"inside band above", 100.05, Match},
		{"inside band below", 99.95, Match},
		{"exactly upper boundary", 100.1, NoMatch}, // boundary is exclusive
		{"exactly lower boundary", 99.9, NoMatch},
		{"outside band", 101, NoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx := Build(nil, []model.UpdateEvent{event("TIAUSDT", t0.Add(time.Hour), tt.price)})
			_, res := idx.Symbol("TIAUSDT").ToleranceMatch(t0, target, tolerance)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestToleranceMatch_SkipsEarlierEvents(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := Build(nil, []model.UpdateEvent{
		event("TIAUSDT", t0.Add(-time.Hour), 100), // before the signal, must not match
		event("TIAUSDT", t0.Add(30*time.Minute), 250),
		event("TIAUSDT", t0.Add(time.Hour), 100.02),
	})

	cross, res := idx.Symbol("TIAUSDT").ToleranceMatch(t0, decimal.NewFromInt(100), decimal.NewFromFloat(0.001))
	assert.Equal(t, Match, res)
	assert.True(t, cross.Timestamp.Equal(t0.Add(time.Hour)))
	assert.True(t, cross.Price.Equal(decimal.NewFromFloat(100.02)))
}

func TestBuild_SortsUnorderedInput(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := Build([]model.Candle{
		candle("PYTHUSDT", t0.Add(72*time.Hour), 1.10, 0.98),
		candle("PYTHUSDT", t0.Add(24*time.Hour), 1.05, 0.96),
	}, nil)

	cross, res := idx.Symbol("PYTHUSDT").FirstCrossing(t0, decimal.NewFromFloat(1.02), model.DirectionLong)
	assert.Equal(t, Match, res)
	assert.True(t, cross.Timestamp.Equal(t0.Add(24*time.Hour)))
}
