package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/model"
)

func TestValidateSignal(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*model.Signal)
		wantErr error
	}{
		{"valid long", func(s *model.Signal) {}, nil},
		{"bad direction", func(s *model.Signal) { s.Direction = "both" }, ErrAmbiguousDirection},
		{"zero entry", func(s *model.Signal) { s.Entry = decimal.Zero }, ErrNonPositivePrice},
		{"negative target", func(s *model.Signal) { s.TP60 = decimal.NewFromFloat(-1) }, ErrNonPositivePrice},
		{"targets out of order", func(s *model.Signal) { s.TP60 = s.TP40 }, ErrTargetOrdering},
		{"target below entry for long", func(s *model.Signal) { s.TP40 = decimal.NewFromFloat(0.5) }, ErrTargetOrdering},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := longSignal("ABCUSDT", t0)
			tt.mutate(&sig)
			err := ValidateSignal(sig)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSignal_ShortOrdering(t *testing.T) {
	sig := model.Signal{
		Symbol:    "XYZUSDT",
		Direction: model.DirectionShort,
		Entry:     decimal.NewFromInt(100),
		TP40:      decimal.NewFromInt(99),
		TP60:      decimal.NewFromInt(98),
		TP80:      decimal.NewFromInt(97),
		TP100:     decimal.NewFromInt(96),
		Timestamp: time.Now(),
	}
	assert.NoError(t, ValidateSignal(sig))

	sig.TP80 = decimal.NewFromInt(99) // no longer descending
	assert.ErrorIs(t, ValidateSignal(sig), ErrTargetOrdering)
}

func TestEvaluator_RejectsWithoutAbortingBatch(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	good := longSignal("ABCUSDT", t0)
	bad := longSignal("ABCUSDT", t0)
	bad.Direction = "sideways"

	candles := []model.Candle{{
		Symbol: "ABCUSDT", Period: "1d",
		Open: decimal.NewFromFloat(1.0), High: decimal.NewFromFloat(1.05),
		Low: decimal.NewFromFloat(0.99), Close: decimal.NewFromFloat(1.04),
		Volume: decimal.NewFromInt(1), Timestamp: t0.Add(24 * time.Hour),
	}}

	report := NewEvaluator(2, zap.NewNop()).Run(context.Background(), Input{
		Signals:   []model.Signal{bad, good},
		Candles:   candles,
		Tolerance: decimal.NewFromFloat(0.001),
	})

	require.Len(t, report.Rejections, 1)
	assert.Contains(t, report.Rejections[0].Reason, "direction")
	require.Equal(t, 1, report.Evaluated)

	// The valid signal reaches every level with that candle.
	out := report.Outcomes[0]
	for l := model.TP40; l <= model.TP100; l++ {
		assert.Equal(t, model.StateHit, out.Levels[l].State, l.String())
	}
}

func TestEvaluator_CoverageGap(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	report := NewEvaluator(2, zap.NewNop()).Run(context.Background(), Input{
		Signals:   []model.Signal{longSignal("GHOSTUSDT", t0)},
		Tolerance: decimal.NewFromFloat(0.001),
	})

	require.Equal(t, 1, report.Evaluated)
	assert.Equal(t, 1, report.CoverageGaps)
	assert.True(t, report.Outcomes[0].AllNoData())
}

func TestEvaluator_Deterministic(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var signals []model.Signal
	var candles []model.Candle
	for i := 0; i < 40; i++ {
		symbol := fmt.Sprintf("SYM%dUSDT", i%7)
		signals = append(signals, longSignal(symbol, t0.Add(time.Duration(i)*6*time.Hour)))
		candles = append(candles, model.Candle{
			Symbol: symbol, Period: "1d",
			Open: decimal.NewFromFloat(1.0),
			High: decimal.NewFromFloat(1.0 + float64(i%5)/100),
			Low:  decimal.NewFromFloat(0.98), Close: decimal.NewFromFloat(1.0),
			Volume: decimal.NewFromInt(1), Timestamp: t0.Add(time.Duration(i+1) * 24 * time.Hour),
		})
	}

	in := Input{Signals: signals, Candles: candles, Tolerance: decimal.NewFromFloat(0.001)}

	first := NewEvaluator(8, zap.NewNop()).Run(context.Background(), in)
	for run := 0; run < 3; run++ {
		again := NewEvaluator(8, zap.NewNop()).Run(context.Background(), in)
		require.Equal(t, first, again, "run %d differs", run)
	}
}
