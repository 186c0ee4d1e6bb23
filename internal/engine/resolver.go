package engine

import (
	"github.com/shopspring/decimal"

	"github.com/Felixpere/final-project/internal/model"
	"github.com/Felixpere/final-project/internal/series"
)

// Resolver evaluates the four TP levels of a signal against the price
// index. It is a pure function of (signal, index, tolerance): no state
// is kept between calls, so the same inputs always produce the same
// outcome.
type Resolver struct {
	index     *series.Index
	tolerance decimal.Decimal
}

func NewResolver(index *series.Index, tolerance decimal.Decimal) *Resolver {
	return &Resolver{index: index, tolerance: tolerance}
}

// Resolve evaluates every level independently against the raw evidence.
// No level implies another here; the sequential-dependency rule is
// applied afterwards by Repair so that raw matching disagreements stay
// observable.
func (r *Resolver) Resolve(sig model.Signal) model.SignalOutcome {
	out := model.SignalOutcome{Signal: sig}

	ss := r.index.Symbol(sig.Symbol)
	if ss == nil {
		// No price history for the symbol: every level stays NoData.
		return out
	}

	for l := model.TP40; l <= model.TP100; l++ {
		out.Levels[l] = r.resolveLevel(ss, sig, sig.Target(l))
	}
	return out
}

// resolveLevel prefers the candle series; update events are consulted
// only when no candle data exists past the signal time, since candles
// carry the full high/low range while events are point samples.
func (r *Resolver) resolveLevel(ss *series.SymbolSeries, sig model.Signal, target decimal.Decimal) model.TPOutcome {
	cross, res := ss.FirstCrossing(sig.Timestamp, target, sig.Direction)
	if res == series.NoData {
		cross, res = ss.ToleranceMatch(sig.Timestamp, target, r.tolerance)
	}

	switch res {
	case series.Match:
		return model.TPOutcome{State: model.StateHit, HitTime: cross.Timestamp, HitPrice: cross.Price}
	case series.NoMatch:
		return model.TPOutcome{State: model.StateNotHit}
	default:
		return model.TPOutcome{State: model.StateNoData}
	}
}
