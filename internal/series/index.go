// Package series holds the per-symbol price index the resolver queries.
// Observations are sorted once at build time so "first match after T"
// is a binary search plus a forward scan, instead of rescanning the
// whole history for every signal.
package series

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Felixpere/final-project/internal/model"
)

// Result classifies a query outcome. NoData (no observations after the
// query time at all) is distinct from NoMatch (observations existed but
// none satisfied the predicate).
type Result int

const (
	NoData Result = iota
	NoMatch
	Match
)

// Crossing is a matched price observation.
type Crossing struct {
	Timestamp time.Time
	Price     decimal.Decimal
}

// SymbolSeries is the time-ordered view of one symbol's observations.
type SymbolSeries struct {
	candles []model.Candle
	events  []model.UpdateEvent
}

// Index maps symbols to their series. Built once per evaluation batch
// and shared read-only across workers.
type Index struct {
	bySymbol map[string]*SymbolSeries
}

// Build constructs the index from raw candle and event tables.
// Input order does not matter; each series is sorted by timestamp.
func Build(candles []model.Candle, events []model.UpdateEvent) *Index {
	idx := &Index{bySymbol: make(map[string]*SymbolSeries)}

	for _, c := range candles {
		idx.series(c.Symbol).candles = append(idx.series(c.Symbol).candles, c)
	}
	for _, e := range events {
		idx.series(e.Symbol).events = append(idx.series(e.Symbol).events, e)
	}

	for _, s := range idx.bySymbol {
		sort.SliceStable(s.candles, func(i, j int) bool {
			return s.candles[i].Timestamp.Before(s.candles[j].Timestamp)
		})
		sort.SliceStable(s.events, func(i, j int) bool {
			return s.events[i].Timestamp.Before(s.events[j].Timestamp)
		})
	}
	return idx
}

func (x *Index) series(symbol string) *SymbolSeries {
	s, ok := x.bySymbol[symbol]
	if !ok {
		s = &SymbolSeries{}
		x.bySymbol[symbol] = s
	}
	return s
}

// Symbol returns the series for a symbol, or nil if the symbol has no
// price data at all.
func (x *Index) Symbol(symbol string) *SymbolSeries {
	return x.bySymbol[symbol]
}

// Symbols returns the indexed symbols in lexicographic order.
func (x *Index) Symbols() []string {
	out := make([]string, 0, len(x.bySymbol))
	for s := range x.bySymbol {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// HasCandles reports whether the series carries any candle data.
func (s *SymbolSeries) HasCandles() bool { return len(s.candles) > 0 }

// FirstCrossing finds the first candle strictly after `after` whose range
// reaches the target: high >= target for long, low <= target for short.
// The candle open timestamp is returned; intra-candle ordering is not
// knowable at this granularity. Returns NoData when no candles exist
// after `after`.
func (s *SymbolSeries) FirstCrossing(after time.Time, target decimal.Decimal, dir model.Direction) (Crossing, Result) {
	i := sort.Search(len(s.candles), func(i int) bool {
		return s.candles[i].Timestamp.After(after)
	})
	if i == len(s.candles) {
		return Crossing{}, NoData
	}

	for ; i < len(s.candles); i++ {
		c := s.candles[i]
		crossed := false
		switch dir {
		case model.DirectionLong:
			crossed = c.High.GreaterThanOrEqual(target)
		case model.DirectionShort:
			crossed = c.Low.LessThanOrEqual(target)
		}
		if crossed {
			return Crossing{Timestamp: c.Timestamp, Price: target}, Match
		}
	}
	return Crossing{}, NoMatch
}

// ToleranceMatch finds the first update event strictly after `after`
// whose price lands within the relative tolerance band around target:
// |price - target| / target < tolerance. The boundary is exclusive; an
// event exactly at target*(1±tolerance) does not match. Returns NoData
// when no events exist after `after`.
func (s *SymbolSeries) ToleranceMatch(after time.Time, target, tolerance decimal.Decimal) (Crossing, Result) {
	i := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Timestamp.After(after)
	})
	if i == len(s.events) {
		return Crossing{}, NoData
	}

	for ; i < len(s.events); i++ {
		e := s.events[i]
		if e.HitPrice.Sub(target).Abs().Div(target).LessThan(tolerance) {
			return Crossing{Timestamp: e.Timestamp, Price: e.HitPrice}, Match
		}
	}
	return Crossing{}, NoMatch
}
