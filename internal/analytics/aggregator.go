// Package analytics rolls per-signal outcomes into the hit-rate,
// ranking and simulated-return tables consumed by the dashboard.
package analytics

import (
	"sort"
	"time"

	"github.com/Felixpere/final-project/internal/model"
)

// HitRateByLevel aggregates outcomes per TP level. NoData outcomes are
// excluded from the hit-rate denominator and surfaced separately as the
// coverage-gap fraction.
func HitRateByLevel(outcomes []model.SignalOutcome) [model.NumTPLevels]model.LevelStats {
	var stats [model.NumTPLevels]model.LevelStats
	for l := model.TP40; l <= model.TP100; l++ {
		stats[l].Level = l
	}
	for _, out := range outcomes {
		for l := model.TP40; l <= model.TP100; l++ {
			tally(&stats[l], out.Levels[l].State)
		}
	}
	for l := range stats {
		finalize(&stats[l])
	}
	return stats
}

// HitRateByGroup aggregates outcomes per (symbol, direction, calendar
// month). The result is sorted by symbol, direction, month so repeated
// runs emit an identical table.
func HitRateByGroup(outcomes []model.SignalOutcome) []model.GroupStats {
	byKey := make(map[model.GroupKey]*model.GroupStats)
	for _, out := range outcomes {
		key := model.GroupKey{
			Symbol:    out.Signal.Symbol,
			Direction: out.Signal.Direction,
			Month:     out.Signal.Timestamp.UTC().Format("2006-01"),
		}
		g, ok := byKey[key]
		if !ok {
			g = &model.GroupStats{Key: key}
			for l := model.TP40; l <= model.TP100; l++ {
				g.Levels[l].Level = l
			}
			byKey[key] = g
		}
		g.Signals++
		for l := model.TP40; l <= model.TP100; l++ {
			tally(&g.Levels[l], out.Levels[l].State)
		}
	}

	groups := make([]model.GroupStats, 0, len(byKey))
	for _, g := range byKey {
		for l := range g.Levels {
			finalize(&g.Levels[l])
		}
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := groups[i].Key, groups[j].Key
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		if a.Direction != b.Direction {
			return a.Direction < b.Direction
		}
		return a.Month < b.Month
	})
	return groups
}

func tally(s *model.LevelStats, state model.OutcomeState) {
	switch state {
	case model.StateHit:
		s.Hit++
	case model.StateNotHit:
		s.NotHit++
	default:
		s.NoData++
	}
}

func finalize(s *model.LevelStats) {
	if evaluated := s.Hit + s.NotHit; evaluated > 0 {
		s.HitRate = float64(s.Hit) / float64(evaluated)
	}
	if total := s.Hit + s.NotHit + s.NoData; total > 0 {
		s.NoDataFraction = float64(s.NoData) / float64(total)
	}
}

// SignalCountByHour buckets signals by UTC hour of issue.
func SignalCountByHour(signals []model.Signal) [24]int {
	var counts [24]int
	for _, s := range signals {
		counts[s.Timestamp.UTC().Hour()]++
	}
	return counts
}

// RankingConfig parameterizes the symbol ranking.
type RankingConfig struct {
	Window        time.Duration // trailing window over the signal dataset
	MinActiveDays float64       // minimum first-to-last span inside the window
	MinSignals    int           // minimum signal count inside the window
	TopN          int
}

// ActivityRecords computes the per-symbol activity table over the
// trailing window ending at `end`. The span is clamped to a one-day
// minimum so a single burst of signals does not divide by near zero.
func ActivityRecords(signals []model.Signal, end time.Time, window time.Duration) []model.SymbolActivity {
	cutoff := end.Add(-window)
	bySymbol := make(map[string]*model.SymbolActivity)
	for _, s := range signals {
		ts := s.Timestamp
		if ts.Before(cutoff) || ts.After(end) {
			continue
		}
		rec, ok := bySymbol[s.Symbol]
		if !ok {
			rec = &model.SymbolActivity{Symbol: s.Symbol, FirstSignal: ts, LastSignal: ts}
			bySymbol[s.Symbol] = rec
		}
		if ts.Before(rec.FirstSignal) {
			rec.FirstSignal = ts
		}
		if ts.After(rec.LastSignal) {
			rec.LastSignal = ts
		}
		rec.SignalCount++
	}

	records := make([]model.SymbolActivity, 0, len(bySymbol))
	for _, rec := range bySymbol {
		rec.ActiveDays = rec.LastSignal.Sub(rec.FirstSignal).Hours() / 24
		span := rec.ActiveDays
		if span < 1 {
			span = 1
		}
		rec.SignalsPerDay = float64(rec.SignalCount) / span
		records = append(records, *rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Symbol < records[j].Symbol
	})
	return records
}

// RankSymbols filters and ranks the activity table: only symbols with a
// long enough active span and enough signals survive, ordered by
// signals-per-day. Ties break on raw signal count, then symbol, so the
// ranking is deterministic. A zero `end` anchors the window at the
// latest signal timestamp in the dataset, which keeps re-runs over a
// fixed dataset reproducible.
func RankSymbols(signals []model.Signal, cfg RankingConfig, end time.Time) []model.SymbolActivity {
	if end.IsZero() {
		for _, s := range signals {
			if s.Timestamp.After(end) {
				end = s.Timestamp
			}
		}
	}

	records := ActivityRecords(signals, end, cfg.Window)

	ranked := records[:0]
	for _, rec := range records {
		if rec.ActiveDays >= cfg.MinActiveDays && rec.SignalCount >= cfg.MinSignals {
			ranked = append(ranked, rec)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.SignalsPerDay != b.SignalsPerDay {
			return a.SignalsPerDay > b.SignalsPerDay
		}
		if a.SignalCount != b.SignalCount {
			return a.SignalCount > b.SignalCount
		}
		return a.Symbol < b.Symbol
	})

	if cfg.TopN > 0 && len(ranked) > cfg.TopN {
		ranked = ranked[:cfg.TopN]
	}
	return ranked
}
