package analytics

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Felixpere/final-project/internal/model"
)

// PayoffTable maps the highest hit TP level to a payoff per $100
// notional. Miss is the (negative) payoff when no level was hit.
type PayoffTable struct {
	Levels [model.NumTPLevels]decimal.Decimal
	Miss   decimal.Decimal
}

// DefaultPayoffs is the reference table: +10/+20/+30/+40 for
// TP40..TP100 and -40 for a full miss, per $100 staked.
func DefaultPayoffs() PayoffTable {
	return PayoffTable{
		Levels: [model.NumTPLevels]decimal.Decimal{
			decimal.NewFromInt(10),
			decimal.NewFromInt(20),
			decimal.NewFromInt(30),
			decimal.NewFromInt(40),
		},
		Miss: decimal.NewFromInt(-40),
	}
}

// Simulator converts resolved outcomes into fixed-stake trades and
// return KPIs. Payoffs scale linearly with the configured stake.
type Simulator struct {
	payoffs      PayoffTable
	stake        decimal.Decimal
	noDataAsLoss bool
}

// NewSimulator builds a simulator. noDataAsLoss controls the handling
// of signals that have coverage gaps and no hit: excluded from the
// simulation by default, scored as a miss when the flag is set.
func NewSimulator(payoffs PayoffTable, stake decimal.Decimal, noDataAsLoss bool) *Simulator {
	return &Simulator{payoffs: payoffs, stake: stake, noDataAsLoss: noDataAsLoss}
}

var hundred = decimal.NewFromInt(100)

func (s *Simulator) scaled(p decimal.Decimal) decimal.Decimal {
	return p.Mul(s.stake).Div(hundred)
}

// Run simulates one trade per evaluable signal and derives the return
// series. The trade sequence is totally ordered by (timestamp, symbol,
// direction) so the cumulative series is identical across runs.
func (s *Simulator) Run(outcomes []model.SignalOutcome) model.SimulationReport {
	report := model.SimulationReport{
		Trades: make([]model.SimulatedTrade, 0, len(outcomes)),
	}

	for _, out := range outcomes {
		level, hit := out.HighestHit()
		var payoff decimal.Decimal
		switch {
		case hit:
			payoff = s.scaled(s.payoffs.Levels[level])
		case out.HasNoData() && !s.noDataAsLoss:
			// Unevaluable signal: leaving it out avoids biasing the
			// return series with guessed losses.
			report.Excluded++
			continue
		default:
			payoff = s.scaled(s.payoffs.Miss)
		}
		report.Trades = append(report.Trades, model.SimulatedTrade{
			Symbol:    out.Signal.Symbol,
			Direction: out.Signal.Direction,
			Timestamp: out.Signal.Timestamp,
			HitAny:    hit,
			Level:     level,
			Payoff:    payoff,
		})
	}

	sort.Slice(report.Trades, func(i, j int) bool {
		a, b := report.Trades[i], report.Trades[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.Symbol != b.Symbol {
			return a.Symbol < b.Symbol
		}
		return a.Direction < b.Direction
	})

	s.deriveKPIs(&report)
	return report
}

func (s *Simulator) deriveKPIs(report *model.SimulationReport) {
	cumulative := decimal.Zero
	byMonth := make(map[string]*model.MonthlyReturn)
	var hourSum [24]float64
	var hourCount [24]int

	for _, t := range report.Trades {
		cumulative = cumulative.Add(t.Payoff)
		report.Cumulative = append(report.Cumulative, model.ReturnPoint{
			Timestamp:  t.Timestamp,
			Symbol:     t.Symbol,
			Payoff:     t.Payoff,
			Cumulative: cumulative,
		})

		month := t.Timestamp.UTC().Format("2006-01")
		m, ok := byMonth[month]
		if !ok {
			m = &model.MonthlyReturn{Month: month}
			byMonth[month] = m
		}
		m.Return = m.Return.Add(t.Payoff)
		m.Trades++

		hour := t.Timestamp.UTC().Hour()
		pf, _ := t.Payoff.Float64()
		hourSum[hour] += pf
		hourCount[hour]++
	}
	report.TotalReturn = cumulative

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		report.Monthly = append(report.Monthly, *byMonth[m])
	}

	report.MonthlyMean, report.MonthlyStdev = monthlyMoments(report.Monthly)
	if report.MonthlyStdev > 0 {
		report.SharpeRatio = report.MonthlyMean / report.MonthlyStdev
	}

	for h := 0; h < 24; h++ {
		hr := model.HourlyReturn{Hour: h, Trades: hourCount[h]}
		if hourCount[h] > 0 {
			hr.AvgReturn = hourSum[h] / float64(hourCount[h])
		}
		report.ByHour = append(report.ByHour, hr)
	}
}

// monthlyMoments computes mean and population standard deviation over
// months with at least one trade.
func monthlyMoments(monthly []model.MonthlyReturn) (mean, stdev float64) {
	if len(monthly) == 0 {
		return 0, 0
	}
	var sum float64
	for _, m := range monthly {
		r, _ := m.Return.Float64()
		sum += r
	}
	mean = sum / float64(len(monthly))

	var sumSqDiff float64
	for _, m := range monthly {
		r, _ := m.Return.Float64()
		diff := r - mean
		sumSqDiff += diff * diff
	}
	stdev = math.Sqrt(sumSqDiff / float64(len(monthly)))
	return mean, stdev
}

// FilterByDirection keeps only outcomes for one signal direction.
func FilterByDirection(outcomes []model.SignalOutcome, dir model.Direction) []model.SignalOutcome {
	out := make([]model.SignalOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Signal.Direction == dir {
			out = append(out, o)
		}
	}
	return out
}

// FilterBySymbol keeps only outcomes for one symbol.
func FilterBySymbol(outcomes []model.SignalOutcome, symbol string) []model.SignalOutcome {
	out := make([]model.SignalOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Signal.Symbol == symbol {
			out = append(out, o)
		}
	}
	return out
}
