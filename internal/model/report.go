package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LevelStats 单个TP档位的命中率统计
// HitRate excludes NoData from the denominator; the coverage gap is
// reported separately as NoDataFraction so it is never silently folded
// into the failure count.
type LevelStats struct {
	Level          TPLevel `json:"level"`
	Hit            int     `json:"hit"`
	NotHit         int     `json:"not_hit"`
	NoData         int     `json:"no_data"`
	HitRate        float64 `json:"hit_rate"`
	NoDataFraction float64 `json:"no_data_fraction"`
}

// GroupKey identifies one (symbol, direction, calendar month) bucket.
type GroupKey struct {
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Month     string    `json:"month"` // "2024-03"
}

// GroupStats is the per-bucket hit-rate breakdown.
type GroupStats struct {
	Key     GroupKey               `json:"key"`
	Signals int                    `json:"signals"`
	Levels  [NumTPLevels]LevelStats `json:"levels"`
}

// EvaluationReport 整批信号的评估结果
type EvaluationReport struct {
	Outcomes     []SignalOutcome `json:"outcomes"`
	Rejections   []Rejection     `json:"rejections"`
	Evaluated    int             `json:"evaluated"`
	CoverageGaps int             `json:"coverage_gaps"` // signals with no price data at all
	Repairs      int             `json:"repairs"`       // levels fixed by sequential-consistency repair
}

// ReturnPoint is one step of the cumulative return series.
type ReturnPoint struct {
	Timestamp  time.Time       `json:"timestamp"`
	Symbol     string          `json:"symbol"`
	Payoff     decimal.Decimal `json:"payoff"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// MonthlyReturn is the summed payoff within one calendar month.
type MonthlyReturn struct {
	Month  string          `json:"month"`
	Return decimal.Decimal `json:"return"`
	Trades int             `json:"trades"`
}

// HourlyReturn 按UTC小时统计的信号量与平均收益
type HourlyReturn struct {
	Hour      int     `json:"hour"`
	Trades    int     `json:"trades"`
	AvgReturn float64 `json:"avg_return"`
}

// SimulationReport 固定投注模拟结果与KPI
type SimulationReport struct {
	Trades       []SimulatedTrade `json:"trades"`
	Excluded     int              `json:"excluded"` // unevaluable signals left out of the simulation
	TotalReturn  decimal.Decimal  `json:"total_return"`
	Cumulative   []ReturnPoint    `json:"cumulative"`
	Monthly      []MonthlyReturn  `json:"monthly"`
	MonthlyMean  float64          `json:"monthly_mean"`
	MonthlyStdev float64          `json:"monthly_stdev"`
	SharpeRatio  float64          `json:"sharpe_ratio"` // monthly mean over monthly stdev
	ByHour       []HourlyReturn   `json:"by_hour"`
}
