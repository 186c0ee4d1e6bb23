package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OutcomeState is the three-way result of evaluating one TP level.
// NoData means the symbol had no usable price history after the signal,
// which is deliberately distinct from NotHit.
type OutcomeState int

const (
	StateNoData OutcomeState = iota
	StateNotHit
	StateHit
)

func (s OutcomeState) String() string {
	switch s {
	case StateHit:
		return "hit"
	case StateNotHit:
		return "not_hit"
	default:
		return "no_data"
	}
}

// TPOutcome is the resolved result for one (signal, level) pair.
// HitTime and HitPrice are only meaningful when State == StateHit.
type TPOutcome struct {
	State    OutcomeState    `json:"state"`
	HitTime  time.Time       `json:"hit_time,omitempty"`
	HitPrice decimal.Decimal `json:"hit_price,omitempty"`
}

// SignalOutcome 单条信号的完整评估结果
type SignalOutcome struct {
	Signal   Signal                 `json:"signal"`
	Levels   [NumTPLevels]TPOutcome `json:"levels"`
	Repaired int                    `json:"repaired"` // levels synthesized or clamped by consistency repair
}

// HighestHit returns the highest TP level in state Hit, if any.
func (o SignalOutcome) HighestHit() (TPLevel, bool) {
	for l := TP100; l >= TP40; l-- {
		if o.Levels[l].State == StateHit {
			return l, true
		}
	}
	return 0, false
}

// HasNoData reports whether any level could not be evaluated.
func (o SignalOutcome) HasNoData() bool {
	for _, lv := range o.Levels {
		if lv.State == StateNoData {
			return true
		}
	}
	return false
}

// AllNoData reports whether the signal had no usable price data at all.
func (o SignalOutcome) AllNoData() bool {
	for _, lv := range o.Levels {
		if lv.State != StateNoData {
			return false
		}
	}
	return true
}

// Rejection records a signal excluded from evaluation and why.
type Rejection struct {
	Signal Signal `json:"signal"`
	Reason string `json:"reason"`
}

// SymbolActivity 按币种统计的信号活跃度, 仅用于排名
type SymbolActivity struct {
	Symbol        string    `json:"symbol"`
	FirstSignal   time.Time `json:"first_signal"`
	LastSignal    time.Time `json:"last_signal"`
	SignalCount   int       `json:"signal_count"`
	ActiveDays    float64   `json:"active_days"`
	SignalsPerDay float64   `json:"signals_per_day"`
}

// SimulatedTrade is one signal converted to a fixed-stake payoff.
type SimulatedTrade struct {
	Symbol    string          `json:"symbol"`
	Direction Direction       `json:"direction"`
	Timestamp time.Time       `json:"timestamp"`
	HitAny    bool            `json:"hit_any"`
	Level     TPLevel         `json:"level"` // highest hit level, valid only when HitAny
	Payoff    decimal.Decimal `json:"payoff"`
}
