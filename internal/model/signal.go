package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction 信号方向
type Direction string

const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// ParseDirection normalizes a raw direction string from the upstream parser.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long":
		return DirectionLong, nil
	case "short":
		return DirectionShort, nil
	default:
		return "", fmt.Errorf("unknown direction %q", s)
	}
}

// TPLevel indexes one of the four take-profit targets of a signal.
type TPLevel int

const (
	TP40 TPLevel = iota
	TP60
	TP80
	TP100

	NumTPLevels = 4
)

func (l TPLevel) String() string {
	switch l {
	case TP40:
		return "tp_40"
	case TP60:
		return "tp_60"
	case TP80:
		return "tp_80"
	case TP100:
		return "tp_100"
	default:
		return fmt.Sprintf("tp_invalid(%d)", int(l))
	}
}

// Signal 代表一条上游解析出的交易信号
// Targets are ordered away from entry: ascending for long, descending for short.
type Signal struct {
	ID        int64           `json:"id" db:"id"`
	Symbol    string          `json:"symbol" db:"symbol"`
	Direction Direction       `json:"direction" db:"direction"`
	Entry     decimal.Decimal `json:"entry" db:"entry"`
	TP40      decimal.Decimal `json:"tp_40" db:"tp_40"`
	TP60      decimal.Decimal `json:"tp_60" db:"tp_60"`
	TP80      decimal.Decimal `json:"tp_80" db:"tp_80"`
	TP100     decimal.Decimal `json:"tp_100" db:"tp_100"`
	Timestamp time.Time       `json:"timestamp" db:"time"`
}

// Target returns the price for one TP level.
func (s Signal) Target(l TPLevel) decimal.Decimal {
	switch l {
	case TP40:
		return s.TP40
	case TP60:
		return s.TP60
	case TP80:
		return s.TP80
	default:
		return s.TP100
	}
}

// Targets returns all four target prices ordered by level.
func (s Signal) Targets() [NumTPLevels]decimal.Decimal {
	return [NumTPLevels]decimal.Decimal{s.TP40, s.TP60, s.TP80, s.TP100}
}

// UpdateEvent 上游推送的目标触达事件 (pre-computed crossing)
type UpdateEvent struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Direction Direction       `json:"direction" db:"direction"`
	HitPrice  decimal.Decimal `json:"hit_price" db:"hit_price"`
	Timestamp time.Time       `json:"timestamp" db:"time"`
}

// Candle 代表一根K线 (OHLC). Gaps in the series mean "no data", never zero price.
type Candle struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	Period    string          `json:"period" db:"period"` // "1d", "1h"
	Open      decimal.Decimal `json:"o" db:"open"`
	High      decimal.Decimal `json:"h" db:"high"`
	Low       decimal.Decimal `json:"l" db:"low"`
	Close     decimal.Decimal `json:"c" db:"close"`
	Volume    decimal.Decimal `json:"v" db:"volume"`
	Timestamp time.Time       `json:"t" db:"time"`
}

// PriceTick is a raw price observation before candle roll-up.
type PriceTick struct {
	Symbol    string          `json:"symbol"`
	Price     decimal.Decimal `json:"price"`
	Volume    decimal.Decimal `json:"volume"`
	Timestamp time.Time       `json:"ts"`
}
