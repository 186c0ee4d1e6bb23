package engine

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Felixpere/final-project/internal/model"
)

// DataLoader reads the evaluation inputs from Postgres. Everything is
// loaded up front; the engine itself never touches the pool.
type DataLoader struct {
	pool *pgxpool.Pool
}

func NewDataLoader(pool *pgxpool.Pool) *DataLoader {
	return &DataLoader{pool: pool}
}

func (l *DataLoader) LoadSignals(ctx context.Context, start, end time.Time) ([]model.Signal, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, symbol, direction, entry, tp_40, tp_60, tp_80, tp_100, time
		FROM signals
		WHERE time >= $1 AND time <= $2
		ORDER BY time ASC, id ASC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []model.Signal
	for rows.Next() {
		var s model.Signal
		if err := rows.Scan(&s.ID, &s.Symbol, &s.Direction, &s.Entry,
			&s.TP40, &s.TP60, &s.TP80, &s.TP100, &s.Timestamp); err != nil {
			return nil, err
		}
		signals = append(signals, s)
	}
	return signals, rows.Err()
}

func (l *DataLoader) LoadCandles(ctx context.Context, symbols []string, after time.Time, period string) ([]model.Candle, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT symbol, period, open, high, low, close, volume, time
		FROM candles
		WHERE symbol = ANY($1) AND period = $2 AND time > $3
		ORDER BY symbol ASC, time ASC`,
		symbols, period, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		if err := rows.Scan(&c.Symbol, &c.Period, &c.Open, &c.High, &c.Low,
			&c.Close, &c.Volume, &c.Timestamp); err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

func (l *DataLoader) LoadUpdateEvents(ctx context.Context, symbols []string, after time.Time) ([]model.UpdateEvent, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT symbol, direction, hit_price, time
		FROM update_events
		WHERE symbol = ANY($1) AND time > $2
		ORDER BY symbol ASC, time ASC`,
		symbols, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.UpdateEvent
	for rows.Next() {
		var e model.UpdateEvent
		if err := rows.Scan(&e.Symbol, &e.Direction, &e.HitPrice, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
