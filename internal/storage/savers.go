// Package storage buffers ingested records and flushes them to
// Postgres in batches, so a burst on the stream never turns into a
// per-row insert storm.
package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/infrastructure"
	"github.com/Felixpere/final-project/internal/model"
)

// SignalSaver accumulates parsed signals and flushes on a timer or when
// the buffer reaches maxBatch.
type SignalSaver struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration
	maxBatch int

	mu  sync.Mutex
	buf []model.Signal
}

func NewSignalSaver(pool *pgxpool.Pool, logger *zap.Logger, interval time.Duration, maxBatch int) *SignalSaver {
	return &SignalSaver{pool: pool, logger: logger, interval: interval, maxBatch: maxBatch}
}

func (s *SignalSaver) Add(sig model.Signal) {
	s.mu.Lock()
	s.buf = append(s.buf, sig)
	full := len(s.buf) >= s.maxBatch
	s.mu.Unlock()
	if full {
		s.flush(context.Background())
	}
}

func (s *SignalSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.flush(context.Background())
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

func (s *SignalSaver) flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buf
	s.buf = nil
	s.mu.Unlock()

	b := &pgx.Batch{}
	for _, sig := range batch {
		b.Queue(`
			INSERT INTO signals (symbol, direction, entry, tp_40, tp_60, tp_80, tp_100, time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT DO NOTHING`,
			sig.Symbol, sig.Direction, sig.Entry, sig.TP40, sig.TP60, sig.TP80, sig.TP100, sig.Timestamp)
	}
	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		s.logger.Error("failed to flush signals", zap.Error(err), zap.Int("count", len(batch)))
		return
	}
	infrastructure.DBInsertRate.WithLabelValues("signals").Add(float64(len(batch)))
}

// EventSaver is the same pattern for update events.
type EventSaver struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration
	maxBatch int

	mu  sync.Mutex
	buf []model.UpdateEvent
}

func NewEventSaver(pool *pgxpool.Pool, logger *zap.Logger, interval time.Duration, maxBatch int) *EventSaver {
	return &EventSaver{pool: pool, logger: logger, interval: interval, maxBatch: maxBatch}
}

func (s *EventSaver) Add(ev model.UpdateEvent) {
	s.mu.Lock()
	s.buf = append(s.buf, ev)
	full := len(s.buf) >= s.maxBatch
	s.mu.Unlock()
	if full {
		s.flush(context.Background())
	}
}

func (s *EventSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.flush(context.Background())
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

func (s *EventSaver) flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buf
	s.buf = nil
	s.mu.Unlock()

	b := &pgx.Batch{}
	for _, ev := range batch {
		b.Queue(`
			INSERT INTO update_events (symbol, direction, hit_price, time)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING`,
			ev.Symbol, ev.Direction, ev.HitPrice, ev.Timestamp)
	}
	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		s.logger.Error("failed to flush update events", zap.Error(err), zap.Int("count", len(batch)))
		return
	}
	infrastructure.DBInsertRate.WithLabelValues("update_events").Add(float64(len(batch)))
}

// CandleSaver persists rolled-up candles from the processor.
type CandleSaver struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	interval time.Duration
	maxBatch int

	mu  sync.Mutex
	buf []model.Candle
}

func NewCandleSaver(pool *pgxpool.Pool, logger *zap.Logger, interval time.Duration, maxBatch int) *CandleSaver {
	return &CandleSaver{pool: pool, logger: logger, interval: interval, maxBatch: maxBatch}
}

func (s *CandleSaver) Add(c model.Candle) {
	s.mu.Lock()
	s.buf = append(s.buf, c)
	full := len(s.buf) >= s.maxBatch
	s.mu.Unlock()
	if full {
		s.flush(context.Background())
	}
}

func (s *CandleSaver) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.flush(context.Background())
			return
		case <-ticker.C:
			s.flush(ctx)
		}
	}
}

func (s *CandleSaver) flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.buf) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buf
	s.buf = nil
	s.mu.Unlock()

	b := &pgx.Batch{}
	for _, c := range batch {
		b.Queue(`
			INSERT INTO candles (symbol, period, open, high, low, close, volume, time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (symbol, period, time) DO UPDATE
			SET high = EXCLUDED.high, low = EXCLUDED.low,
			    close = EXCLUDED.close, volume = EXCLUDED.volume`,
			c.Symbol, c.Period, c.Open, c.High, c.Low, c.Close, c.Volume, c.Timestamp)
	}
	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		s.logger.Error("failed to flush candles", zap.Error(err), zap.Int("count", len(batch)))
		return
	}
	infrastructure.DBInsertRate.WithLabelValues("candles").Add(float64(len(batch)))
}
