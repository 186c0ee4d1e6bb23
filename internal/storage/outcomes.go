package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/infrastructure"
	"github.com/Felixpere/final-project/internal/model"
)

// OutcomeStore persists evaluated outcomes for the dashboard. Outcomes
// are derived data: an evaluation run replaces whatever an earlier run
// wrote for the same signal.
type OutcomeStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewOutcomeStore(pool *pgxpool.Pool, logger *zap.Logger) *OutcomeStore {
	return &OutcomeStore{pool: pool, logger: logger}
}

func (s *OutcomeStore) SaveOutcomes(ctx context.Context, outcomes []model.SignalOutcome) error {
	b := &pgx.Batch{}
	for _, out := range outcomes {
		for l := model.TP40; l <= model.TP100; l++ {
			lv := out.Levels[l]
			var hitTime *time.Time
			if lv.State == model.StateHit {
				t := lv.HitTime
				hitTime = &t
			}
			b.Queue(`
				INSERT INTO signal_tp_results (signal_id, level, state, hit_time, hit_price)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (signal_id, level) DO UPDATE
				SET state = EXCLUDED.state, hit_time = EXCLUDED.hit_time,
				    hit_price = EXCLUDED.hit_price`,
				out.Signal.ID, l.String(), lv.State.String(), hitTime, lv.HitPrice)
		}
	}
	if err := s.pool.SendBatch(ctx, b).Close(); err != nil {
		s.logger.Error("failed to save outcomes", zap.Error(err), zap.Int("signals", len(outcomes)))
		return err
	}
	infrastructure.DBInsertRate.WithLabelValues("signal_tp_results").Add(float64(len(outcomes) * model.NumTPLevels))
	return nil
}
