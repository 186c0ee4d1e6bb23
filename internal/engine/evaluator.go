package engine

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/infrastructure"
	"github.com/Felixpere/final-project/internal/model"
	"github.com/Felixpere/final-project/internal/series"
)

// Evaluator runs a closed batch of signals through validation, TP-hit
// resolution and sequential-consistency repair. Resolution is fanned out
// across a fixed worker pool; each worker writes its outcome into the
// slot matching the signal's input position, so the output table is
// identical across runs regardless of scheduling.
type Evaluator struct {
	workers int
	logger  *zap.Logger
}

func NewEvaluator(workers int, logger *zap.Logger) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{workers: workers, logger: logger}
}

// Input is the closed dataset for one evaluation run. Price data is
// fully in memory before Run starts; the engine performs no I/O.
type Input struct {
	Signals   []model.Signal
	Candles   []model.Candle
	Events    []model.UpdateEvent
	Tolerance decimal.Decimal
}

// Run evaluates the batch. Invalid signals land in the rejection list
// and never abort the rest of the batch.
func (e *Evaluator) Run(ctx context.Context, in Input) model.EvaluationReport {
	start := time.Now()
	report := model.EvaluationReport{
		Rejections: make([]model.Rejection, 0),
	}

	valid := make([]model.Signal, 0, len(in.Signals))
	for _, sig := range in.Signals {
		if err := ValidateSignal(sig); err != nil {
			report.Rejections = append(report.Rejections, model.Rejection{Signal: sig, Reason: err.Error()})
			infrastructure.SignalsRejected.WithLabelValues(rejectionLabel(err)).Inc()
			continue
		}
		valid = append(valid, sig)
	}

	// One index per batch, shared read-only by all workers.
	idx := series.Build(in.Candles, in.Events)
	resolver := NewResolver(idx, in.Tolerance)

	outcomes := make([]model.SignalOutcome, len(valid))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = Repair(resolver.Resolve(valid[i]))
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range valid {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	// Jobs are dispatched in input order, so on cancellation everything
	// past the last dispatched slot is simply absent from the report.
	outcomes = outcomes[:dispatched]

	for _, out := range outcomes {
		infrastructure.SignalsEvaluated.WithLabelValues(string(out.Signal.Direction)).Inc()
		if out.AllNoData() {
			report.CoverageGaps++
			infrastructure.CoverageGaps.Inc()
		}
		if out.Repaired > 0 {
			report.Repairs += out.Repaired
			infrastructure.ConsistencyRepairs.Add(float64(out.Repaired))
		}
	}

	report.Outcomes = outcomes
	report.Evaluated = len(outcomes)

	infrastructure.EvalDuration.Observe(time.Since(start).Seconds())
	e.logger.Info("evaluation batch finished",
		zap.Int("signals", len(in.Signals)),
		zap.Int("evaluated", report.Evaluated),
		zap.Int("rejected", len(report.Rejections)),
		zap.Int("coverage_gaps", report.CoverageGaps),
		zap.Int("repairs", report.Repairs),
		zap.Duration("took", time.Since(start)),
	)
	return report
}
