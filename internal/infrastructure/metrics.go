package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignalsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signals_evaluated_total",
		Help: "Signals run through TP-hit resolution",
	}, []string{"direction"})

	SignalsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "signals_rejected_total",
		Help: "Signals excluded from evaluation by validation",
	}, []string{"reason"})

	CoverageGaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coverage_gaps_total",
		Help: "Signals with no price data for any TP level",
	})

	ConsistencyRepairs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "consistency_repairs_total",
		Help: "TP levels synthesized or clamped by sequential-consistency repair",
	})

	EvalDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "evaluation_batch_seconds",
		Help: "Wall time of one evaluation batch",
	})

	IngestRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_total",
		Help: "Messages ingested from the signal stream",
	}, []string{"kind"})

	DBInsertRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "db_insert_total",
		Help: "Total number of records inserted into DB",
	}, []string{"table"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_total",
		Help: "Total number of active WebSocket connections",
	})
)
