package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/infrastructure"
	"github.com/Felixpere/final-project/internal/model"
)

// CandleProcessor rolls raw price ticks into daily OHLC candles. The
// evaluation engine validates targets against daily high/low, so day
// resolution is the canonical candle period for this pipeline.
type CandleProcessor struct {
	js      nats.JetStreamContext
	logger  *zap.Logger
	candles map[string]*model.Candle
	mu      sync.Mutex
}

func NewCandleProcessor(js nats.JetStreamContext, logger *zap.Logger) *CandleProcessor {
	return &CandleProcessor{
		js:      js,
		logger:  logger,
		candles: make(map[string]*model.Candle),
	}
}

func (p *CandleProcessor) Run(ctx context.Context) error {
	_, err := p.js.Subscribe("price.raw.*", func(msg *nats.Msg) {
		var tick model.PriceTick
		if err := json.Unmarshal(msg.Data, &tick); err != nil {
			p.logger.Error("failed to unmarshal price tick", zap.Error(err))
			return
		}
		infrastructure.IngestRate.WithLabelValues("price_tick").Inc()
		p.processTick(tick)
		msg.Ack()
	}, nats.Durable("candle-processor"), nats.ManualAck())

	if err != nil {
		return err
	}

	go p.flushLoop(ctx)
	p.logger.Info("candle processor started")
	return nil
}

func (p *CandleProcessor) processTick(tick model.PriceTick) {
	p.mu.Lock()
	defer p.mu.Unlock()

	day := tick.Timestamp.UTC().Truncate(24 * time.Hour)
	key := fmt.Sprintf("%s:%s", tick.Symbol, day.Format("2006-01-02"))

	candle, ok := p.candles[key]
	if !ok {
		p.candles[key] = &model.Candle{
			Symbol:    tick.Symbol,
			Period:    "1d",
			Open:      tick.Price,
			High:      tick.Price,
			Low:       tick.Price,
			Close:     tick.Price,
			Volume:    tick.Volume,
			Timestamp: day,
		}
		return
	}

	if tick.Price.GreaterThan(candle.High) {
		candle.High = tick.Price
	}
	if tick.Price.LessThan(candle.Low) {
		candle.Low = tick.Price
	}
	candle.Close = tick.Price
	candle.Volume = candle.Volume.Add(tick.Volume)
}

func (p *CandleProcessor) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.flush()
		}
	}
}

func (p *CandleProcessor) flush() {
	p.mu.Lock()
	today := time.Now().UTC().Truncate(24 * time.Hour)
	toFlush := make([]*model.Candle, 0)

	for key, candle := range p.candles {
		// A candle from a previous day is complete.
		if candle.Timestamp.Before(today) {
			toFlush = append(toFlush, candle)
			delete(p.candles, key)
		}
	}
	p.mu.Unlock()

	for _, candle := range toFlush {
		subject := fmt.Sprintf("price.candle.1d.%s", candle.Symbol)
		data, _ := json.Marshal(candle)
		if _, err := p.js.Publish(subject, data); err != nil {
			p.logger.Error("failed to publish candle", zap.Error(err))
		}
	}
}
