package app

import (
	"encoding/json"
	"strings"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/infrastructure"
	"github.com/Felixpere/final-project/internal/model"
	"github.com/Felixpere/final-project/internal/storage"
)

// NormalizeSymbol unifies upstream symbol spellings into a standard
// ticker. Telegram-sourced signals arrive with cashtags and stray
// separators (e.g. "$pyth / USDT" -> "PYTHUSDT").
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// startIngestion subscribes to the parsed-message stream published by
// the upstream extractor and hands records to the batch savers.
func (a *App) startIngestion(signalSaver *storage.SignalSaver, eventSaver *storage.EventSaver, candleSaver *storage.CandleSaver) {
	// 1. Parsed signals
	_, err := a.JS.Subscribe("signals.parsed.*", func(m *nats.Msg) {
		var sig model.Signal
		if err := json.Unmarshal(m.Data, &sig); err != nil {
			a.Logger.Error("failed to unmarshal signal", zap.Error(err))
			return
		}
		sig.Symbol = NormalizeSymbol(sig.Symbol)
		signalSaver.Add(sig)
		infrastructure.IngestRate.WithLabelValues("signal").Inc()
		m.Ack()
	}, nats.Durable("signal_saver"), nats.ManualAck())
	if err != nil {
		a.Logger.Fatal("failed to subscribe to signals", zap.Error(err))
	}

	// 2. Target-hit update events
	_, err = a.JS.Subscribe("price.update.*", func(m *nats.Msg) {
		var ev model.UpdateEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			a.Logger.Error("failed to unmarshal update event", zap.Error(err))
			return
		}
		ev.Symbol = NormalizeSymbol(ev.Symbol)
		eventSaver.Add(ev)
		infrastructure.IngestRate.WithLabelValues("update_event").Inc()
		m.Ack()
	}, nats.Durable("event_saver"), nats.ManualAck())
	if err != nil {
		a.Logger.Fatal("failed to subscribe to update events", zap.Error(err))
	}

	// 3. Rolled-up daily candles from the processor
	_, err = a.JS.Subscribe("price.candle.*.*", func(m *nats.Msg) {
		var c model.Candle
		if err := json.Unmarshal(m.Data, &c); err != nil {
			a.Logger.Error("failed to unmarshal candle", zap.Error(err))
			return
		}
		candleSaver.Add(c)
		m.Ack()
	}, nats.Durable("candle_saver"), nats.ManualAck())
	if err != nil {
		a.Logger.Fatal("failed to subscribe to candles", zap.Error(err))
	}
}
