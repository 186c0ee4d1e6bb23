package push

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Felixpere/final-project/internal/model"
)

// jetStream is the slice of nats.JetStreamContext the publisher uses.
type jetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// OutcomePublisher pushes freshly evaluated outcomes onto the stream,
// one message per signal, so dashboard clients subscribed through the
// gateway see results as soon as a run finishes.
type OutcomePublisher struct {
	js     jetStream
	logger *zap.Logger
}

func NewOutcomePublisher(js nats.JetStreamContext, logger *zap.Logger) *OutcomePublisher {
	return &OutcomePublisher{js: js, logger: logger}
}

// PublishOutcomes emits each outcome to "signals.outcome.<symbol>".
// Publish failures are logged and skipped; the outcomes are already
// persisted by the time this runs, so the push is best effort.
func (p *OutcomePublisher) PublishOutcomes(outcomes []model.SignalOutcome) {
	for _, out := range outcomes {
		data, err := json.Marshal(out)
		if err != nil {
			p.logger.Error("failed to marshal outcome", zap.Int64("signal_id", out.Signal.ID), zap.Error(err))
			continue
		}
		subject := fmt.Sprintf("signals.outcome.%s", out.Signal.Symbol)
		if _, err := p.js.Publish(subject, data); err != nil {
			p.logger.Error("failed to publish outcome", zap.String("subject", subject), zap.Error(err))
		}
	}
}
