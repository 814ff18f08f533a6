package audit

import (
	"context"

	"FinSight/internal/domain/models"
	pkgkafka "FinSight/pkg/kafka"
	applogger "FinSight/pkg/logger"
)

// KafkaSink publishes confidence degradation and fallback events to a Kafka
// topic for auditability. Events are keyed by ticker so one instrument's
// trail lands on one partition in order.
type KafkaSink struct {
	producer *pkgkafka.Producer
	topic    string
	log      *applogger.Logger
}

func NewKafkaSink(producer *pkgkafka.Producer, topic string, l *applogger.Logger) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic, log: l}
}

func (s *KafkaSink) Record(ctx context.Context, event models.AuditEvent) error {
	err := s.producer.Publish(ctx, s.topic, []byte(event.Ticker), event)
	if err != nil {
		s.log.Warn("audit publish failed",
			applogger.String("ticker", event.Ticker),
			applogger.Error(err))
	}
	return err
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}

// NopSink is used when the audit trail is disabled; degradations are still
// logged by the pipeline itself.
type NopSink struct{}

func (NopSink) Record(context.Context, models.AuditEvent) error { return nil }
func (NopSink) Close() error                                    { return nil }
