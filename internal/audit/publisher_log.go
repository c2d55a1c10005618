package audit

import (
	"context"
	"log/slog"
)

// LogPublisher writes audit events to the process log. Used when no Kafka
// brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, event Event) error {
	p.logger.Info("audit event",
		"id", event.ID,
		"action", event.Action,
		"session_id", event.SessionID,
		"order_id", event.OrderID,
		"domain", event.DomainName,
		"reason", event.Reason,
	)
	return nil
}
