// Package audit captures the checkout/purchase trail as events for
// reconciliation. Events are buffered in-process and published
// asynchronously so provider round trips never wait on the audit sink.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Action names one auditable step in the checkout workflow.
type Action string

const (
	ActionCheckoutCreated  Action = "checkout_session_created"
	ActionPaymentCompleted Action = "payment_completed"
	ActionPurchaseSuccess  Action = "purchase_succeeded"
	// ActionPurchaseFailed marks a registrar failure after checkout; the
	// payment is not refunded automatically, so these events are the input
	// for manual reconciliation.
	ActionPurchaseFailed Action = "purchase_failed"
)

// Event is emitted from domain logic. Keep it transport-agnostic so sinks
// can fan out.
type Event struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id,omitempty"`
	OrderID    string    `json:"order_id,omitempty"`
	DomainName string    `json:"domain_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// Publisher delivers events to a sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Service accepts events from domain code and hands them to the publisher on
// a background goroutine. Record never blocks: when the buffer is full the
// event is dropped with a warning, since audit must not stall checkouts.
type Service struct {
	publisher Publisher
	logger    *slog.Logger
	inbox     chan Event
}

// NewService builds the audit service with a buffered inbox.
func NewService(publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		publisher: publisher,
		logger:    logger,
		inbox:     make(chan Event, 256),
	}
}

// Record enqueues one event, stamping id and time when absent.
func (s *Service) Record(event Event) {
	if s == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case s.inbox <- event:
	default:
		s.logger.Warn("audit inbox full, dropping event", "action", event.Action, "session_id", event.SessionID)
	}
}

// Run drains the inbox until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-s.inbox:
			if err := s.publisher.Publish(ctx, event); err != nil {
				s.logger.Error("publish audit event", "action", event.Action, "error", err)
			}
		}
	}
}
