package audit

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *capturePublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) snapshot() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func TestRecordStampsAndPublishes(t *testing.T) {
	publisher := &capturePublisher{}
	svc := NewService(publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = svc.Run(ctx) }()

	svc.Record(Event{Action: ActionCheckoutCreated, SessionID: "cs_1"})

	require.Eventually(t, func() bool {
		return len(publisher.snapshot()) == 1
	}, time.Second, 10*time.Millisecond)

	event := publisher.snapshot()[0]
	assert.Equal(t, ActionCheckoutCreated, event.Action)
	assert.Equal(t, "cs_1", event.SessionID)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestRecordOnNilServiceIsNoop(t *testing.T) {
	var svc *Service
	// Must not panic: services are wired with a nil audit sink in tests.
	svc.Record(Event{Action: ActionPurchaseFailed})
}
