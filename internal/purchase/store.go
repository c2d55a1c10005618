package purchase

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no purchase matches.
var ErrNotFound = errors.New("purchase not found")

// Store persists purchases. Save is create-only; the status is fixed at
// creation time.
type Store interface {
	Save(ctx context.Context, purchase Purchase) error
	GetByOrderID(ctx context.Context, orderID string) (Purchase, error)
	ListBySession(ctx context.Context, sessionID string) ([]Purchase, error)
}
