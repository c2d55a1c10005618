package checkout

import (
	"context"
	"errors"
)

// ErrNotFound is returned by stores when no session matches.
var ErrNotFound = errors.New("checkout session not found")

// Store persists checkout sessions. Save is create-only: sessions are never
// mutated after the processor issues their id.
type Store interface {
	Save(ctx context.Context, session Session) error
	GetByID(ctx context.Context, sessionID string) (Session, error)
	FindByDomainEmail(ctx context.Context, domain, email string) (Session, error)
	List(ctx context.Context) ([]Session, error)
}
