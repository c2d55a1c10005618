package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// checkoutSchema is the DDL executed once on startup. The table is
// append-only: a session row is written exactly once when the processor
// issues its id.
const checkoutSchema = `
CREATE TABLE IF NOT EXISTS checkout_sessions (
    session_id  TEXT PRIMARY KEY,
    domain_name TEXT NOT NULL,
    email       TEXT NOT NULL,
    period      INT NOT NULL,
    price       NUMERIC(12,2) NOT NULL,
    currency    TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkout_sessions_domain_email
    ON checkout_sessions (domain_name, email);
`

// PostgresStore persists checkout sessions in PostgreSQL via database/sql
// over the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, checkoutSchema); err != nil {
		return fmt.Errorf("ensure checkout schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, session Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checkout_sessions (session_id, domain_name, email, period, price, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.SessionID, session.DomainName, session.Email, session.Period,
		session.Price.String(), session.Currency, session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save checkout session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, sessionID string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, domain_name, email, period, price, currency, created_at
		FROM checkout_sessions WHERE session_id = $1`, sessionID)
	return scanSession(row)
}

func (s *PostgresStore) FindByDomainEmail(ctx context.Context, domain, email string) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, domain_name, email, period, price, currency, created_at
		FROM checkout_sessions WHERE domain_name = $1 AND email = $2
		ORDER BY created_at DESC LIMIT 1`, domain, email)
	return scanSession(row)
}

func (s *PostgresStore) List(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, domain_name, email, period, price, currency, created_at
		FROM checkout_sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list checkout sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var session Session
	var price string
	err := row.Scan(&session.SessionID, &session.DomainName, &session.Email,
		&session.Period, &price, &session.Currency, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("scan checkout session: %w", err)
	}
	session.Price, err = decimal.NewFromString(price)
	if err != nil {
		return Session{}, fmt.Errorf("parse session price: %w", err)
	}
	return session, nil
}
