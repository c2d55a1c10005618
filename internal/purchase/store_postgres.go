package purchase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// purchaseSchema references checkout_sessions: a purchase always belongs to
// a pre-existing session.
const purchaseSchema = `
CREATE TABLE IF NOT EXISTS purchases (
    order_id    TEXT PRIMARY KEY,
    session_id  TEXT NOT NULL REFERENCES checkout_sessions (session_id),
    first_name  TEXT NOT NULL,
    last_name   TEXT NOT NULL,
    phone       TEXT NOT NULL,
    address1    TEXT NOT NULL,
    address2    TEXT NOT NULL DEFAULT '',
    city        TEXT NOT NULL,
    state       TEXT NOT NULL,
    postal_code TEXT NOT NULL,
    country     TEXT NOT NULL,
    fax         TEXT NOT NULL DEFAULT '',
    amount      NUMERIC(12,2) NOT NULL,
    currency    TEXT NOT NULL,
    status      TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_purchases_session_id ON purchases (session_id);
`

// PostgresStore persists purchases in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table when it does not exist yet. The checkout
// sessions table must exist first.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, purchaseSchema); err != nil {
		return fmt.Errorf("ensure purchase schema: %w", err)
	}
	return nil
}

const purchaseColumns = `order_id, session_id, first_name, last_name, phone, address1, address2,
	city, state, postal_code, country, fax, amount, currency, status, created_at`

func (s *PostgresStore) Save(ctx context.Context, p Purchase) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.OrderID, p.SessionID, p.Contact.FirstName, p.Contact.LastName, p.Contact.Phone,
		p.Contact.Address1, p.Contact.Address2, p.Contact.City, p.Contact.State,
		p.Contact.PostalCode, p.Contact.Country, p.Contact.Fax,
		p.Amount.String(), p.Currency, string(p.Status), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save purchase: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByOrderID(ctx context.Context, orderID string) (Purchase, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+purchaseColumns+` FROM purchases WHERE order_id = $1`, orderID)
	return scanPurchase(row)
}

func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]Purchase, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+purchaseColumns+` FROM purchases WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []Purchase
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, purchase)
	}
	return purchases, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPurchase(row rowScanner) (Purchase, error) {
	var p Purchase
	var amount, status string
	err := row.Scan(&p.OrderID, &p.SessionID, &p.Contact.FirstName, &p.Contact.LastName,
		&p.Contact.Phone, &p.Contact.Address1, &p.Contact.Address2, &p.Contact.City,
		&p.Contact.State, &p.Contact.PostalCode, &p.Contact.Country, &p.Contact.Fax,
		&amount, &p.Currency, &status, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Purchase{}, ErrNotFound
	}
	if err != nil {
		return Purchase{}, fmt.Errorf("scan purchase: %w", err)
	}
	p.Status = Status(status)
	p.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return Purchase{}, fmt.Errorf("parse purchase amount: %w", err)
	}
	return p, nil
}
