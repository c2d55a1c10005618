package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session is one processor-hosted payment collection flow tied to a single
// domain purchase attempt. Rows are immutable and never deleted: they are
// the audit trail a later purchase is validated against.
type Session struct {
	SessionID  string          `json:"session_id"`
	DomainName string          `json:"domain_name"`
	Email      string          `json:"email"`
	Period     int             `json:"period"`
	Price      decimal.Decimal `json:"price"`
	Currency   string          `json:"currency"`
	CreatedAt  time.Time       `json:"created_at"`
}
