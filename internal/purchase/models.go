package purchase

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the terminal outcome of a registrar order. It is fixed when the
// Purchase row is created; there is no transition path afterwards.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Contact is the single buyer contact used, unchanged, for all four
// registrar contact roles.
type Contact struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Address1   string `json:"address1"`
	Address2   string `json:"address2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Fax        string `json:"fax"`
}

// Purchase is one confirmed registrar order, created only after the
// registrar acknowledges placement.
type Purchase struct {
	OrderID   string          `json:"order_id"`
	SessionID string          `json:"session_id"`
	Contact   Contact         `json:"contact"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}
