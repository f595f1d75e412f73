package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PaymentMethodAutoDebit = "auto-debit"
	PaymentMethodManual    = "manual"
)

// PaymentRecord is one row of the append-only EMI payment log.
type PaymentRecord struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	LoanID        string          `json:"loan_id" db:"loan_id"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentDate   time.Time       `json:"payment_date" db:"payment_date"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	PaymentDate   string          `json:"payment_date" validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"max=32"`
}

type RecordPaymentResponse struct {
	Payment  *PaymentRecord `json:"payment"`
	Progress *LoanProgress  `json:"progress"`
}

type PaymentHistoryResponse struct {
	LoanID   string           `json:"loan_id"`
	Payments []*PaymentRecord `json:"payments"`
}
