package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LoanState string

const (
	LoanStateActive LoanState = "ACTIVE"
	LoanStateClosed LoanState = "CLOSED"
)

// LoanProgress is derived from a loan and its payment log; it is never persisted.
type LoanProgress struct {
	LoanID                     string          `json:"loan_id"`
	Version                    int             `json:"version"`
	TotalPaid                  decimal.Decimal `json:"total_paid"`
	EmisPaid                   int             `json:"emis_paid"`
	TotalEmis                  int             `json:"total_emis"`
	RemainingAmount            decimal.Decimal `json:"remaining_amount"`
	PercentPaid                decimal.Decimal `json:"percent_paid"`
	NextDueDate                time.Time       `json:"next_due_date"`
	IsOverdue                  bool            `json:"is_overdue"`
	State                      LoanState       `json:"state"`
	FinalInstallmentAdjustment decimal.Decimal `json:"final_installment_adjustment"`
	AsOf                       time.Time       `json:"as_of"`
}

// Reminder is an EMI due notice produced by the scheduler.
type Reminder struct {
	LoanID         string          `json:"loan_id"`
	RegistrationNo string          `json:"registration_no"`
	DueDate        time.Time       `json:"due_date"`
	Amount         decimal.Decimal `json:"amount"`
	Overdue        bool            `json:"overdue"`
	Message        string          `json:"message"`
}
