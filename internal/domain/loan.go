package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive = "active"
	LoanStatusClosed = "closed"
)

// LoanTerms are fixed at origination. A change of terms produces a new loan version.
type LoanTerms struct {
	Principal         decimal.Decimal `json:"principal" db:"principal"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" db:"annual_rate_percent"`
	TenureMonths      int             `json:"tenure_months" db:"tenure_months"`
	StartDate         time.Time       `json:"start_date" db:"start_date"`
}

// Loan represents a persisted loan version together with its derived installment.
type Loan struct {
	ID             uuid.UUID `json:"id" db:"id"`
	LoanID         string    `json:"loan_id" db:"loan_id"`
	RegistrationNo string    `json:"registration_no" db:"registration_no"`
	Version        int       `json:"version" db:"version"`
	LoanTerms
	InstallmentAmount          decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	FinalInstallmentAdjustment decimal.Decimal `json:"final_installment_adjustment" db:"final_installment_adjustment"`
	BankName                   string          `json:"bank_name" db:"bank_name"`
	LoanAccountNumber          string          `json:"loan_account_number" db:"loan_account_number"`
	Status                     string          `json:"status" db:"status"`
	CreatedAt                  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalScheduled is installment times tenure, the figure progress is measured against.
func (l *Loan) TotalScheduled() decimal.Decimal {
	return l.InstallmentAmount.Mul(decimal.NewFromInt(int64(l.TenureMonths)))
}

// DTOs for requests and responses

type CalculateEMIRequest struct {
	Principal         decimal.Decimal `json:"principal" validate:"gt=0"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"gte=0"`
	TenureMonths      int             `json:"tenure_months" validate:"required,gt=0,lte=600"`
	StartDate         string          `json:"start_date,omitempty"`
}

type CalculateEMIResponse struct {
	InstallmentAmount          decimal.Decimal `json:"installment_amount"`
	TotalInterest              decimal.Decimal `json:"total_interest"`
	TotalPayable               decimal.Decimal `json:"total_payable"`
	FinalInstallmentAdjustment decimal.Decimal `json:"final_installment_adjustment"`
	Schedule                   []ScheduleEntry `json:"schedule"`
	YearlyBreakup              []YearlyPoint   `json:"yearly_breakup"`
}

type CreateLoanRequest struct {
	LoanID            string          `json:"loan_id" validate:"required,max=64"`
	RegistrationNo    string          `json:"registration_no" validate:"required,max=32"`
	Principal         decimal.Decimal `json:"principal" validate:"gt=0"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"gte=0"`
	TenureMonths      int             `json:"tenure_months" validate:"required,gt=0,lte=600"`
	StartDate         string          `json:"start_date" validate:"required"`
	BankName          string          `json:"bank_name" validate:"max=128"`
	LoanAccountNumber string          `json:"loan_account_number" validate:"max=64"`
}

type ReviseTermsRequest struct {
	Principal         decimal.Decimal `json:"principal" validate:"gt=0"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent" validate:"gte=0"`
	TenureMonths      int             `json:"tenure_months" validate:"required,gt=0,lte=600"`
	StartDate         string          `json:"start_date" validate:"required"`
}

type CreateLoanResponse struct {
	Loan     *Loan           `json:"loan"`
	Schedule []ScheduleEntry `json:"schedule"`
}
