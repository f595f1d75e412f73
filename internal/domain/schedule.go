package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleEntry represents one period of an amortization schedule
type ScheduleEntry struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	LoanID           string          `json:"loan_id,omitempty" db:"loan_id"`
	Version          int             `json:"version,omitempty" db:"version"`
	PeriodIndex      int             `json:"period_index" db:"period_index"`
	DueDate          time.Time       `json:"due_date" db:"due_date"`
	OpeningBalance   decimal.Decimal `json:"opening_balance" db:"opening_balance"`
	InterestPortion  decimal.Decimal `json:"interest_portion" db:"interest_portion"`
	PrincipalPortion decimal.Decimal `json:"principal_portion" db:"principal_portion"`
	ClosingBalance   decimal.Decimal `json:"closing_balance" db:"closing_balance"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Payment is the amount due for the period.
func (e ScheduleEntry) Payment() decimal.Decimal {
	return e.InterestPortion.Add(e.PrincipalPortion)
}

// Schedule is the full output of amortizing a set of terms.
type Schedule struct {
	InstallmentAmount          decimal.Decimal `json:"installment_amount"`
	FinalInstallmentAdjustment decimal.Decimal `json:"final_installment_adjustment"`
	Entries                    []ScheduleEntry `json:"entries"`
}

func (s *Schedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.InterestPortion)
	}
	return total
}

func (s *Schedule) TotalPrincipal() decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.PrincipalPortion)
	}
	return total
}

// TotalPayable is the sum of every scheduled payment, final adjustment included.
func (s *Schedule) TotalPayable() decimal.Decimal {
	return s.TotalPrincipal().Add(s.TotalInterest())
}

// YearlyPoint is a cumulative snapshot taken at the end of each loan year.
type YearlyPoint struct {
	Year          int             `json:"year"`
	PrincipalPaid decimal.Decimal `json:"principal_paid"`
	InterestPaid  decimal.Decimal `json:"interest_paid"`
	Balance       decimal.Decimal `json:"balance"`
}

type ScheduleResponse struct {
	LoanID                     string          `json:"loan_id"`
	Version                    int             `json:"version"`
	InstallmentAmount          decimal.Decimal `json:"installment_amount"`
	FinalInstallmentAdjustment decimal.Decimal `json:"final_installment_adjustment"`
	Schedule                   []ScheduleEntry `json:"schedule"`
}
