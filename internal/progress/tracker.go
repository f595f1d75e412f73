// Package progress derives repayment progress for a loan from its payment log.
//
// Every function takes the loan and the full log explicitly and returns new
// values; nothing is cached between calls.
package progress

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/carloan-engine/internal/domain"
	customError "github.com/segyhp/carloan-engine/pkg/errors"
	"github.com/segyhp/carloan-engine/pkg/utils"
)

const percentScale = 2

var hundred = decimal.NewFromInt(100)

// TotalPaid sums every payment in the log.
func TotalPaid(payments []*domain.PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Remaining is installment times tenure minus what has been paid. It goes
// negative when the borrower overpays.
func Remaining(loan *domain.Loan, payments []*domain.PaymentRecord) decimal.Decimal {
	return loan.TotalScheduled().Sub(TotalPaid(payments))
}

// State reports CLOSED once every EMI is paid or nothing remains. A loan whose
// persisted status is already closed stays closed.
func State(loan *domain.Loan, payments []*domain.PaymentRecord) domain.LoanState {
	if loan.Status == domain.LoanStatusClosed {
		return domain.LoanStateClosed
	}
	if len(payments) >= loan.TenureMonths {
		return domain.LoanStateClosed
	}
	if !Remaining(loan, payments).IsPositive() {
		return domain.LoanStateClosed
	}
	return domain.LoanStateActive
}

// NextDueDate is the due date of the first unpaid EMI, matched by payment count.
func NextDueDate(loan *domain.Loan, emisPaid int) time.Time {
	return utils.AddMonths(loan.StartDate, emisPaid)
}

// RecordPayment validates newPayment and returns a new log with it appended.
// The input slice is never modified. Amounts are not matched against the
// installment.
func RecordPayment(loan *domain.Loan, payments []*domain.PaymentRecord, newPayment domain.PaymentRecord) ([]*domain.PaymentRecord, error) {
	if !newPayment.Amount.IsPositive() {
		return nil, customError.WrapInvalidPayment("amount must be greater than 0")
	}
	if newPayment.PaymentDate.IsZero() {
		return nil, customError.WrapInvalidPayment("payment date is required")
	}
	if State(loan, payments) == domain.LoanStateClosed {
		return nil, customError.WrapLoanClosed(loan.LoanID)
	}

	next := make([]*domain.PaymentRecord, len(payments), len(payments)+1)
	copy(next, payments)
	return append(next, &newPayment), nil
}

// ComputeProgress summarises the loan as of asOf. The clock is always passed
// in, so the same inputs give the same answer.
func ComputeProgress(loan *domain.Loan, payments []*domain.PaymentRecord, asOf time.Time) domain.LoanProgress {
	totalPaid := TotalPaid(payments)
	scheduled := loan.TotalScheduled()
	emisPaid := len(payments)
	state := State(loan, payments)
	nextDue := NextDueDate(loan, emisPaid)

	percent := decimal.Zero
	if scheduled.IsPositive() {
		percent = decimal.Min(totalPaid.Div(scheduled).Mul(hundred), hundred).Round(percentScale)
	}

	return domain.LoanProgress{
		LoanID:                     loan.LoanID,
		Version:                    loan.Version,
		TotalPaid:                  totalPaid,
		EmisPaid:                   emisPaid,
		TotalEmis:                  loan.TenureMonths,
		RemainingAmount:            scheduled.Sub(totalPaid),
		PercentPaid:                percent,
		NextDueDate:                nextDue,
		IsOverdue:                  state == domain.LoanStateActive && utils.IsBeforeDate(nextDue, asOf),
		State:                      state,
		FinalInstallmentAdjustment: loan.FinalInstallmentAdjustment,
		AsOf:                       utils.DateOf(asOf),
	}
}
