// Package amortization computes fixed-installment (EMI) loan schedules.
//
// All functions are pure: the same inputs always yield the same schedule.
// Money is rounded to the currency minor unit with round-half-up, and the
// rounded installment is the only installment figure used downstream.
package amortization

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/segyhp/carloan-engine/internal/domain"
	customError "github.com/segyhp/carloan-engine/pkg/errors"
	"github.com/segyhp/carloan-engine/pkg/utils"
)

const (
	// CurrencyScale is the number of minor-unit digits (paise, cents).
	CurrencyScale = 2

	// factorScale bounds the digits kept while compounding (1+r)^n.
	factorScale = 32

	monthsPerYear = 12
)

var (
	one                  = decimal.NewFromInt(1)
	ratePercentToMonthly = decimal.NewFromInt(100 * monthsPerYear)
)

// MonthlyRate converts an annual percentage into a per-month fraction: rate/100/12.
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(ratePercentToMonthly)
}

// ValidateTerms rejects terms that cannot be amortized.
func ValidateTerms(principal, annualRatePercent decimal.Decimal, tenureMonths int) error {
	if !principal.IsPositive() {
		return customError.WrapInvalidTerms(fmt.Sprintf("principal must be greater than 0, got %s", principal))
	}
	if !principal.Equal(principal.Round(CurrencyScale)) {
		return customError.WrapInvalidTerms(fmt.Sprintf("principal must be in whole minor units, got %s", principal))
	}
	if tenureMonths <= 0 {
		return customError.WrapInvalidTerms(fmt.Sprintf("tenure must be at least 1 month, got %d", tenureMonths))
	}
	if annualRatePercent.IsNegative() {
		return customError.WrapInvalidTerms(fmt.Sprintf("interest rate must not be negative, got %s", annualRatePercent))
	}
	return nil
}

// ComputeInstallment returns the equated monthly installment rounded to the minor unit.
//
//	r = annualRatePercent / 100 / 12
//	installment = P * r * (1+r)^n / ((1+r)^n - 1), or P / n when r is zero
func ComputeInstallment(principal, annualRatePercent decimal.Decimal, tenureMonths int) (decimal.Decimal, error) {
	if err := ValidateTerms(principal, annualRatePercent, tenureMonths); err != nil {
		return decimal.Zero, err
	}

	r := MonthlyRate(annualRatePercent)
	n := decimal.NewFromInt(int64(tenureMonths))

	if r.IsZero() {
		return principal.Div(n).Round(CurrencyScale), nil
	}

	factor := compound(r, tenureMonths)
	installment := principal.Mul(r).Mul(factor).Div(factor.Sub(one))

	return installment.Round(CurrencyScale), nil
}

// compound returns (1+r)^periods.
func compound(r decimal.Decimal, periods int) decimal.Decimal {
	base := one.Add(r)
	factor := one
	for i := 0; i < periods; i++ {
		factor = factor.Mul(base).Round(factorScale)
	}
	return factor
}

// BuildSchedule splits each installment into interest and principal.
//
// Interest for a period is the opening balance times the monthly rate, rounded
// to the minor unit. The last period takes whatever principal is left so the
// closing balance is exactly zero; the difference between that final payment
// and installmentAmount is reported as FinalInstallmentAdjustment.
func BuildSchedule(principal, annualRatePercent decimal.Decimal, tenureMonths int, installmentAmount decimal.Decimal) (*domain.Schedule, error) {
	if err := ValidateTerms(principal, annualRatePercent, tenureMonths); err != nil {
		return nil, err
	}
	if installmentAmount.IsNegative() {
		return nil, customError.WrapInvalidTerms(fmt.Sprintf("installment must not be negative, got %s", installmentAmount))
	}

	r := MonthlyRate(annualRatePercent)
	entries := make([]domain.ScheduleEntry, 0, tenureMonths)
	balance := principal

	for period := 1; period <= tenureMonths; period++ {
		interest := balance.Mul(r).Round(CurrencyScale)

		var principalPortion decimal.Decimal
		if period == tenureMonths {
			principalPortion = balance
		} else {
			principalPortion = installmentAmount.Sub(interest)
			// Rounding on tiny loans can push the balance below zero early.
			principalPortion = decimal.Min(principalPortion, balance)
			principalPortion = decimal.Max(principalPortion, decimal.Zero)
		}

		closing := balance.Sub(principalPortion)
		entries = append(entries, domain.ScheduleEntry{
			PeriodIndex:      period,
			OpeningBalance:   balance,
			InterestPortion:  interest,
			PrincipalPortion: principalPortion,
			ClosingBalance:   closing,
		})
		balance = closing
	}

	last := entries[len(entries)-1]
	return &domain.Schedule{
		InstallmentAmount:          installmentAmount,
		FinalInstallmentAdjustment: last.Payment().Sub(installmentAmount),
		Entries:                    entries,
	}, nil
}

// Amortize computes the installment and full schedule for terms, with due
// dates. Period 1 falls due on the start date, period k k-1 months later.
func Amortize(terms domain.LoanTerms) (*domain.Schedule, error) {
	installment, err := ComputeInstallment(terms.Principal, terms.AnnualRatePercent, terms.TenureMonths)
	if err != nil {
		return nil, err
	}

	schedule, err := BuildSchedule(terms.Principal, terms.AnnualRatePercent, terms.TenureMonths, installment)
	if err != nil {
		return nil, err
	}

	for i := range schedule.Entries {
		schedule.Entries[i].DueDate = utils.AddMonths(terms.StartDate, i)
	}

	return schedule, nil
}

// YearlyBreakup returns cumulative principal and interest paid, and the
// balance, at the end of every twelfth period and at the final period.
func YearlyBreakup(schedule *domain.Schedule) []domain.YearlyPoint {
	points := make([]domain.YearlyPoint, 0, len(schedule.Entries)/monthsPerYear+1)
	principalPaid, interestPaid := decimal.Zero, decimal.Zero

	for i, e := range schedule.Entries {
		principalPaid = principalPaid.Add(e.PrincipalPortion)
		interestPaid = interestPaid.Add(e.InterestPortion)

		if e.PeriodIndex%monthsPerYear == 0 || i == len(schedule.Entries)-1 {
			points = append(points, domain.YearlyPoint{
				Year:          (e.PeriodIndex + monthsPerYear - 1) / monthsPerYear,
				PrincipalPaid: principalPaid,
				InterestPaid:  interestPaid,
				Balance:       e.ClosingBalance,
			})
		}
	}

	return points
}
