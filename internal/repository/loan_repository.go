package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/carloan-engine/internal/domain"
)

const loanColumns = `id, loan_id, registration_no, version, principal, annual_rate_percent, tenure_months,
	start_date, installment_amount, final_installment_adjustment, bank_name, loan_account_number,
	status, created_at, updated_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan, schedule []domain.ScheduleEntry) error {
	loanQuery := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES (:id, :loan_id, :registration_no, :version, :principal, :annual_rate_percent, :tenure_months,
			:start_date, :installment_amount, :final_installment_adjustment, :bank_name, :loan_account_number,
			:status, :created_at, :updated_at)
	`
	scheduleQuery := `
		INSERT INTO loan_schedule (id, loan_id, version, period_index, due_date, opening_balance,
			interest_portion, principal_portion, closing_balance, created_at)
		VALUES (:id, :loan_id, :version, :period_index, :due_date, :opening_balance,
			:interest_portion, :principal_portion, :closing_balance, :created_at)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.NamedExecContext(ctx, loanQuery, loan); err != nil {
		return err
	}

	for i := range schedule {
		entry := schedule[i]
		entry.LoanID = loan.LoanID
		entry.Version = loan.Version
		if _, err = tx.NamedExecContext(ctx, scheduleQuery, &entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans
		WHERE loan_id = ?
		ORDER BY version DESC
		LIMIT 1
	`)

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) GetByRegistrationNo(ctx context.Context, registrationNo string) (*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans
		WHERE registration_no = ?
		ORDER BY version DESC
		LIMIT 1
	`)

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, registrationNo); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) UpdateStatus(ctx context.Context, loanID string, version int, status string) error {
	query := r.db.Rebind(`
		UPDATE loans
		SET status = ?, updated_at = ?
		WHERE loan_id = ? AND version = ?
	`)

	_, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), loanID, version)
	return err
}

func (r *loanRepository) GetScheduleByLoanID(ctx context.Context, loanID string, version int) ([]domain.ScheduleEntry, error) {
	query := r.db.Rebind(`
		SELECT id, loan_id, version, period_index, due_date, opening_balance, interest_portion,
			principal_portion, closing_balance, created_at
		FROM loan_schedule
		WHERE loan_id = ? AND version = ?
		ORDER BY period_index
	`)

	var schedule []domain.ScheduleEntry
	if err := r.db.SelectContext(ctx, &schedule, query, loanID, version); err != nil {
		return nil, err
	}

	return schedule, nil
}

func (r *loanRepository) ListActive(ctx context.Context) ([]*domain.Loan, error) {
	query := r.db.Rebind(`
		SELECT ` + loanColumns + `
		FROM loans l
		WHERE l.status = ?
		  AND l.version = (SELECT MAX(v.version) FROM loans v WHERE v.loan_id = l.loan_id)
		ORDER BY l.loan_id
	`)

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, domain.LoanStatusActive); err != nil {
		return nil, err
	}

	return loans, nil
}
