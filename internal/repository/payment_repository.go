package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/carloan-engine/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (id, loan_id, amount, payment_date, payment_method, created_at)
		VALUES (:id, :loan_id, :amount, :payment_date, :payment_method, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, payment)
	return err
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID string) ([]*domain.PaymentRecord, error) {
	query := r.db.Rebind(`
		SELECT id, loan_id, amount, payment_date, payment_method, created_at
		FROM payments
		WHERE loan_id = ?
		ORDER BY payment_date, created_at
	`)

	var payments []*domain.PaymentRecord
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}
