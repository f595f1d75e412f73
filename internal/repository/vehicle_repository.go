package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/segyhp/carloan-engine/internal/domain"
)

type vehicleRepository struct {
	db *sqlx.DB
}

func NewVehicleRepository(db *sqlx.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, registration_no, model, owner_email, created_at)
		VALUES (:id, :registration_no, :model, :owner_email, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, vehicle)
	return err
}

func (r *vehicleRepository) GetByRegistrationNo(ctx context.Context, registrationNo string) (*domain.Vehicle, error) {
	query := r.db.Rebind(`
		SELECT id, registration_no, model, owner_email, created_at
		FROM vehicles
		WHERE registration_no = ?
	`)

	var vehicle domain.Vehicle
	if err := r.db.GetContext(ctx, &vehicle, query, registrationNo); err != nil {
		return nil, err
	}

	return &vehicle, nil
}

// Delete returns sql.ErrNoRows when the vehicle does not exist. Loans and
// schedules go by foreign key cascade; payments are keyed by loan id only and
// are removed explicitly in the same transaction.
func (r *vehicleRepository) Delete(ctx context.Context, registrationNo string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deletePayments := tx.Rebind(`
		DELETE FROM payments
		WHERE loan_id IN (SELECT loan_id FROM loans WHERE registration_no = ?)
	`)
	if _, err = tx.ExecContext(ctx, deletePayments, registrationNo); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM vehicles WHERE registration_no = ?`), registrationNo)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}
