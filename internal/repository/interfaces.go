package repository

import (
	"context"

	"github.com/segyhp/carloan-engine/internal/domain"
)

// VehicleRepository defines the interface for vehicle data operations
type VehicleRepository interface {
	// Create registers a new vehicle
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByRegistrationNo retrieves a vehicle by its registration number
	GetByRegistrationNo(ctx context.Context, registrationNo string) (*domain.Vehicle, error)

	// Delete removes a vehicle together with its loan versions, schedules and payments
	Delete(ctx context.Context, registrationNo string) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create stores a loan version and its schedule atomically
	Create(ctx context.Context, loan *domain.Loan, schedule []domain.ScheduleEntry) error

	// GetByLoanID retrieves the latest version of a loan
	GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error)

	// GetByRegistrationNo retrieves the latest loan version owned by a vehicle
	GetByRegistrationNo(ctx context.Context, registrationNo string) (*domain.Loan, error)

	// UpdateStatus sets the status of one loan version
	UpdateStatus(ctx context.Context, loanID string, version int, status string) error

	// GetScheduleByLoanID retrieves the schedule of a loan version ordered by period
	GetScheduleByLoanID(ctx context.Context, loanID string, version int) ([]domain.ScheduleEntry, error)

	// ListActive returns the latest version of every loan whose status is active
	ListActive(ctx context.Context) ([]*domain.Loan, error)
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	// Create appends a payment record to the log
	Create(ctx context.Context, payment *domain.PaymentRecord) error

	// GetByLoanID retrieves all payments for a loan in the order they were made
	GetByLoanID(ctx context.Context, loanID string) ([]*domain.PaymentRecord, error)
}
