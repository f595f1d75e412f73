package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/carloan-engine/internal/domain"
)

// MockLoanService covers both the loan and the vehicle operations of the service.
type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) RegisterVehicle(ctx context.Context, request *domain.CreateVehicleRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockLoanService) GetVehicle(ctx context.Context, registrationNo string) (*domain.Vehicle, error) {
	args := m.Called(ctx, registrationNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockLoanService) DeleteVehicle(ctx context.Context, registrationNo string) error {
	args := m.Called(ctx, registrationNo)
	return args.Error(0)
}

func (m *MockLoanService) CalculateEMI(ctx context.Context, terms domain.LoanTerms) (*domain.CalculateEMIResponse, error) {
	args := m.Called(ctx, terms)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalculateEMIResponse), args.Error(1)
}

func (m *MockLoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []domain.ScheduleEntry, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Loan), args.Get(1).([]domain.ScheduleEntry), args.Error(2)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanService) ReviseTerms(ctx context.Context, loanID string, request *domain.ReviseTermsRequest) (*domain.Loan, []domain.ScheduleEntry, error) {
	args := m.Called(ctx, loanID, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.Loan), args.Get(1).([]domain.ScheduleEntry), args.Error(2)
}

func (m *MockLoanService) GetSchedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleResponse), args.Error(1)
}

func (m *MockLoanService) RecordPayment(ctx context.Context, loanID string, request *domain.RecordPaymentRequest, asOf time.Time) (*domain.RecordPaymentResponse, error) {
	args := m.Called(ctx, loanID, request, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecordPaymentResponse), args.Error(1)
}

func (m *MockLoanService) PaymentHistory(ctx context.Context, loanID string) (*domain.PaymentHistoryResponse, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentHistoryResponse), args.Error(1)
}

func (m *MockLoanService) GetProgress(ctx context.Context, loanID string, asOf time.Time) (*domain.LoanProgress, error) {
	args := m.Called(ctx, loanID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanProgress), args.Error(1)
}

// SettleLoans and DueReminders back the scheduler jobs.
func (m *MockLoanService) SettleLoans(ctx context.Context, asOf time.Time) (int, error) {
	args := m.Called(ctx, asOf)
	return args.Int(0), args.Error(1)
}

func (m *MockLoanService) DueReminders(ctx context.Context, asOf time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reminder), args.Error(1)
}

// NewMockLoanService creates a new mock loan service instance
func NewMockLoanService() *MockLoanService {
	return &MockLoanService{}
}
