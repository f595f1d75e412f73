package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/segyhp/carloan-engine/internal/amortization"
	"github.com/segyhp/carloan-engine/internal/cache"
	"github.com/segyhp/carloan-engine/internal/config"
	"github.com/segyhp/carloan-engine/internal/domain"
	"github.com/segyhp/carloan-engine/internal/progress"
	"github.com/segyhp/carloan-engine/internal/repository"
	customError "github.com/segyhp/carloan-engine/pkg/errors"
	"github.com/segyhp/carloan-engine/pkg/utils"
)

const (
	defaultReminderDays  = 5
	defaultPaymentMethod = domain.PaymentMethodManual
)

// ScheduleCache is the subset of the Redis cache the service relies on.
type ScheduleCache interface {
	GetSchedule(ctx context.Context, loanID string, version int) ([]domain.ScheduleEntry, bool, error)
	SetSchedule(ctx context.Context, loanID string, version int, entries []domain.ScheduleEntry) error
	DeleteSchedules(ctx context.Context, loanID string, latest int) error
	Lock(ctx context.Context, loanID string) (func(context.Context) error, error)
}

type LoanService struct {
	vehicleRepo repository.VehicleRepository
	loanRepo    repository.LoanRepository
	paymentRepo repository.PaymentRepository
	cache       ScheduleCache
	config      *config.Config
	logger      *zap.Logger
}

func NewLoanService(
	vehicleRepo repository.VehicleRepository,
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	cache ScheduleCache,
	config *config.Config,
	logger *zap.Logger,
) *LoanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoanService{
		vehicleRepo: vehicleRepo,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		cache:       cache,
		config:      config,
		logger:      logger,
	}
}

// RegisterVehicle adds a vehicle that can later own a loan
func (s *LoanService) RegisterVehicle(ctx context.Context, request *domain.CreateVehicleRequest) (*domain.Vehicle, error) {
	_, err := s.vehicleRepo.GetByRegistrationNo(ctx, request.RegistrationNo)
	if err == nil {
		return nil, customError.WrapVehicleAlreadyExists(request.RegistrationNo)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapDatabaseError(err)
	}

	vehicle := &domain.Vehicle{
		ID:             uuid.New(),
		RegistrationNo: request.RegistrationNo,
		Model:          request.Model,
		OwnerEmail:     request.OwnerEmail,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.logger.Info("vehicle registered", zap.String("registration_no", vehicle.RegistrationNo))
	return vehicle, nil
}

func (s *LoanService) GetVehicle(ctx context.Context, registrationNo string) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByRegistrationNo(ctx, registrationNo)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapVehicleNotFound(registrationNo)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return vehicle, nil
}

// DeleteVehicle removes a vehicle with its loan, schedules and payment log
func (s *LoanService) DeleteVehicle(ctx context.Context, registrationNo string) error {
	loan, err := s.loanRepo.GetByRegistrationNo(ctx, registrationNo)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return customError.WrapDatabaseError(err)
	}

	err = s.vehicleRepo.Delete(ctx, registrationNo)
	if errors.Is(err, sql.ErrNoRows) {
		return customError.WrapVehicleNotFound(registrationNo)
	}
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if loan != nil && s.cache != nil {
		if err := s.cache.DeleteSchedules(ctx, loan.LoanID, loan.Version); err != nil {
			s.logger.Warn("failed to evict cached schedules",
				zap.String("loan_id", loan.LoanID), zap.Error(err))
		}
	}

	s.logger.Info("vehicle deleted", zap.String("registration_no", registrationNo))
	return nil
}

// CalculateEMI amortizes terms without storing anything
func (s *LoanService) CalculateEMI(ctx context.Context, terms domain.LoanTerms) (*domain.CalculateEMIResponse, error) {
	schedule, err := amortization.Amortize(terms)
	if err != nil {
		return nil, err
	}

	return &domain.CalculateEMIResponse{
		InstallmentAmount:          schedule.InstallmentAmount,
		TotalInterest:              schedule.TotalInterest(),
		TotalPayable:               schedule.TotalPayable(),
		FinalInstallmentAdjustment: schedule.FinalInstallmentAdjustment,
		Schedule:                   schedule.Entries,
		YearlyBreakup:              amortization.YearlyBreakup(schedule),
	}, nil
}

// CreateLoan originates a loan for a registered vehicle and stores its schedule
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []domain.ScheduleEntry, error) {
	startDate, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return nil, nil, customError.WrapInvalidRequest(err)
	}

	if _, err := s.GetVehicle(ctx, request.RegistrationNo); err != nil {
		return nil, nil, err
	}

	// Check if loan already exists
	existing, err := s.loanRepo.GetByLoanID(ctx, request.LoanID)
	if err == nil && existing != nil {
		return nil, nil, customError.WrapLoanAlreadyExists(request.LoanID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	// A vehicle owns at most one loan
	owned, err := s.loanRepo.GetByRegistrationNo(ctx, request.RegistrationNo)
	if err == nil && owned != nil {
		return nil, nil, customError.WrapLoanAlreadyExists(owned.LoanID)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	terms := domain.LoanTerms{
		Principal:         request.Principal,
		AnnualRatePercent: request.AnnualRatePercent,
		TenureMonths:      request.TenureMonths,
		StartDate:         startDate,
	}

	now := time.Now().UTC()
	loan := &domain.Loan{
		ID:                uuid.New(),
		LoanID:            request.LoanID,
		RegistrationNo:    request.RegistrationNo,
		Version:           1,
		LoanTerms:         terms,
		BankName:          request.BankName,
		LoanAccountNumber: request.LoanAccountNumber,
		Status:            domain.LoanStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	entries, err := s.storeVersion(ctx, loan)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("loan created",
		zap.String("loan_id", loan.LoanID),
		zap.String("registration_no", loan.RegistrationNo),
		zap.String("installment", loan.InstallmentAmount.StringFixed(amortization.CurrencyScale)),
		zap.Int("tenure_months", loan.TenureMonths),
	)
	return loan, entries, nil
}

// storeVersion amortizes the loan's terms, fills in the derived fields and
// persists the version with its schedule.
func (s *LoanService) storeVersion(ctx context.Context, loan *domain.Loan) ([]domain.ScheduleEntry, error) {
	schedule, err := amortization.Amortize(loan.LoanTerms)
	if err != nil {
		return nil, err
	}

	loan.InstallmentAmount = schedule.InstallmentAmount
	loan.FinalInstallmentAdjustment = schedule.FinalInstallmentAdjustment

	entries := schedule.Entries
	for i := range entries {
		entries[i].ID = uuid.New()
		entries[i].LoanID = loan.LoanID
		entries[i].Version = loan.Version
		entries[i].CreatedAt = loan.CreatedAt
	}

	if err := s.loanRepo.Create(ctx, loan, entries); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.cacheSchedule(ctx, loan, entries)
	return entries, nil
}

// GetLoan returns the latest version of a loan
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByLoanID(ctx, loanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapLoanNotFound(loanID)
	}
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// ReviseTerms writes a new loan version with a regenerated schedule. Payments
// already made stay on the loan and count toward the new version.
func (s *LoanService) ReviseTerms(ctx context.Context, loanID string, request *domain.ReviseTermsRequest) (*domain.Loan, []domain.ScheduleEntry, error) {
	startDate, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return nil, nil, customError.WrapInvalidRequest(err)
	}

	release, err := s.lock(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	current, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	if progress.State(current, payments) == domain.LoanStateClosed {
		return nil, nil, customError.WrapLoanClosed(loanID)
	}

	now := time.Now().UTC()
	revised := &domain.Loan{
		ID:             uuid.New(),
		LoanID:         current.LoanID,
		RegistrationNo: current.RegistrationNo,
		Version:        current.Version + 1,
		LoanTerms: domain.LoanTerms{
			Principal:         request.Principal,
			AnnualRatePercent: request.AnnualRatePercent,
			TenureMonths:      request.TenureMonths,
			StartDate:         startDate,
		},
		BankName:          current.BankName,
		LoanAccountNumber: current.LoanAccountNumber,
		Status:            domain.LoanStatusActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	entries, err := s.storeVersion(ctx, revised)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("loan terms revised",
		zap.String("loan_id", loanID),
		zap.Int("version", revised.Version),
		zap.String("installment", revised.InstallmentAmount.StringFixed(amortization.CurrencyScale)),
	)
	return revised, entries, nil
}

// GetSchedule returns the schedule of the latest loan version, read through the cache
func (s *LoanService) GetSchedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	response := &domain.ScheduleResponse{
		LoanID:                     loan.LoanID,
		Version:                    loan.Version,
		InstallmentAmount:          loan.InstallmentAmount,
		FinalInstallmentAdjustment: loan.FinalInstallmentAdjustment,
	}

	if s.cache != nil {
		entries, hit, err := s.cache.GetSchedule(ctx, loan.LoanID, loan.Version)
		if err != nil {
			s.logger.Warn("schedule cache read failed", zap.String("loan_id", loanID), zap.Error(err))
		}
		if hit {
			response.Schedule = entries
			return response, nil
		}
	}

	entries, err := s.loanRepo.GetScheduleByLoanID(ctx, loan.LoanID, loan.Version)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	s.cacheSchedule(ctx, loan, entries)
	response.Schedule = entries
	return response, nil
}

func (s *LoanService) cacheSchedule(ctx context.Context, loan *domain.Loan, entries []domain.ScheduleEntry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetSchedule(ctx, loan.LoanID, loan.Version, entries); err != nil {
		s.logger.Warn("schedule cache write failed",
			zap.String("loan_id", loan.LoanID), zap.Int("version", loan.Version), zap.Error(err))
	}
}

// RecordPayment appends an EMI payment under the per-loan lock and closes the
// loan once the tracker reports it fully repaid.
func (s *LoanService) RecordPayment(ctx context.Context, loanID string, request *domain.RecordPaymentRequest, asOf time.Time) (*domain.RecordPaymentResponse, error) {
	paymentDate, err := utils.ParseDate(request.PaymentDate)
	if err != nil {
		return nil, customError.WrapInvalidPayment(err.Error())
	}

	method := request.PaymentMethod
	if method == "" {
		method = s.defaultPaymentMethod()
	}

	release, err := s.lock(ctx, loanID)
	if err != nil {
		return nil, err
	}
	defer release()

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	updated, err := progress.RecordPayment(loan, payments, domain.PaymentRecord{
		ID:            uuid.New(),
		LoanID:        loanID,
		Amount:        request.Amount,
		PaymentDate:   paymentDate,
		PaymentMethod: method,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	payment := updated[len(updated)-1]
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	current := progress.ComputeProgress(loan, updated, asOf)
	if current.State == domain.LoanStateClosed && loan.Status != domain.LoanStatusClosed {
		if err := s.loanRepo.UpdateStatus(ctx, loan.LoanID, loan.Version, domain.LoanStatusClosed); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
		s.logger.Info("loan closed", zap.String("loan_id", loanID), zap.Int("emis_paid", current.EmisPaid))
	}

	s.logger.Info("payment recorded",
		zap.String("loan_id", loanID),
		zap.String("amount", payment.Amount.String()),
		zap.String("payment_method", payment.PaymentMethod),
	)

	return &domain.RecordPaymentResponse{
		Payment:  payment,
		Progress: &current,
	}, nil
}

// PaymentHistory lists a loan's payments, newest first
func (s *LoanService) PaymentHistory(ctx context.Context, loanID string) (*domain.PaymentHistoryResponse, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	history := make([]*domain.PaymentRecord, 0, len(payments))
	for i := len(payments) - 1; i >= 0; i-- {
		history = append(history, payments[i])
	}

	return &domain.PaymentHistoryResponse{
		LoanID:   loanID,
		Payments: history,
	}, nil
}

func (s *LoanService) GetProgress(ctx context.Context, loanID string, asOf time.Time) (*domain.LoanProgress, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	current := progress.ComputeProgress(loan, payments, asOf)
	return &current, nil
}

// DueReminders lists active loans whose next EMI falls due within the
// reminder window after asOf, overdue ones included.
func (s *LoanService) DueReminders(ctx context.Context, asOf time.Time) ([]domain.Reminder, error) {
	loans, err := s.loanRepo.ListActive(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	windowEnd := utils.DateOf(asOf).AddDate(0, 0, s.reminderDays())
	reminders := make([]domain.Reminder, 0)

	for _, loan := range loans {
		payments, err := s.paymentRepo.GetByLoanID(ctx, loan.LoanID)
		if err != nil {
			return nil, customError.WrapDatabaseError(err)
		}

		current := progress.ComputeProgress(loan, payments, asOf)
		if current.State != domain.LoanStateActive || current.NextDueDate.After(windowEnd) {
			continue
		}

		amount := loan.InstallmentAmount
		if current.EmisPaid == loan.TenureMonths-1 {
			amount = amount.Add(loan.FinalInstallmentAdjustment)
		}

		reminders = append(reminders, domain.Reminder{
			LoanID:         loan.LoanID,
			RegistrationNo: loan.RegistrationNo,
			DueDate:        current.NextDueDate,
			Amount:         amount,
			Overdue:        current.IsOverdue,
			Message:        reminderMessage(loan.RegistrationNo, amount, current.NextDueDate, current.IsOverdue),
		})
	}

	return reminders, nil
}

func reminderMessage(registrationNo string, amount decimal.Decimal, due time.Time, overdue bool) string {
	if overdue {
		return fmt.Sprintf("EMI of %s for %s was due on %s and is overdue",
			amount.StringFixed(amortization.CurrencyScale), registrationNo, utils.FormatDate(due))
	}
	return fmt.Sprintf("EMI of %s for %s is due on %s",
		amount.StringFixed(amortization.CurrencyScale), registrationNo, utils.FormatDate(due))
}

// SettleLoans persists the closed status of every active loan the tracker
// reports as CLOSED. It keeps going past individual failures and returns how
// many loans were closed.
func (s *LoanService) SettleLoans(ctx context.Context, asOf time.Time) (int, error) {
	loans, err := s.loanRepo.ListActive(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	closed := 0
	var errs []error
	for _, loan := range loans {
		payments, err := s.paymentRepo.GetByLoanID(ctx, loan.LoanID)
		if err != nil {
			errs = append(errs, fmt.Errorf("loan %s: %w", loan.LoanID, err))
			continue
		}

		if progress.ComputeProgress(loan, payments, asOf).State != domain.LoanStateClosed {
			continue
		}

		if err := s.loanRepo.UpdateStatus(ctx, loan.LoanID, loan.Version, domain.LoanStatusClosed); err != nil {
			errs = append(errs, fmt.Errorf("loan %s: %w", loan.LoanID, err))
			continue
		}

		closed++
		s.logger.Info("loan settled", zap.String("loan_id", loan.LoanID))
	}

	if len(errs) > 0 {
		return closed, customError.WrapDatabaseError(errors.Join(errs...))
	}
	return closed, nil
}

// lock takes the per-loan lock. Without a cache there is nothing to lock.
func (s *LoanService) lock(ctx context.Context, loanID string) (func(), error) {
	if s.cache == nil {
		return func() {}, nil
	}

	release, err := s.cache.Lock(ctx, loanID)
	if errors.Is(err, cache.ErrLockHeld) {
		return nil, customError.WrapLoanBusy(loanID)
	}
	if err != nil {
		return nil, customError.WrapCacheError(err)
	}

	return func() {
		// the request context may already be cancelled
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("failed to release loan lock", zap.String("loan_id", loanID), zap.Error(err))
		}
	}, nil
}

func (s *LoanService) reminderDays() int {
	if s.config == nil {
		return defaultReminderDays
	}
	return s.config.Business.ReminderDays
}

func (s *LoanService) defaultPaymentMethod() string {
	if s.config == nil || s.config.Business.DefaultPaymentMethod == "" {
		return defaultPaymentMethod
	}
	return s.config.Business.DefaultPaymentMethod
}
