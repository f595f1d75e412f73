package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/segyhp/carloan-engine/internal/domain"
	customError "github.com/segyhp/carloan-engine/pkg/errors"
	"github.com/segyhp/carloan-engine/pkg/response"
	"github.com/segyhp/carloan-engine/pkg/utils"
)

type LoanService interface {
	CalculateEMI(ctx context.Context, terms domain.LoanTerms) (*domain.CalculateEMIResponse, error)
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []domain.ScheduleEntry, error)
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	ReviseTerms(ctx context.Context, loanID string, request *domain.ReviseTermsRequest) (*domain.Loan, []domain.ScheduleEntry, error)
	GetSchedule(ctx context.Context, loanID string) (*domain.ScheduleResponse, error)
	RecordPayment(ctx context.Context, loanID string, request *domain.RecordPaymentRequest, asOf time.Time) (*domain.RecordPaymentResponse, error)
	PaymentHistory(ctx context.Context, loanID string) (*domain.PaymentHistoryResponse, error)
	GetProgress(ctx context.Context, loanID string, asOf time.Time) (*domain.LoanProgress, error)
}

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
	now       func() time.Time
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: newValidator(),
		now:       time.Now,
	}
}

// today is the server's calendar date, used when a request carries no date.
func (h *LoanHandler) today() time.Time {
	return utils.DateOf(h.now())
}

// CalculateEMI handles POST /api/v1/emi/calculate
func (h *LoanHandler) CalculateEMI(w http.ResponseWriter, r *http.Request) {
	var request domain.CalculateEMIRequest
	if err := decode(r, h.validator, &request); err != nil {
		writeError(w, err)
		return
	}

	startDate := h.today()
	if request.StartDate != "" {
		parsed, err := utils.ParseDate(request.StartDate)
		if err != nil {
			writeError(w, customError.WrapInvalidRequest(err))
			return
		}
		startDate = parsed
	}

	result, err := h.service.CalculateEMI(r.Context(), domain.LoanTerms{
		Principal:         request.Principal,
		AnnualRatePercent: request.AnnualRatePercent,
		TenureMonths:      request.TenureMonths,
		StartDate:         startDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, result)
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := decode(r, h.validator, &request); err != nil {
		writeError(w, err)
		return
	}

	loan, schedule, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: loan, Schedule: schedule})
}

// GetLoan handles GET /api/v1/loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := h.service.GetLoan(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

// ReviseTerms handles PUT /api/v1/loans/{loanId}/terms
func (h *LoanHandler) ReviseTerms(w http.ResponseWriter, r *http.Request) {
	var request domain.ReviseTermsRequest
	if err := decode(r, h.validator, &request); err != nil {
		writeError(w, err)
		return
	}

	loan, schedule, err := h.service.ReviseTerms(r.Context(), mux.Vars(r)["loanId"], &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, domain.CreateLoanResponse{Loan: loan, Schedule: schedule})
}

// GetSchedule handles GET /api/v1/loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.service.GetSchedule(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, schedule)
}

// RecordPayment handles POST /api/v1/loans/{loanId}/payments
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var request domain.RecordPaymentRequest
	if err := decode(r, h.validator, &request); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), mux.Vars(r)["loanId"], &request, h.today())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, result)
}

// PaymentHistory handles GET /api/v1/loans/{loanId}/payments
func (h *LoanHandler) PaymentHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.PaymentHistory(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, history)
}

// GetProgress handles GET /api/v1/loans/{loanId}/progress?as_of=YYYY-MM-DD
func (h *LoanHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	asOf := h.today()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			writeError(w, customError.WrapInvalidRequest(err))
			return
		}
		asOf = parsed
	}

	progress, err := h.service.GetProgress(r.Context(), mux.Vars(r)["loanId"], asOf)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, progress)
}
