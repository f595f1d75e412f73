package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/carloan-engine/internal/cache"
	"github.com/segyhp/carloan-engine/internal/config"
	"github.com/segyhp/carloan-engine/internal/domain"
	"github.com/segyhp/carloan-engine/internal/handler"
	"github.com/segyhp/carloan-engine/internal/repository"
	"github.com/segyhp/carloan-engine/internal/service"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
}

// setupServer wires the real service over in-memory sqlite and miniredis.
func setupServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := repository.Open(repository.DriverSQLite, ":memory:?_foreign_keys=on", repository.PoolOptions{})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	cfg := &config.Config{
		Business: config.BusinessConfig{ReminderDays: 5, DefaultPaymentMethod: domain.PaymentMethodManual},
	}
	loanService := service.NewLoanService(
		repository.NewVehicleRepository(db),
		repository.NewLoanRepository(db),
		repository.NewPaymentRepository(db),
		cache.NewLoanCache(redisClient, time.Hour, 10*time.Second),
		cfg,
		zap.NewNop(),
	)

	router := handler.NewRouter(
		handler.NewLoanHandler(loanService),
		handler.NewVehicleHandler(loanService),
		handler.NewHealthHandler(db, redisClient, time.Second),
		zap.NewNop(),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, method, path string, body interface{}, out interface{}) (int, string) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, server.URL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	if out != nil && envelope.Success {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return resp.StatusCode, envelope.Code
}

func TestLoanLifecycle(t *testing.T) {
	server := setupServer(t)

	status, _ := call(t, server, http.MethodPost, "/api/v1/vehicles", map[string]string{
		"registration_no": "KA01AB1234",
		"model":           "Hyundai Creta",
		"owner_email":     "owner@example.com",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var created domain.CreateLoanResponse
	status, _ = call(t, server, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"loan_id":             "LOAN-001",
		"registration_no":     "KA01AB1234",
		"principal":           "120000",
		"annual_rate_percent": "0",
		"tenure_months":       12,
		"start_date":          "2024-01-15",
		"bank_name":           "HDFC Bank",
	}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, created.Loan.InstallmentAmount.Equal(decimal.NewFromInt(10000)))
	assert.True(t, created.Loan.FinalInstallmentAdjustment.IsZero())
	assert.Len(t, created.Schedule, 12)

	// A vehicle owns at most one loan.
	status, code := call(t, server, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"loan_id":             "LOAN-002",
		"registration_no":     "KA01AB1234",
		"principal":           "50000",
		"annual_rate_percent": "9",
		"tenure_months":       12,
		"start_date":          "2024-01-15",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "LOAN_ALREADY_EXISTS", code)

	var schedule domain.ScheduleResponse
	status, _ = call(t, server, http.MethodGet, "/api/v1/loans/LOAN-001/schedule", nil, &schedule)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, schedule.Schedule, 12)
	assert.True(t, schedule.Schedule[11].DueDate.Equal(time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, schedule.Schedule[11].ClosingBalance.IsZero())

	for month := 1; month <= 3; month++ {
		status, _ = call(t, server, http.MethodPost, "/api/v1/loans/LOAN-001/payments", map[string]interface{}{
			"amount":       "10000",
			"payment_date": fmt.Sprintf("2024-%02d-15", month),
		}, nil)
		require.Equal(t, http.StatusCreated, status)
	}

	var progress domain.LoanProgress
	status, _ = call(t, server, http.MethodGet, "/api/v1/loans/LOAN-001/progress?as_of=2024-04-20", nil, &progress)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, progress.EmisPaid)
	assert.Equal(t, 12, progress.TotalEmis)
	assert.True(t, progress.TotalPaid.Equal(decimal.NewFromInt(30000)))
	assert.True(t, progress.RemainingAmount.Equal(decimal.NewFromInt(90000)))
	assert.True(t, progress.PercentPaid.Equal(decimal.NewFromInt(25)))
	assert.True(t, progress.NextDueDate.Equal(time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, progress.IsOverdue)
	assert.Equal(t, domain.LoanStateActive, progress.State)

	var history domain.PaymentHistoryResponse
	status, _ = call(t, server, http.MethodGet, "/api/v1/loans/LOAN-001/payments", nil, &history)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, history.Payments, 3)
	assert.True(t, history.Payments[0].PaymentDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.PaymentMethodManual, history.Payments[0].PaymentMethod)

	var last domain.RecordPaymentResponse
	for month := 4; month <= 12; month++ {
		status, _ = call(t, server, http.MethodPost, "/api/v1/loans/LOAN-001/payments", map[string]interface{}{
			"amount":         "10000",
			"payment_date":   fmt.Sprintf("2024-%02d-15", month),
			"payment_method": domain.PaymentMethodAutoDebit,
		}, &last)
		require.Equal(t, http.StatusCreated, status)
	}
	assert.Equal(t, domain.LoanStateClosed, last.Progress.State)
	assert.True(t, last.Progress.RemainingAmount.IsZero())

	status, code = call(t, server, http.MethodPost, "/api/v1/loans/LOAN-001/payments", map[string]interface{}{
		"amount":       "10000",
		"payment_date": "2025-01-15",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "LOAN_CLOSED", code)

	var loan domain.Loan
	status, _ = call(t, server, http.MethodGet, "/api/v1/loans/LOAN-001", nil, &loan)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.LoanStatusClosed, loan.Status)

	status, _ = call(t, server, http.MethodDelete, "/api/v1/vehicles/KA01AB1234", nil, nil)
	require.Equal(t, http.StatusOK, status)

	status, code = call(t, server, http.MethodGet, "/api/v1/loans/LOAN-001", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "LOAN_NOT_FOUND", code)
}

func TestReviseTermsLifecycle(t *testing.T) {
	server := setupServer(t)

	status, _ := call(t, server, http.MethodPost, "/api/v1/vehicles", map[string]string{
		"registration_no": "MH02CD5678",
		"model":           "Maruti Swift",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, _ = call(t, server, http.MethodPost, "/api/v1/loans", map[string]interface{}{
		"loan_id":             "LOAN-009",
		"registration_no":     "MH02CD5678",
		"principal":           "500000",
		"annual_rate_percent": "9",
		"tenure_months":       60,
		"start_date":          "2024-01-15",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	status, _ = call(t, server, http.MethodPost, "/api/v1/loans/LOAN-009/payments", map[string]interface{}{
		"amount":       "10379.18",
		"payment_date": "2024-01-15",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	var revised domain.CreateLoanResponse
	status, _ = call(t, server, http.MethodPut, "/api/v1/loans/LOAN-009/terms", map[string]interface{}{
		"principal":           "240000",
		"annual_rate_percent": "10.5",
		"tenure_months":       24,
		"start_date":          "2024-02-15",
	}, &revised)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, revised.Loan.Version)
	assert.True(t, revised.Loan.InstallmentAmount.Equal(decimal.RequireFromString("11130.25")))
	assert.Len(t, revised.Schedule, 24)

	var schedule domain.ScheduleResponse
	status, _ = call(t, server, http.MethodGet, "/api/v1/loans/LOAN-009/schedule", nil, &schedule)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, schedule.Version)
	assert.Len(t, schedule.Schedule, 24)

	// Payments stay with the loan across versions.
	var progress domain.LoanProgress
	status, _ = call(t, server, http.MethodGet, "/api/v1/loans/LOAN-009/progress?as_of=2024-02-01", nil, &progress)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, progress.Version)
	assert.True(t, progress.TotalPaid.Equal(decimal.RequireFromString("10379.18")))
}
