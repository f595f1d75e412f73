package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/segyhp/carloan-engine/internal/config"
	"github.com/segyhp/carloan-engine/internal/domain"
	"github.com/segyhp/carloan-engine/internal/mocks"
)

func testConfig() *config.Config {
	return &config.Config{
		Scheduler: config.SchedulerConfig{
			SettlementSpec: "0 0 0 * * *",
			ReminderSpec:   "0 0 9 * * *",
			Timezone:       "Asia/Kolkata",
		},
	}
}

func setupScheduler(t *testing.T) (*Scheduler, *mocks.MockLoanService, *observer.ObservedLogs) {
	t.Helper()

	core, logs := observer.New(zapcore.InfoLevel)
	svc := mocks.NewMockLoanService()
	s := New(context.Background(), svc, testConfig(), zap.New(core))
	// 20:00 UTC on Apr 19 is already Apr 20 in Kolkata.
	s.now = func() time.Time { return time.Date(2024, 4, 19, 20, 0, 0, 0, time.UTC) }
	return s, svc, logs
}

var expectedAsOf = time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)

func TestScheduler_Register(t *testing.T) {
	s, _, _ := setupScheduler(t)
	require.NoError(t, s.Register())
	assert.Len(t, s.cron.Entries(), 2)

	cfg := testConfig()
	cfg.Scheduler.ReminderSpec = "every day"
	bad := New(context.Background(), mocks.NewMockLoanService(), cfg, nil)
	assert.Error(t, bad.Register())
}

func TestScheduler_RunSettlement(t *testing.T) {
	s, svc, logs := setupScheduler(t)
	svc.On("SettleLoans", mock.Anything, expectedAsOf).Return(3, nil).Once()

	s.RunSettlement(context.Background())

	svc.AssertExpectations(t)
	finished := logs.FilterMessage("loan settlement finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(3), finished[0].ContextMap()["closed"])
}

func TestScheduler_RunSettlementLogsFailure(t *testing.T) {
	s, svc, logs := setupScheduler(t)
	svc.On("SettleLoans", mock.Anything, expectedAsOf).Return(1, errors.New("one loan failed")).Once()

	s.RunSettlement(context.Background())

	svc.AssertExpectations(t)
	assert.Equal(t, 1, logs.FilterMessage("loan settlement finished with errors").Len())
}

func TestScheduler_RunReminders(t *testing.T) {
	s, svc, logs := setupScheduler(t)
	reminders := []domain.Reminder{
		{
			LoanID:         "LOAN-001",
			RegistrationNo: "KA01AB1234",
			DueDate:        time.Date(2024, 4, 22, 0, 0, 0, 0, time.UTC),
			Amount:         decimal.RequireFromString("11130.25"),
			Message:        "EMI of 11130.25 for KA01AB1234 is due on 2024-04-22",
		},
		{
			LoanID:         "LOAN-002",
			RegistrationNo: "MH02CD5678",
			DueDate:        time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
			Amount:         decimal.RequireFromString("10379.18"),
			Overdue:        true,
			Message:        "EMI of 10379.18 for MH02CD5678 was due on 2024-04-15 and is overdue",
		},
	}
	svc.On("DueReminders", mock.Anything, expectedAsOf).Return(reminders, nil).Once()

	sent := s.RunReminders(context.Background())

	svc.AssertExpectations(t)
	assert.Equal(t, reminders, sent)

	overdue := logs.FilterMessage(reminders[1].Message).All()
	require.Len(t, overdue, 1)
	assert.Equal(t, "10379.18", overdue[0].ContextMap()["amount"])
	assert.Equal(t, true, overdue[0].ContextMap()["overdue"])
	assert.Equal(t, 1, logs.FilterMessage("EMI reminders sent").Len())
}

func TestScheduler_RunRemindersFailure(t *testing.T) {
	s, svc, logs := setupScheduler(t)
	svc.On("DueReminders", mock.Anything, expectedAsOf).Return(nil, errors.New("db down")).Once()

	assert.Nil(t, s.RunReminders(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("EMI reminders failed").Len())
}
