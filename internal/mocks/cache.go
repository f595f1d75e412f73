package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/segyhp/carloan-engine/internal/domain"
)

type MockScheduleCache struct {
	mock.Mock
}

func (m *MockScheduleCache) GetSchedule(ctx context.Context, loanID string, version int) ([]domain.ScheduleEntry, bool, error) {
	args := m.Called(ctx, loanID, version)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.ScheduleEntry), args.Bool(1), args.Error(2)
}

func (m *MockScheduleCache) SetSchedule(ctx context.Context, loanID string, version int, entries []domain.ScheduleEntry) error {
	args := m.Called(ctx, loanID, version, entries)
	return args.Error(0)
}

func (m *MockScheduleCache) DeleteSchedules(ctx context.Context, loanID string, latest int) error {
	args := m.Called(ctx, loanID, latest)
	return args.Error(0)
}

// Lock returns a release func that records a Release(loanID) call on the mock.
func (m *MockScheduleCache) Lock(ctx context.Context, loanID string) (func(context.Context) error, error) {
	args := m.Called(ctx, loanID)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return m.MethodCalled("Release", loanID).Error(0)
	}, nil
}
