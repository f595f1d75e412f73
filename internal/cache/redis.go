// Package cache keeps amortization schedules in Redis and serializes payment
// submissions per loan.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/carloan-engine/internal/domain"
)

// ErrLockHeld is returned by Lock when another holder owns the loan lock.
var ErrLockHeld = errors.New("lock is held")

// releaseScript deletes the lock only if it still carries our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type LoanCache struct {
	client      *redis.Client
	scheduleTTL time.Duration
	lockTTL     time.Duration
}

func NewLoanCache(client *redis.Client, scheduleTTL, lockTTL time.Duration) *LoanCache {
	return &LoanCache{
		client:      client,
		scheduleTTL: scheduleTTL,
		lockTTL:     lockTTL,
	}
}

func scheduleKey(loanID string, version int) string {
	return fmt.Sprintf("loan:%s:v%d:schedule", loanID, version)
}

func lockKey(loanID string) string {
	return fmt.Sprintf("loan:%s:lock", loanID)
}

// GetSchedule returns the cached schedule of a loan version. A miss is not an error.
func (c *LoanCache) GetSchedule(ctx context.Context, loanID string, version int) ([]domain.ScheduleEntry, bool, error) {
	raw, err := c.client.Get(ctx, scheduleKey(loanID, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []domain.ScheduleEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("corrupt schedule cache entry: %w", err)
	}

	return entries, true, nil
}

// SetSchedule caches a schedule. Schedules of a version never change, so the
// TTL only bounds memory.
func (c *LoanCache) SetSchedule(ctx context.Context, loanID string, version int, entries []domain.ScheduleEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, scheduleKey(loanID, version), raw, c.scheduleTTL).Err()
}

// DeleteSchedules drops the cached schedules of versions 1..latest of a loan.
func (c *LoanCache) DeleteSchedules(ctx context.Context, loanID string, latest int) error {
	if latest < 1 {
		return nil
	}

	keys := make([]string, 0, latest)
	for version := 1; version <= latest; version++ {
		keys = append(keys, scheduleKey(loanID, version))
	}

	return c.client.Del(ctx, keys...).Err()
}

// Lock takes the per-loan lock. The returned func releases it; the lock also
// expires on its own after the configured TTL.
func (c *LoanCache) Lock(ctx context.Context, loanID string) (func(context.Context) error, error) {
	key := lockKey(loanID)
	token := uuid.NewString()

	ok, err := c.client.SetNX(ctx, key, token, c.lockTTL).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, c.client, []string{key}, token).Err()
	}, nil
}
