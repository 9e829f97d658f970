package budget

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ExhaustedError is returned when an organization has spent its whole query
// allowance for the current period. Surfaced to clients as a rate limit.
type ExhaustedError struct {
	ResetAt time.Time
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("query budget exhausted, resets at %s", e.ResetAt.UTC().Format(time.RFC3339))
}

// Store provides atomic access to an organization's budget fields. UpdateBudget
// must run fn under a per-organization critical section and persist the values
// fn returns; an error from fn aborts the update and is returned unchanged.
type Store interface {
	UpdateBudget(orgID string, fn func(remaining int, resetAt time.Time) (int, time.Time, error)) error
	GetBudget(orgID string) (int, time.Time, error)
}

// Status is a read-only snapshot of an organization's allowance.
type Status struct {
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

type Tracker struct {
	store         Store
	defaultBudget int
	now           func() time.Time
	logger        *zap.Logger
}

// NewTracker builds a tracker. now is the clock; pass time.Now in production.
func NewTracker(store Store, defaultBudget int, now func() time.Time, logger *zap.Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		store:         store,
		defaultBudget: defaultBudget,
		now:           now,
		logger:        logger,
	}
}

// CheckAndDecrement consumes one query unit for the organization. The reset
// check runs before the allowance is evaluated, so the first call after the
// boundary sees a full budget.
func (t *Tracker) CheckAndDecrement(orgID string) (Status, error) {
	var status Status

	err := t.store.UpdateBudget(orgID, func(remaining int, resetAt time.Time) (int, time.Time, error) {
		now := t.now()

		if !now.Before(resetAt) {
			remaining = t.defaultBudget
			resetAt = nextReset(now)
			t.logger.Info("query budget reset",
				zap.String("org_id", orgID),
				zap.Time("next_reset", resetAt),
			)
		}

		if remaining <= 0 {
			return remaining, resetAt, &ExhaustedError{ResetAt: resetAt}
		}

		remaining--
		status = Status{Remaining: remaining, ResetAt: resetAt}
		return remaining, resetAt, nil
	})

	return status, err
}

// Peek reports the current allowance without consuming anything. A pending
// reset is reflected in the snapshot but not persisted.
func (t *Tracker) Peek(orgID string) (Status, error) {
	remaining, resetAt, err := t.store.GetBudget(orgID)
	if err != nil {
		return Status{}, err
	}

	now := t.now()
	if !now.Before(resetAt) {
		return Status{Remaining: t.defaultBudget, ResetAt: nextReset(now)}, nil
	}
	return Status{Remaining: remaining, ResetAt: resetAt}, nil
}

// nextReset returns the first UTC midnight strictly after now.
func nextReset(now time.Time) time.Time {
	return now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
}
