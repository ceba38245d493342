package guard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"neuropilot/internal/domain/repository"
)

// QuotaGuard enforces the per-organization monthly ceiling on classifier
// calls. The counter is only ever incremented by the ledger after a call
// actually completed; rejected requests never consume quota.
type QuotaGuard struct {
	store    repository.Store
	counter  repository.QuotaCounter
	fallback func(plan string) int // plan name -> ceiling, for orgs without an explicit limit
	log      *zap.Logger
}

func NewQuotaGuard(store repository.Store, counter repository.QuotaCounter, fallback func(plan string) int, log *zap.Logger) *QuotaGuard {
	return &QuotaGuard{store: store, counter: counter, fallback: fallback, log: log}
}

// Period is the counter bucket for now, one per calendar month.
func Period(now time.Time) string { return now.UTC().Format("2006-01") }

// HasQuota reports whether the organization may make one more call this
// period. Store faults fail open, same stance as the rate limiter.
func (q *QuotaGuard) HasQuota(ctx context.Context, orgID string) bool {
	org, err := q.store.Organization(ctx, orgID)
	if err != nil {
		q.log.Warn("quota org lookup failed, failing open", zap.String("org", orgID), zap.Error(err))
		return true
	}
	if org.Plan.Unlimited() {
		return true
	}

	limit := org.MonthlyAILimit
	if limit <= 0 && q.fallback != nil {
		limit = q.fallback(string(org.Plan))
	}

	used, err := q.counter.Used(ctx, orgID, Period(time.Now()))
	if err != nil {
		q.log.Warn("quota counter read failed, failing open", zap.String("org", orgID), zap.Error(err))
		return true
	}
	return used < limit
}
