package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"neuropilot/internal/domain/entity"
)

func orgStore(org *entity.Organization, err error) *fakeStore {
	return &fakeStore{
		orgFn: func(context.Context, string) (*entity.Organization, error) {
			return org, err
		},
	}
}

func TestQuotaGuardEnterpriseUnlimited(t *testing.T) {
	st := orgStore(&entity.Organization{ID: "o1", Plan: entity.PlanEnterprise}, nil)
	counter := &fakeCounter{usedErr: errStoreDown} // must never be consulted
	q := NewQuotaGuard(st, counter, nil, zap.NewNop())

	assert.True(t, q.HasQuota(context.Background(), "o1"))
}

func TestQuotaGuardUnderLimit(t *testing.T) {
	st := orgStore(&entity.Organization{ID: "o1", Plan: entity.PlanFree, MonthlyAILimit: 100}, nil)
	counter := &fakeCounter{used: map[string]int{"o1:" + Period(time.Now()): 99}}
	q := NewQuotaGuard(st, counter, nil, zap.NewNop())

	assert.True(t, q.HasQuota(context.Background(), "o1"))
}

func TestQuotaGuardAtLimit(t *testing.T) {
	st := orgStore(&entity.Organization{ID: "o1", Plan: entity.PlanFree, MonthlyAILimit: 100}, nil)
	counter := &fakeCounter{used: map[string]int{"o1:" + Period(time.Now()): 100}}
	q := NewQuotaGuard(st, counter, nil, zap.NewNop())

	assert.False(t, q.HasQuota(context.Background(), "o1"))
}

func TestQuotaGuardPlanFallbackLimit(t *testing.T) {
	st := orgStore(&entity.Organization{ID: "o1", Plan: entity.PlanPro}, nil)
	counter := &fakeCounter{used: map[string]int{"o1:" + Period(time.Now()): 1999}}
	fallback := func(plan string) int {
		assert.Equal(t, "pro", plan)
		return 2000
	}
	q := NewQuotaGuard(st, counter, fallback, zap.NewNop())

	assert.True(t, q.HasQuota(context.Background(), "o1"))

	counter.used["o1:"+Period(time.Now())] = 2000
	assert.False(t, q.HasQuota(context.Background(), "o1"))
}

func TestQuotaGuardFailsOpenOnOrgLookupError(t *testing.T) {
	st := orgStore(nil, errStoreDown)
	q := NewQuotaGuard(st, &fakeCounter{}, nil, zap.NewNop())

	assert.True(t, q.HasQuota(context.Background(), "o1"))
}

func TestQuotaGuardFailsOpenOnCounterError(t *testing.T) {
	st := orgStore(&entity.Organization{ID: "o1", Plan: entity.PlanFree, MonthlyAILimit: 100}, nil)
	q := NewQuotaGuard(st, &fakeCounter{usedErr: errStoreDown}, nil, zap.NewNop())

	assert.True(t, q.HasQuota(context.Background(), "o1"))
}

func TestPeriodIsCalendarMonth(t *testing.T) {
	ts := time.Date(2026, time.March, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "2026-03", Period(ts))
}
