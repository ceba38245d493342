package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"neuropilot/internal/domain/entity"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	st := &fakeStore{
		countFn: func(context.Context, entity.Actor, string, time.Time) (int, error) {
			return 4, nil
		},
	}
	rl := NewRateLimiter(st, zap.NewNop())

	d := rl.Check(context.Background(), entity.Actor{UserID: "u1", OrgID: "o1"}, "psych_classification", 10, 60)
	assert.True(t, d.Allowed)
	assert.Equal(t, 6, d.Remaining)
}

func TestRateLimiterDeniesAtLimit(t *testing.T) {
	st := &fakeStore{
		countFn: func(context.Context, entity.Actor, string, time.Time) (int, error) {
			return 10, nil
		},
	}
	rl := NewRateLimiter(st, zap.NewNop())

	d := rl.Check(context.Background(), entity.Actor{UserID: "u1", OrgID: "o1"}, "psych_classification", 10, 60)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.WithinDuration(t, time.Now().Add(time.Minute), d.ResetAt, 2*time.Second)
}

func TestRateLimiterRemainingNeverNegative(t *testing.T) {
	st := &fakeStore{
		countFn: func(context.Context, entity.Actor, string, time.Time) (int, error) {
			return 25, nil
		},
	}
	rl := NewRateLimiter(st, zap.NewNop())

	d := rl.Check(context.Background(), entity.Actor{UserID: "u1", OrgID: "o1"}, "psych_classification", 10, 60)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestRateLimiterQueriesTrailingWindow(t *testing.T) {
	var gotSince time.Time
	st := &fakeStore{
		countFn: func(_ context.Context, _ entity.Actor, _ string, since time.Time) (int, error) {
			gotSince = since
			return 0, nil
		},
	}
	rl := NewRateLimiter(st, zap.NewNop())

	rl.Check(context.Background(), entity.Actor{UserID: "u1", OrgID: "o1"}, "psych_classification", 10, 60)
	assert.WithinDuration(t, time.Now().Add(-time.Minute), gotSince, 2*time.Second)
}

func TestRateLimiterFailsOpenOnStoreError(t *testing.T) {
	st := &fakeStore{
		countFn: func(context.Context, entity.Actor, string, time.Time) (int, error) {
			return 0, errStoreDown
		},
	}
	rl := NewRateLimiter(st, zap.NewNop())

	d := rl.Check(context.Background(), entity.Actor{UserID: "u1", OrgID: "o1"}, "psych_classification", 10, 60)
	assert.True(t, d.Allowed)
	assert.Equal(t, 10, d.Remaining)
}
