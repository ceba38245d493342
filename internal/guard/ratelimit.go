package guard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
)

// Decision is the rate limiter verdict for a single request.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// RateLimiter counts an actor's prior requests for an operation inside a
// trailing window. Read-then-decide, not an atomic reservation: two
// concurrent requests from one actor can transiently exceed the window by
// one. That soft limit is accepted.
type RateLimiter struct {
	store repository.Store
	log   *zap.Logger
}

func NewRateLimiter(store repository.Store, log *zap.Logger) *RateLimiter {
	return &RateLimiter{store: store, log: log}
}

// Check counts requests within the trailing window. On a store failure the
// policy fails open: availability wins over strict enforcement.
func (r *RateLimiter) Check(ctx context.Context, actor entity.Actor, operation string, maxRequests, windowSeconds int) Decision {
	window := time.Duration(windowSeconds) * time.Second
	since := time.Now().Add(-window)

	count, err := r.store.CountUsageSince(ctx, actor, operation, since)
	if err != nil {
		r.log.Warn("rate limit store query failed, failing open",
			zap.String("user", actor.UserID),
			zap.String("operation", operation),
			zap.Error(err))
		return Decision{Allowed: true, Remaining: maxRequests, ResetAt: time.Now()}
	}

	remaining := maxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count < maxRequests,
		Remaining: remaining,
		ResetAt:   time.Now().Add(window),
	}
}
