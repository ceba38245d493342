// Package usecase contains the decision engines and the control loop that
// drives them.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
	"neuropilot/internal/guard"
)

// Ledger is the append-only audit trail plus outward notification emission.
// Every write is best-effort: a store fault is logged and never aborts the
// decision that was already made. At worst an audit row or a quota
// increment goes missing.
type Ledger struct {
	store   repository.Store
	counter repository.QuotaCounter
	log     *zap.Logger
}

func NewLedger(store repository.Store, counter repository.QuotaCounter, log *zap.Logger) *Ledger {
	return &Ledger{store: store, counter: counter, log: log}
}

const previewLen = 100

// RecordUsage appends one usage row and atomically bumps the organization's
// monthly counter. Called once per completed classifier call, even when the
// result is later discarded.
func (l *Ledger) RecordUsage(ctx context.Context, actor entity.Actor, operation, model string, tokens int, cost float64, input, output string) {
	rec := entity.UsageRecord{
		ID:            uuid.NewString(),
		OrgID:         actor.OrgID,
		UserID:        actor.UserID,
		Operation:     operation,
		Model:         model,
		Tokens:        tokens,
		EstimatedCost: cost,
		InputPreview:  preview(input),
		OutputPreview: preview(output),
		Timestamp:     time.Now().UTC(),
	}
	if err := l.store.InsertUsage(ctx, rec); err != nil {
		l.log.Error("usage record write failed", zap.String("org", actor.OrgID), zap.Error(err))
	}
	if err := l.counter.Increment(ctx, actor.OrgID, guard.Period(time.Now()), 1); err != nil {
		l.log.Error("quota increment failed", zap.String("org", actor.OrgID), zap.Error(err))
	}
}

// RecordAction appends one auto-pilot audit entry.
func (l *Ledger) RecordAction(ctx context.Context, a entity.AutoPilotAction) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if err := l.store.InsertAction(ctx, a); err != nil {
		l.log.Error("action record write failed", zap.String("campaign", a.CampaignID), zap.Error(err))
	}
}

// Notify emits one outward notification.
func (l *Ledger) Notify(ctx context.Context, kind, title, message, priority string) {
	n := entity.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Priority:  priority,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.store.InsertNotification(ctx, n); err != nil {
		l.log.Error("notification write failed", zap.String("kind", kind), zap.Error(err))
	}
}

func preview(s string) string {
	if len(s) > previewLen {
		return s[:previewLen]
	}
	return s
}
