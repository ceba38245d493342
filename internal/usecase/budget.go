package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
)

// ROAS rule boundaries use a closed-open convention so the bands are
// contiguous: [10,inf) +20%, [5,10) +10%, [2,5) alert, (-inf,2) pause.
const (
	roasScaleHard = 10.0
	roasScaleSoft = 5.0
	roasAlert     = 2.0
)

// BudgetController maps a campaign's return on ad spend to a budget or
// status action. Campaigns are mutated exclusively here; budget never goes
// negative.
type BudgetController struct {
	store  repository.Store
	ledger *Ledger
	log    *zap.Logger
}

func NewBudgetController(store repository.Store, ledger *Ledger, log *zap.Logger) *BudgetController {
	return &BudgetController{store: store, ledger: ledger, log: log}
}

// Evaluate decides what to do with one campaign. Returns nil when the
// campaign is not active or no rule fires. Pure; Execute applies it.
func (b *BudgetController) Evaluate(c entity.Campaign) *entity.AutoPilotAction {
	if c.Status != entity.CampaignActive {
		return nil
	}

	roas := c.ROAS()
	now := time.Now().UTC()

	switch {
	case roas >= roasScaleHard:
		return &entity.AutoPilotAction{
			CampaignID: c.ID,
			Kind:       entity.ActionIncreaseBudget,
			OldBudget:  c.Budget,
			NewBudget:  c.Budget * 1.20,
			Reason:     fmt.Sprintf("excellent ROAS (%.2fx), increasing budget by 20%%", roas),
			Timestamp:  now,
		}
	case roas >= roasScaleSoft:
		return &entity.AutoPilotAction{
			CampaignID: c.ID,
			Kind:       entity.ActionIncreaseBudget,
			OldBudget:  c.Budget,
			NewBudget:  c.Budget * 1.10,
			Reason:     fmt.Sprintf("good ROAS (%.2fx), increasing budget by 10%% for gradual scaling", roas),
			Timestamp:  now,
		}
	case roas >= roasAlert:
		return &entity.AutoPilotAction{
			CampaignID: c.ID,
			Kind:       entity.ActionAlert,
			OldBudget:  c.Budget,
			NewBudget:  c.Budget,
			Reason:     fmt.Sprintf("moderate ROAS (%.2fx), monitor closely and consider optimizing creative or targeting", roas),
			Timestamp:  now,
		}
	default:
		return &entity.AutoPilotAction{
			CampaignID: c.ID,
			Kind:       entity.ActionPause,
			OldBudget:  c.Budget,
			NewBudget:  0,
			Reason:     fmt.Sprintf("low ROAS (%.2fx), pausing campaign to prevent losses", roas),
			Timestamp:  now,
		}
	}
}

// Execute applies an action: mutates the campaign, appends the audit entry
// and emits a notification. The audit trail is best-effort; the mutation is
// not rolled back when a ledger write fails.
func (b *BudgetController) Execute(ctx context.Context, c entity.Campaign, action *entity.AutoPilotAction) error {
	switch action.Kind {
	case entity.ActionIncreaseBudget, entity.ActionDecreaseBudget:
		c.Budget = action.NewBudget
		if c.Budget < 0 {
			c.Budget = 0
		}
		c.LastOptimizedAt = action.Timestamp
		if err := b.store.UpdateCampaign(ctx, c); err != nil {
			return fmt.Errorf("update campaign %s: %w", c.ID, err)
		}
	case entity.ActionPause:
		c.Budget = 0
		c.Status = entity.CampaignPaused
		c.LastOptimizedAt = action.Timestamp
		if err := b.store.UpdateCampaign(ctx, c); err != nil {
			return fmt.Errorf("pause campaign %s: %w", c.ID, err)
		}
	case entity.ActionAlert:
		// No state change; the notification is the whole point.
	}

	b.ledger.RecordAction(ctx, *action)

	priority := "medium"
	if action.Kind == entity.ActionPause {
		priority = "high"
	}
	b.ledger.Notify(ctx, "autopilot_action", "Auto-Pilot: "+string(action.Kind), action.Reason, priority)

	b.log.Info("autopilot action executed",
		zap.String("campaign", c.ID),
		zap.String("action", string(action.Kind)),
		zap.Float64("old_budget", action.OldBudget),
		zap.Float64("new_budget", action.NewBudget))
	return nil
}
