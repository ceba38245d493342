package entity

import "time"

// CampaignStatus is the lifecycle state of an ad campaign.
type CampaignStatus string

const (
	CampaignActive  CampaignStatus = "active"
	CampaignPaused  CampaignStatus = "paused"
	CampaignStopped CampaignStatus = "stopped"
)

// Campaign is one tracked ad campaign. Mutated exclusively by the budget
// controller; Budget must never go negative.
type Campaign struct {
	ID              string
	Name            string
	Platform        string // facebook, google, tiktok
	Budget          float64
	Spend           float64
	Revenue         float64
	Status          CampaignStatus
	LastOptimizedAt time.Time
}

// ROAS is revenue over spend, zero when nothing was spent.
func (c Campaign) ROAS() float64 {
	if c.Spend == 0 {
		return 0
	}
	return c.Revenue / c.Spend
}

// ActionKind is what the auto-pilot decided to do with a campaign.
type ActionKind string

const (
	ActionIncreaseBudget ActionKind = "increase_budget"
	ActionDecreaseBudget ActionKind = "decrease_budget"
	ActionPause          ActionKind = "pause"
	ActionAlert          ActionKind = "alert"
)

// AutoPilotAction is one immutable audit entry, created once per evaluation
// that yields an action. Never updated or deleted.
type AutoPilotAction struct {
	ID         string
	CampaignID string
	Kind       ActionKind
	OldBudget  float64
	NewBudget  float64
	Reason     string
	Timestamp  time.Time
}
