package entity

import "time"

// Plan is a subscription tier. Enterprise is uncapped.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Unlimited reports whether the plan skips quota checks entirely.
func (p Plan) Unlimited() bool { return p == PlanEnterprise }

// Actor identifies who is asking for a classification.
type Actor struct {
	UserID string
	OrgID  string
}

// Organization holds the quota side of an actor. UsedThisPeriod is mutated
// only through atomic counter increments; the period reset happens outside
// the core.
type Organization struct {
	ID             string
	Plan           Plan
	MonthlyAILimit int
	UsedThisPeriod int
}

// UsageRecord is one immutable audit row per completed classifier call.
type UsageRecord struct {
	ID            string
	OrgID         string
	UserID        string
	Operation     string
	Model         string
	Tokens        int
	EstimatedCost float64
	InputPreview  string
	OutputPreview string
	Timestamp     time.Time
}

// Notification is an outward-facing alert. Read is the only mutable field
// and is toggled by a consumer outside the core.
type Notification struct {
	ID        string
	Kind      string
	Title     string
	Message   string
	Priority  string // low, medium, high
	Read      bool
	CreatedAt time.Time
}
