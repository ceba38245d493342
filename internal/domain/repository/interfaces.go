package repository

import (
	"context"
	"time"

	"neuropilot/internal/domain/entity"
)

// Store is the persistent collaborator: point upserts and queries by id,
// append-only inserts for audit rows, and the trailing-window range query
// the rate limiter needs.
type Store interface {
	Campaigns(ctx context.Context) ([]entity.Campaign, error)
	UpdateCampaign(ctx context.Context, c entity.Campaign) error

	Competitors(ctx context.Context) ([]entity.Competitor, error)
	UpsertCompetitor(ctx context.Context, c entity.Competitor) error
	AppendPriceObservation(ctx context.Context, o entity.PriceObservation) error
	ProductForCompetitor(ctx context.Context, competitorID string) (*entity.Product, error)

	Organization(ctx context.Context, orgID string) (*entity.Organization, error)

	InsertUsage(ctx context.Context, r entity.UsageRecord) error
	CountUsageSince(ctx context.Context, actor entity.Actor, operation string, since time.Time) (int, error)
	InsertAction(ctx context.Context, a entity.AutoPilotAction) error
	InsertNotification(ctx context.Context, n entity.Notification) error
}

// QuotaCounter tracks per-organization monthly usage. Increments must be
// atomic; reads may lag one concurrent increment (accepted soft limit).
type QuotaCounter interface {
	Used(ctx context.Context, orgID, period string) (int, error)
	Increment(ctx context.Context, orgID, period string, n int) error
}

// Completion is what the text-classification provider returns.
type Completion struct {
	Content    string
	TokensUsed int
}

// TextClassifier is the external LLM collaborator.
type TextClassifier interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32, maxOutputTokens int) (*Completion, error)
	Model() string
}

// Embedder turns sanitized text into a vector for the semantic cache.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ResultCache is a best-effort semantic cache of classifier verdicts.
type ResultCache interface {
	Lookup(ctx context.Context, vector []float32, threshold float32) (*entity.PsychProfileResult, error)
	Save(ctx context.Context, message string, res *entity.PsychProfileResult, vector []float32) error
}

// SnapshotProvider fetches and extracts one competitor page.
type SnapshotProvider interface {
	Fetch(ctx context.Context, url string) (*entity.PageSnapshot, error)
}
