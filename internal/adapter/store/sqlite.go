// Package store holds the persistence adapters: the SQLite ledger, the
// Redis quota counters and the Qdrant semantic cache.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"neuropilot/internal/domain/entity"
)

const schema = `
CREATE TABLE IF NOT EXISTS campaigns (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	platform       TEXT NOT NULL,
	budget         REAL NOT NULL,
	spend          REAL NOT NULL DEFAULT 0,
	revenue        REAL NOT NULL DEFAULT 0,
	status         TEXT NOT NULL,
	last_optimized TIMESTAMP
);
CREATE TABLE IF NOT EXISTS competitors (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	url              TEXT NOT NULL,
	current_price    REAL NOT NULL DEFAULT 0,
	previous_price   REAL NOT NULL DEFAULT 0,
	price_change_pct REAL NOT NULL DEFAULT 0,
	product_name     TEXT,
	stock_status     TEXT NOT NULL DEFAULT 'in_stock',
	promo_text       TEXT,
	observed_at      TIMESTAMP
);
CREATE TABLE IF NOT EXISTS price_history (
	competitor_id TEXT NOT NULL,
	old_price     REAL NOT NULL,
	new_price     REAL NOT NULL,
	change_pct    REAL NOT NULL,
	detected_at   TIMESTAMP NOT NULL,
	PRIMARY KEY (competitor_id, detected_at)
);
CREATE TABLE IF NOT EXISTS products (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	price         REAL NOT NULL,
	cost          REAL NOT NULL,
	competitor_id TEXT
);
CREATE TABLE IF NOT EXISTS organizations (
	id               TEXT PRIMARY KEY,
	plan             TEXT NOT NULL DEFAULT 'free',
	monthly_ai_limit INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS usage_log (
	id             TEXT PRIMARY KEY,
	org_id         TEXT NOT NULL,
	user_id        TEXT NOT NULL,
	operation      TEXT NOT NULL,
	model          TEXT NOT NULL,
	tokens         INTEGER NOT NULL,
	estimated_cost REAL NOT NULL,
	input_preview  TEXT,
	output_preview TEXT,
	ts             TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_window ON usage_log (org_id, user_id, operation, ts);
CREATE TABLE IF NOT EXISTS autopilot_actions (
	id          TEXT PRIMARY KEY,
	campaign_id TEXT NOT NULL,
	action      TEXT NOT NULL,
	old_budget  REAL NOT NULL,
	new_budget  REAL NOT NULL,
	reason      TEXT NOT NULL,
	ts          TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	kind       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	priority   TEXT NOT NULL,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
`

// SQLiteStore is the Store collaborator: point upserts, append-only audit
// inserts, and the trailing-window count the rate limiter runs on.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (or creates) the database with WAL enabled and applies the
// schema.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// DB exposes the raw handle for seeding and tests.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// --- Campaigns ---

func (s *SQLiteStore) Campaigns(ctx context.Context) ([]entity.Campaign, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, platform, budget, spend, revenue, status, last_optimized FROM campaigns`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Campaign
	for rows.Next() {
		var c entity.Campaign
		var last sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Platform, &c.Budget, &c.Spend, &c.Revenue, &c.Status, &last); err != nil {
			return nil, err
		}
		if last.Valid {
			c.LastOptimizedAt = last.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateCampaign(ctx context.Context, c entity.Campaign) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET budget = ?, spend = ?, revenue = ?, status = ?, last_optimized = ? WHERE id = ?`,
		c.Budget, c.Spend, c.Revenue, c.Status, c.LastOptimizedAt, c.ID)
	return err
}

func (s *SQLiteStore) InsertCampaign(ctx context.Context, c entity.Campaign) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (id, name, platform, budget, spend, revenue, status, last_optimized) VALUES (?,?,?,?,?,?,?,?)`,
		c.ID, c.Name, c.Platform, c.Budget, c.Spend, c.Revenue, c.Status, c.LastOptimizedAt)
	return err
}

// --- Competitors ---

func (s *SQLiteStore) Competitors(ctx context.Context) ([]entity.Competitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url, current_price, previous_price, price_change_pct,
		        COALESCE(product_name,''), stock_status, COALESCE(promo_text,''), observed_at
		 FROM competitors`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Competitor
	for rows.Next() {
		var c entity.Competitor
		var observed sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.URL, &c.CurrentPrice, &c.PreviousPrice,
			&c.PriceChangePct, &c.ProductName, &c.StockStatus, &c.PromoText, &observed); err != nil {
			return nil, err
		}
		if observed.Valid {
			c.ObservedAt = observed.Time
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpsertCompetitor rewrites the mutable "latest" pointer for one competitor.
func (s *SQLiteStore) UpsertCompetitor(ctx context.Context, c entity.Competitor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO competitors (id, name, url, current_price, previous_price, price_change_pct, product_name, stock_status, promo_text, observed_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name, url = excluded.url,
		   current_price = excluded.current_price, previous_price = excluded.previous_price,
		   price_change_pct = excluded.price_change_pct, product_name = excluded.product_name,
		   stock_status = excluded.stock_status, promo_text = excluded.promo_text,
		   observed_at = excluded.observed_at`,
		c.ID, c.Name, c.URL, c.CurrentPrice, c.PreviousPrice, c.PriceChangePct,
		c.ProductName, c.StockStatus, c.PromoText, c.ObservedAt)
	return err
}

func (s *SQLiteStore) AppendPriceObservation(ctx context.Context, o entity.PriceObservation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO price_history (competitor_id, old_price, new_price, change_pct, detected_at) VALUES (?,?,?,?,?)`,
		o.CompetitorID, o.OldPrice, o.NewPrice, o.ChangePct, o.DetectedAt)
	return err
}

func (s *SQLiteStore) ProductForCompetitor(ctx context.Context, competitorID string) (*entity.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, price, cost, COALESCE(competitor_id,'') FROM products WHERE competitor_id = ?`, competitorID)
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Cost, &p.CompetitorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrEntityNotFound
		}
		return nil, err
	}
	return &p, nil
}

// --- Organizations ---

func (s *SQLiteStore) Organization(ctx context.Context, orgID string) (*entity.Organization, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, plan, monthly_ai_limit FROM organizations WHERE id = ?`, orgID)
	var org entity.Organization
	if err := row.Scan(&org.ID, &org.Plan, &org.MonthlyAILimit); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrEntityNotFound
		}
		return nil, err
	}
	return &org, nil
}

// --- Append-only audit rows ---

func (s *SQLiteStore) InsertUsage(ctx context.Context, r entity.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_log (id, org_id, user_id, operation, model, tokens, estimated_cost, input_preview, output_preview, ts)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.OrgID, r.UserID, r.Operation, r.Model, r.Tokens, r.EstimatedCost, r.InputPreview, r.OutputPreview, r.Timestamp)
	return err
}

// CountUsageSince is the rate limiter's trailing-window range query.
func (s *SQLiteStore) CountUsageSince(ctx context.Context, actor entity.Actor, operation string, since time.Time) (int, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usage_log WHERE org_id = ? AND user_id = ? AND operation = ? AND ts >= ?`,
		actor.OrgID, actor.UserID, operation, since)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *SQLiteStore) InsertAction(ctx context.Context, a entity.AutoPilotAction) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO autopilot_actions (id, campaign_id, action, old_budget, new_budget, reason, ts) VALUES (?,?,?,?,?,?,?)`,
		a.ID, a.CampaignID, a.Kind, a.OldBudget, a.NewBudget, a.Reason, a.Timestamp)
	return err
}

func (s *SQLiteStore) InsertNotification(ctx context.Context, n entity.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, kind, title, message, priority, read, created_at) VALUES (?,?,?,?,?,?,?)`,
		n.ID, n.Kind, n.Title, n.Message, n.Priority, boolToInt(n.Read), n.CreatedAt)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
