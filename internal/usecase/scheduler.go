package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
)

// History rows only when the move is noticeable; alerts when it matters.
const (
	historyThresholdPct = 1.0
	alertThresholdPct   = 5.0
)

// CycleReport is the terminal state of one run. A run always completes:
// every entity is attempted exactly once, failures are counted, never fatal.
type CycleReport struct {
	Campaigns   int
	Competitors int
	Actions     int
	Failures    int
}

// Scheduler drives periodic evaluation of all tracked campaigns and
// competitors. Entities inside one cycle run concurrently; a per-entity
// try-lock keeps overlapping cycles from racing the same record.
type Scheduler struct {
	store     repository.Store
	snapshots repository.SnapshotProvider
	budget    *BudgetController
	pricing   *PricingAdvisor
	ledger    *Ledger
	log       *zap.Logger

	concurrency int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewScheduler(
	store repository.Store,
	snapshots repository.SnapshotProvider,
	budget *BudgetController,
	pricing *PricingAdvisor,
	ledger *Ledger,
	concurrency int,
	log *zap.Logger,
) *Scheduler {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scheduler{
		store:       store,
		snapshots:   snapshots,
		budget:      budget,
		pricing:     pricing,
		ledger:      ledger,
		concurrency: concurrency,
		locks:       make(map[string]*sync.Mutex),
		log:         log,
	}
}

// RunOnce executes a single evaluation cycle.
func (s *Scheduler) RunOnce(ctx context.Context) CycleReport {
	start := time.Now()
	var report CycleReport
	var mu sync.Mutex

	campaigns, err := s.store.Campaigns(ctx)
	if err != nil {
		s.log.Error("cycle: fetching campaigns failed", zap.Error(err))
		report.Failures++
	}
	competitors, err := s.store.Competitors(ctx)
	if err != nil {
		s.log.Error("cycle: fetching competitors failed", zap.Error(err))
		report.Failures++
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, c := range campaigns {
		c := c
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil // cooperative cancellation between entities
			}
			acted, err := s.evaluateCampaign(gctx, c)
			mu.Lock()
			report.Campaigns++
			if acted {
				report.Actions++
			}
			if err != nil {
				report.Failures++
			}
			mu.Unlock()
			if err != nil {
				s.log.Error("campaign evaluation failed", zap.String("campaign", c.ID), zap.Error(err))
			}
			return nil
		})
	}

	for _, c := range competitors {
		c := c
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			acted, err := s.evaluateCompetitor(gctx, c)
			mu.Lock()
			report.Competitors++
			if acted {
				report.Actions++
			}
			if err != nil {
				report.Failures++
			}
			mu.Unlock()
			if err != nil {
				s.log.Error("competitor evaluation failed", zap.String("competitor", c.ID), zap.Error(err))
			}
			return nil
		})
	}

	_ = g.Wait()

	s.log.Info("cycle completed",
		zap.Int("campaigns", report.Campaigns),
		zap.Int("competitors", report.Competitors),
		zap.Int("actions", report.Actions),
		zap.Int("failures", report.Failures),
		zap.Duration("took", time.Since(start)))
	return report
}

// Loop runs a cycle immediately, then on every tick until ctx is done.
func (s *Scheduler) Loop(ctx context.Context, interval time.Duration) {
	s.log.Info("scheduler loop started", zap.Duration("interval", interval))
	s.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler loop stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// evaluateCampaign runs EVALUATE -> ACT -> LOG for one campaign.
func (s *Scheduler) evaluateCampaign(ctx context.Context, c entity.Campaign) (bool, error) {
	lock := s.entityLock("campaign:" + c.ID)
	if !lock.TryLock() {
		s.log.Debug("campaign busy in another cycle, skipping", zap.String("campaign", c.ID))
		return false, nil
	}
	defer lock.Unlock()

	action := s.budget.Evaluate(c)
	if action == nil {
		return false, nil
	}
	if err := s.budget.Execute(ctx, c, action); err != nil {
		return false, err
	}
	return true, nil
}

// evaluateCompetitor polls one competitor page and reacts to price moves.
func (s *Scheduler) evaluateCompetitor(ctx context.Context, c entity.Competitor) (bool, error) {
	lock := s.entityLock("competitor:" + c.ID)
	if !lock.TryLock() {
		s.log.Debug("competitor busy in another cycle, skipping", zap.String("competitor", c.ID))
		return false, nil
	}
	defer lock.Unlock()

	snap, err := s.snapshots.Fetch(ctx, c.URL)
	if err != nil {
		return false, &entity.ScrapeError{URL: c.URL, Err: err}
	}

	prev := c.CurrentPrice
	changePct := entity.PriceChange(prev, snap.Price)
	now := time.Now().UTC()

	c.PreviousPrice = prev
	c.CurrentPrice = snap.Price
	c.PriceChangePct = changePct
	c.StockStatus = snap.StockStatus
	c.PromoText = snap.PromoText
	if snap.ProductTitle != "" {
		c.ProductName = snap.ProductTitle
	}
	c.ObservedAt = now

	if err := s.store.UpsertCompetitor(ctx, c); err != nil {
		return false, fmt.Errorf("upsert competitor %s: %w", c.ID, err)
	}

	if math.Abs(changePct) > historyThresholdPct {
		obs := entity.PriceObservation{
			CompetitorID: c.ID,
			OldPrice:     prev,
			NewPrice:     snap.Price,
			ChangePct:    changePct,
			DetectedAt:   now,
		}
		if err := s.store.AppendPriceObservation(ctx, obs); err != nil {
			s.log.Error("price history write failed", zap.String("competitor", c.ID), zap.Error(err))
		}
	}

	if math.Abs(changePct) <= alertThresholdPct {
		return false, nil
	}

	s.log.Info("significant competitor price move",
		zap.String("competitor", c.ID),
		zap.Float64("change_pct", changePct))

	product, err := s.store.ProductForCompetitor(ctx, c.ID)
	if err != nil {
		// No tracked product means no counter-offer, still a completed poll.
		s.log.Debug("no product tracked against competitor", zap.String("competitor", c.ID), zap.Error(err))
		return false, nil
	}

	offer := s.pricing.CounterOffer(c.CurrentPrice, product.Price, product.Cost)
	priority := "medium"
	if offer.Urgency == entity.UrgencyCritical || offer.Urgency == entity.UrgencyHigh {
		priority = "high"
	}
	s.ledger.Notify(ctx, "price_alert",
		fmt.Sprintf("%s moved %.1f%%", c.Name, changePct),
		offer.Reasoning, priority)
	return true, nil
}

func (s *Scheduler) entityLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}
