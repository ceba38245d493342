package guard

import (
	"context"
	"errors"
	"time"

	"neuropilot/internal/domain/entity"
)

// fakeStore implements repository.Store with function hooks for the
// methods the guards touch.
type fakeStore struct {
	countFn func(ctx context.Context, actor entity.Actor, operation string, since time.Time) (int, error)
	orgFn   func(ctx context.Context, orgID string) (*entity.Organization, error)
}

func (f *fakeStore) CountUsageSince(ctx context.Context, actor entity.Actor, operation string, since time.Time) (int, error) {
	if f.countFn != nil {
		return f.countFn(ctx, actor, operation, since)
	}
	return 0, nil
}

func (f *fakeStore) Organization(ctx context.Context, orgID string) (*entity.Organization, error) {
	if f.orgFn != nil {
		return f.orgFn(ctx, orgID)
	}
	return nil, entity.ErrEntityNotFound
}

func (f *fakeStore) Campaigns(context.Context) ([]entity.Campaign, error) { return nil, nil }
func (f *fakeStore) UpdateCampaign(context.Context, entity.Campaign) error { return nil }
func (f *fakeStore) Competitors(context.Context) ([]entity.Competitor, error) { return nil, nil }
func (f *fakeStore) UpsertCompetitor(context.Context, entity.Competitor) error { return nil }
func (f *fakeStore) AppendPriceObservation(context.Context, entity.PriceObservation) error {
	return nil
}
func (f *fakeStore) ProductForCompetitor(context.Context, string) (*entity.Product, error) {
	return nil, entity.ErrEntityNotFound
}
func (f *fakeStore) InsertUsage(context.Context, entity.UsageRecord) error      { return nil }
func (f *fakeStore) InsertAction(context.Context, entity.AutoPilotAction) error { return nil }
func (f *fakeStore) InsertNotification(context.Context, entity.Notification) error {
	return nil
}

// fakeCounter implements repository.QuotaCounter in memory.
type fakeCounter struct {
	used    map[string]int
	usedErr error
}

func (f *fakeCounter) Used(ctx context.Context, orgID, period string) (int, error) {
	if f.usedErr != nil {
		return 0, f.usedErr
	}
	return f.used[orgID+":"+period], nil
}

func (f *fakeCounter) Increment(ctx context.Context, orgID, period string, n int) error {
	if f.used == nil {
		f.used = make(map[string]int)
	}
	f.used[orgID+":"+period] += n
	return nil
}

var errStoreDown = errors.New("store down")
