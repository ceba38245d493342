package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory repository.Store with optional error hooks,
// shared by the usecase tests.
type memStore struct {
	mu sync.Mutex

	campaigns     []entity.Campaign
	competitors   []entity.Competitor
	observations  []entity.PriceObservation
	products      map[string]*entity.Product // keyed by competitor ID
	orgs          map[string]*entity.Organization
	usage         []entity.UsageRecord
	actions       []entity.AutoPilotAction
	notifications []entity.Notification

	campaignsErr      error
	competitorsErr    error
	updateCampaignErr error
	upsertErr         error
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*entity.Product),
		orgs:     make(map[string]*entity.Organization),
	}
}

func (m *memStore) Campaigns(context.Context) ([]entity.Campaign, error) {
	if m.campaignsErr != nil {
		return nil, m.campaignsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Campaign(nil), m.campaigns...), nil
}

func (m *memStore) UpdateCampaign(_ context.Context, c entity.Campaign) error {
	if m.updateCampaignErr != nil {
		return m.updateCampaignErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.campaigns {
		if m.campaigns[i].ID == c.ID {
			m.campaigns[i] = c
			return nil
		}
	}
	return entity.ErrEntityNotFound
}

func (m *memStore) Competitors(context.Context) ([]entity.Competitor, error) {
	if m.competitorsErr != nil {
		return nil, m.competitorsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Competitor(nil), m.competitors...), nil
}

func (m *memStore) UpsertCompetitor(_ context.Context, c entity.Competitor) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.competitors {
		if m.competitors[i].ID == c.ID {
			m.competitors[i] = c
			return nil
		}
	}
	m.competitors = append(m.competitors, c)
	return nil
}

func (m *memStore) AppendPriceObservation(_ context.Context, o entity.PriceObservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, o)
	return nil
}

func (m *memStore) ProductForCompetitor(_ context.Context, competitorID string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[competitorID]
	if !ok {
		return nil, entity.ErrEntityNotFound
	}
	return p, nil
}

func (m *memStore) Organization(_ context.Context, orgID string) (*entity.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	org, ok := m.orgs[orgID]
	if !ok {
		return nil, entity.ErrEntityNotFound
	}
	return org, nil
}

func (m *memStore) InsertUsage(_ context.Context, r entity.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usage = append(m.usage, r)
	return nil
}

func (m *memStore) CountUsageSince(_ context.Context, actor entity.Actor, operation string, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.usage {
		if r.UserID == actor.UserID && r.OrgID == actor.OrgID && r.Operation == operation && !r.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memStore) InsertAction(_ context.Context, a entity.AutoPilotAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
	return nil
}

func (m *memStore) InsertNotification(_ context.Context, n entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

type memCounter struct {
	mu   sync.Mutex
	used map[string]int
}

func (c *memCounter) Used(_ context.Context, orgID, period string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.used[orgID+":"+period], nil
}

func (c *memCounter) Increment(_ context.Context, orgID, period string, n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.used == nil {
		c.used = make(map[string]int)
	}
	c.used[orgID+":"+period] += n
	return nil
}

// fakeProvider returns a canned completion or error.
type fakeProvider struct {
	content string
	tokens  int
	err     error
	calls   int
}

func (p *fakeProvider) Complete(context.Context, string, string, float32, int) (*repository.Completion, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &repository.Completion{Content: p.content, TokensUsed: p.tokens}, nil
}

func (p *fakeProvider) Model() string { return "fake-model" }

type fakeSnapshots struct {
	snaps map[string]*entity.PageSnapshot
	err   error
}

func (f *fakeSnapshots) Fetch(_ context.Context, url string) (*entity.PageSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snap, ok := f.snaps[url]
	if !ok {
		return nil, errors.New("unknown url")
	}
	return snap, nil
}
