package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/trade-journal/internal/auth"
	"github.com/yourusername/trade-journal/internal/models"
	"github.com/yourusername/trade-journal/internal/repository"
)

type memoryJournal struct {
	mu       sync.Mutex
	trades   map[uuid.UUID]*models.Trade
	sessions map[uuid.UUID]*models.Session
	calcs    map[uuid.UUID]*models.Calculation
}

func newMemoryJournal() *memoryJournal {
	return &memoryJournal{
		trades:   make(map[uuid.UUID]*models.Trade),
		sessions: make(map[uuid.UUID]*models.Session),
		calcs:    make(map[uuid.UUID]*models.Calculation),
	}
}

type memoryTrades struct{ *memoryJournal }
type memorySessions struct{ *memoryJournal }
type memoryCalculations struct{ *memoryJournal }

func (m memoryTrades) Create(_ context.Context, t *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.UserID == "" {
		return models.ErrMissingUser
	}
	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	m.trades[t.ID] = &cp
	return nil
}

func (m memoryTrades) GetByID(_ context.Context, userID string, id uuid.UUID) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok || t.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memoryTrades) List(_ context.Context, userID string, filter repository.TradeFilter) ([]*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Trade{}
	for _, t := range m.trades {
		if t.UserID != userID {
			continue
		}
		if filter.Symbol != "" && t.Symbol != filter.Symbol {
			continue
		}
		if filter.Outcome != "" && t.Outcome != filter.Outcome {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, nil
}

func (m memoryTrades) ListBySession(_ context.Context, userID string, sessionID uuid.UUID) ([]*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Trade{}
	for _, t := range m.trades {
		if t.UserID == userID && t.SessionID != nil && *t.SessionID == sessionID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memoryTrades) Update(_ context.Context, t *models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.trades[t.ID]
	if !ok || existing.UserID != t.UserID {
		return models.ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	m.trades[t.ID] = &cp
	return nil
}

func (m memoryTrades) Delete(_ context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok || t.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.trades, id)
	return nil
}

func (m memorySessions) Create(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m memorySessions) GetByID(_ context.Context, userID string, id uuid.UUID) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m memorySessions) List(_ context.Context, userID string, _ repository.ListOptions) ([]*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Session{}
	for _, s := range m.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memorySessions) Update(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sessions[s.ID]
	if !ok || existing.UserID != s.UserID {
		return models.ErrNotFound
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m memorySessions) Delete(_ context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.sessions, id)
	for _, t := range m.trades {
		if t.SessionID != nil && *t.SessionID == id {
			t.SessionID = nil
		}
	}
	return nil
}

func (m memoryCalculations) Create(_ context.Context, c *models.Calculation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = time.Now().UTC()
	cp := *c
	m.calcs[c.ID] = &cp
	return nil
}

func (m memoryCalculations) GetByID(_ context.Context, userID string, id uuid.UUID) (*models.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calcs[id]
	if !ok || c.UserID != userID {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m memoryCalculations) List(_ context.Context, userID string, _ repository.ListOptions) ([]*models.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Calculation{}
	for _, c := range m.calcs {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m memoryCalculations) Delete(_ context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calcs[id]
	if !ok || c.UserID != userID {
		return models.ErrNotFound
	}
	delete(m.calcs, id)
	return nil
}

func (m memoryCalculations) ListWithObservedProfit(_ context.Context, limit int) ([]*models.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Calculation{}
	for _, c := range m.calcs {
		if c.ObservedProfit != nil && len(out) < limit {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeCredentials struct {
	username string
	password string
}

func (f fakeCredentials) Verify(_ context.Context, username, password string) (auth.Identity, error) {
	if username != f.username || password != f.password {
		return auth.Identity{}, auth.ErrAuthFailed
	}
	return auth.Identity{UserID: "user-1", Username: username, DisplayName: "Trader"}, nil
}
