package storage

import (
	"context"
	"sync"
	"time"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

type sessionState struct {
	result   *entity.SearchResult
	deals    []entity.Deal
	hasDeals bool
	lastUsed time.Time
}

type memorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository keeps per-session results in memory; sessions
// idle longer than ttl are dropped on the next write. ttl <= 0 keeps them forever.
func NewMemorySessionRepository(ttl time.Duration) repository.SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*sessionState),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *memorySessionRepository) state(sessionID string) *sessionState {
	s, ok := m.sessions[sessionID]
	if !ok {
		s = &sessionState{}
		m.sessions[sessionID] = s
	}
	s.lastUsed = m.now()
	return s
}

// evict must be called with the write lock held
func (m *memorySessionRepository) evict() {
	if m.ttl <= 0 {
		return
	}
	cutoff := m.now().Add(-m.ttl)
	for id, s := range m.sessions {
		if s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// SaveResult replaces the session's last search
func (m *memorySessionRepository) SaveResult(ctx context.Context, sessionID string, result entity.SearchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evict()
	offers := make([]entity.Offer, len(result.Offers))
	copy(offers, result.Offers)
	result.Offers = offers
	m.state(sessionID).result = &result
	return nil
}

// LastResult last search of the session
func (m *memorySessionRepository) LastResult(ctx context.Context, sessionID string) (entity.SearchResult, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok || s.result == nil {
		return entity.SearchResult{}, false, nil
	}
	return *s.result, true, nil
}

// SaveDeals replaces the session's deals list
func (m *memorySessionRepository) SaveDeals(ctx context.Context, sessionID string, deals []entity.Deal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evict()
	s := m.state(sessionID)
	s.deals = append([]entity.Deal(nil), deals...)
	s.hasDeals = true
	return nil
}

// LastDeals deals list of the session
func (m *memorySessionRepository) LastDeals(ctx context.Context, sessionID string) ([]entity.Deal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok || !s.hasDeals {
		return nil, false, nil
	}
	return append([]entity.Deal(nil), s.deals...), true, nil
}

// Clear drops the session
func (m *memorySessionRepository) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}
