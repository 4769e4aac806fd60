package auth

import (
	"context"
	"sync"
	"time"
)

// SessionStore records which token ids are still usable.
type SessionStore interface {
	Save(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Active(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemorySessions keeps sessions in process. Used when no Redis is configured.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memorySession), now: time.Now}
}

func (m *MemorySessions) Save(_ context.Context, tokenID, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, id)
		}
	}
	m.sessions[tokenID] = memorySession{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (m *MemorySessions) Active(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tokenID]
	return ok && m.now().Before(s.expiresAt), nil
}

func (m *MemorySessions) Revoke(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenID)
	return nil
}
