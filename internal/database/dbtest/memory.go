// Package dbtest provides stores and fixtures for tests: an in-memory store
// mirroring database.Store, a user factory, and transaction-scoped access to
// a real PostgreSQL database.
package dbtest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/umar/usergroups/internal/database"
	"github.com/umar/usergroups/internal/models"
)

// MemoryStore implements the same methods as database.Store and returns the
// same sentinel errors.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]models.User
	groups map[string]models.Group
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]models.User),
		groups: make(map[string]models.Group),
		now:    time.Now,
	}
}

func (m *MemoryStore) conflict(u *models.User) error {
	for _, existing := range m.users {
		if existing.ID == u.ID {
			continue
		}
		if existing.Email == u.Email {
			return &database.DuplicateError{Constraint: database.ConstraintUserEmail}
		}
		if existing.Username == u.Username {
			return &database.DuplicateError{Constraint: database.ConstraintUserUsername}
		}
	}
	return nil
}

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.conflict(u); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	u.ID = uuid.NewString()
	u.CreatedAt = m.now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) findUser(match func(models.User) bool) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("failed to get user: %w", database.ErrNotFound)
}

func (m *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.ID == id })
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Email == email })
}

func (m *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return m.findUser(func(u models.User) bool { return u.Username == username })
}

func (m *MemoryStore) UpdateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[u.ID]
	if !ok {
		return fmt.Errorf("failed to update user: %w", database.ErrNotFound)
	}
	if err := m.conflict(u); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	existing.Email = u.Email
	existing.Password = u.Password
	existing.Avatar = u.Avatar
	existing.UpdatedAt = m.now()
	m.users[u.ID] = existing
	u.UpdatedAt = existing.UpdatedAt
	return nil
}

func (m *MemoryStore) CreateGroup(_ context.Context, g *models.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[g.Master]; !ok {
		return fmt.Errorf("failed to create group: %w", database.ErrMissingReference)
	}
	g.ID = uuid.NewString()
	g.CreatedAt = m.now()
	g.UpdatedAt = g.CreatedAt
	m.groups[g.ID] = *g
	return nil
}

func (m *MemoryStore) GetGroupByID(_ context.Context, id string) (*models.Group, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, fmt.Errorf("failed to get group: %w", database.ErrNotFound)
	}
	return &g, nil
}

func (m *MemoryStore) ListGroups(_ context.Context, limit int) ([]models.Group, error) {
	m.mu.RLock()
	groups := make([]models.Group, 0, len(m.groups))
	for _, g := range m.groups {
		groups = append(groups, g)
	}
	m.mu.RUnlock()

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].CreatedAt.Equal(groups[j].CreatedAt) {
			return groups[i].ID < groups[j].ID
		}
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups, nil
}
