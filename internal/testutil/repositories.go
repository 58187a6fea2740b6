// Package testutil provides in-memory fakes shared by service and handler tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
	"github.com/Behnamfe76/contacts-directory/internal/repository"
)

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraint}
}

// UserStore is an in-memory repository.UserRepository with the same
// not-found and uniqueness errors as the Postgres implementation.
type UserStore struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]domain.User
	lookups atomic.Int64
}

// NewUserStore returns an empty store.
func NewUserStore() *UserStore {
	return &UserStore{byID: map[int64]domain.User{}}
}

var _ repository.UserRepository = (*UserStore)(nil)

// Lookups counts GetByUsername calls.
func (s *UserStore) Lookups() int64 {
	return s.lookups.Load()
}

func (s *UserStore) usernameTaken(name string, except int64) bool {
	for id, u := range s.byID {
		if u.Username == name && id != except {
			return true
		}
	}
	return false
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usernameTaken(user.Username, 0) {
		return uniqueViolation("users_username_key")
	}
	s.nextID++
	now := time.Now().UTC()
	user.ID = s.nextID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.byID[user.ID] = *user
	return nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if s.usernameTaken(user.Username, user.ID) {
		return uniqueViolation("users_username_key")
	}
	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = time.Now().UTC()
	s.byID[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.lookups.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *UserStore) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.User{}
	for _, u := range s.byID {
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *UserStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.Active = false
	u.UpdatedAt = time.Now().UTC()
	s.byID[id] = u
	return nil
}

// ContactStore is an in-memory repository.ContactRepository.
type ContactStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Contact
}

// NewContactStore returns an empty store.
func NewContactStore() *ContactStore {
	return &ContactStore{byID: map[int64]domain.Contact{}}
}

var _ repository.ContactRepository = (*ContactStore)(nil)

func (s *ContactStore) Create(_ context.Context, contact *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	now := time.Now().UTC()
	contact.ID = s.nextID
	contact.CreatedAt = now
	contact.UpdatedAt = now
	s.byID[contact.ID] = *contact
	return nil
}

func (s *ContactStore) Update(_ context.Context, contact *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[contact.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	contact.CreatedAt = existing.CreatedAt
	contact.UpdatedAt = time.Now().UTC()
	s.byID[contact.ID] = *contact
	return nil
}

func (s *ContactStore) GetByID(_ context.Context, id int64) (*domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &c, nil
}

func (s *ContactStore) List(_ context.Context, filter repository.ContactFilter) ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []domain.Contact{}
	for _, c := range s.byID {
		if filter.DDD != nil && *filter.DDD != "" && c.DDD != *filter.DDD {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *ContactStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.byID, id)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
