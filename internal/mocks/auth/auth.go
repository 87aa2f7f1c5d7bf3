package auth

// Package auth contains simple hand-written test doubles for auth and directory ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/target/onboard-admin/internal/domain/auth"
	"github.com/target/onboard-admin/internal/domain/model"
	apperrors "github.com/target/onboard-admin/internal/errors"
	"github.com/target/onboard-admin/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider  = (*MockAuthProvider)(nil)
	_ ports.SessionStore  = (*MemorySessionStore)(nil)
	_ ports.AccountLinker = (*MemoryAccountLinker)(nil)
	_ ports.UserStore     = (*MemoryUserStore)(nil)
)

// MockAuthProvider stands in for an IdP. Begin issues numbered state/nonce pairs
// ("state-1", "nonce-1", ...) and Exchange returns Identity with a one-hour expiry.
// Set BeginFunc or ExchangeFunc to override either step.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state, nonce string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error)

	AuthURL  string
	Identity domainauth.Identity

	issued atomic.Int64
}

// NewMockAuthProvider returns a provider signing everyone in as mock-user-1.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL: "https://mock-idp/auth",
		Identity: domainauth.Identity{
			UserID:    "mock-user-1",
			Provider:  "mock",
			FirstName: "Mock",
			LastName:  "User",
			Email:     "mock.user@example.com",
			Groups:    []string{"users"},
		},
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}
	n := m.issued.Add(1)
	return m.AuthURL, fmt.Sprintf("state-%d", n), fmt.Sprintf("nonce-%d", n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	id := m.Identity
	id.Groups = append([]string(nil), m.Identity.Groups...)
	id.ExpiresAt = time.Now().Add(time.Hour)
	return id, nil
}

// MemorySessionStore is an in-memory session store for unit tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.Session),
	}
}

func (m *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return errors.New("session ID cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if id == "" || !ok {
		return domainauth.Session{}, ErrNotFound
	}
	return sess, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Len reports how many sessions are stored.
func (m *MemorySessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type notFoundError struct{}

func (notFoundError) Error() string { return "not found" }

// ErrNotFound is returned by mocks when an entity is not present.
var ErrNotFound error = notFoundError{}

// MemoryAccountLinker records account links in memory.
type MemoryAccountLinker struct {
	mu    sync.Mutex
	Err   error
	Links []model.Account
}

func (m *MemoryAccountLinker) Link(_ context.Context, acct model.Account) error {
	if m.Err != nil {
		return m.Err
	}
	if err := acct.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Links = append(m.Links, acct)
	return nil
}

// MemoryUserStore is an in-memory user directory that counts calls.
// Err makes every call fail; PanicWith makes every call panic.
type MemoryUserStore struct {
	mu        sync.RWMutex
	users     map[string]model.User
	Err       error
	PanicWith any

	calls atomic.Int64
}

// NewMemoryUserStore creates a store seeded with users.
func NewMemoryUserStore(users ...model.User) *MemoryUserStore {
	s := &MemoryUserStore{users: make(map[string]model.User)}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

// Put inserts or replaces a user keyed by id.
func (s *MemoryUserStore) Put(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// Remove deletes a user by id.
func (s *MemoryUserStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Calls reports how many store methods were invoked.
func (s *MemoryUserStore) Calls() int64 { return s.calls.Load() }

func (s *MemoryUserStore) enter() error {
	s.calls.Add(1)
	if s.PanicWith != nil {
		panic(s.PanicWith)
	}
	return s.Err
}

func (s *MemoryUserStore) Ping(_ context.Context) error {
	return s.enter()
}

func (s *MemoryUserStore) FindUserByID(_ context.Context, id string) (*model.User, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFoundf("user %s", id)
	}
	return &u, nil
}

func (s *MemoryUserStore) FindUserByEmail(_ context.Context, email string) (*model.User, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperrors.NotFoundf("user with email %s", email)
}
