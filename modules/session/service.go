package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/modules/gateway"
)

var (
	// ErrLoginFailed is returned when the server rejects the credentials.
	ErrLoginFailed = errors.New("login failed: invalid credentials")
	// ErrMissingCredentials is returned before any network call when a
	// required field is empty.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrMissingName is returned before any network call when registration
	// lacks a name.
	ErrMissingName = errors.New("name is required")
)

// Store owns the client's belief about the current authenticated identity.
// It is anonymous or authenticated(identity); the identity is held in memory
// only and re-derived from the server, never persisted.
type Store struct {
	gw *gateway.Client

	mu      sync.RWMutex
	current *identity.Identity
}

// NewStore creates a Store over the given gateway client and registers
// itself on the client's unauthorized hook, so a 401 on any call anywhere
// leaves the store anonymous.
func NewStore(gw *gateway.Client) *Store {
	s := &Store{gw: gw}
	gw.OnUnauthorized(s.reset)
	return s
}

// Init derives the session from the persisted credential. A held token that
// fails the profile fetch is cleared; no token means anonymous from the
// start.
func (s *Store) Init(ctx context.Context) {
	if !s.gw.HasToken() {
		return
	}
	ident, err := s.gw.Profile(ctx)
	if err != nil {
		log.Printf("[session] failed to load profile: %v", err)
		// A 401 already cleared the token; clear again for any other
		// failure so presence keeps implying "possibly authenticated".
		if err := s.gw.ClearToken(); err != nil {
			log.Printf("[session] failed to clear credential: %v", err)
		}
		s.reset()
		return
	}
	s.mu.Lock()
	s.current = ident
	s.mu.Unlock()
	log.Printf("[session] restored session for %s", ident.Email)
}

// Login authenticates against the server. On success the returned token is
// persisted and the identity is constructed from the response fields; on
// failure the store stays anonymous.
func (s *Store) Login(ctx context.Context, email, password string) (identity.Identity, error) {
	if email == "" || password == "" {
		return identity.Identity{}, ErrMissingCredentials
	}
	resp, err := s.gw.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) || gateway.IsStatus(err, 401) {
			return identity.Identity{}, ErrLoginFailed
		}
		return identity.Identity{}, fmt.Errorf("login: %w", err)
	}
	if err := s.gw.SetToken(resp.Token); err != nil {
		return identity.Identity{}, err
	}
	ident := identity.Identity{
		ID:    resp.ID,
		Name:  resp.Name,
		Email: resp.Email,
		Role:  resp.Role,
	}
	s.mu.Lock()
	s.current = &ident
	s.mu.Unlock()
	return ident, nil
}

// Register creates an account. It is stateless relative to the store:
// success or failure never changes the session or the token.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	if name == "" {
		return ErrMissingName
	}
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	return s.gw.Register(ctx, name, email, password)
}

// Logout clears the token and moves the store to anonymous.
func (s *Store) Logout() error {
	err := s.gw.ClearToken()
	s.reset()
	return err
}

// Current returns the identity and whether the store is authenticated.
func (s *Store) Current() (identity.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return identity.Identity{}, false
	}
	return *s.current, true
}

func (s *Store) reset() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
