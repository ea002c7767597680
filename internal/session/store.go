package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	gosync "sync"

	"github.com/nhle/task-tracker/internal/api"
	"github.com/nhle/task-tracker/internal/credential"
	"github.com/nhle/task-tracker/internal/model"
)

// AuthAPI is the part of the remote API the session needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	Register(ctx context.Context, reg api.Registration) error
	MeWithToken(ctx context.Context, token string) (*model.User, error)
	SetToken(token string)
	ClearToken()
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	User    *model.User
	Token   string
	Loading bool
}

// Authenticated reports whether a token is held.
func (s Snapshot) Authenticated() bool { return s.Token != "" }

// Store owns the authentication token and the current user. It is the only
// writer of the persisted credential slot.
type Store struct {
	api   AuthAPI
	creds credential.Provider

	mu           gosync.RWMutex
	user         *model.User
	token        string
	loading      bool
	bootstrapped bool
}

// New creates a session store. It starts in the loading state until
// Bootstrap has run.
func New(a AuthAPI, creds credential.Provider) *Store {
	return &Store{
		api:     a,
		creds:   creds,
		loading: true,
	}
}

// State returns a copy of the current session.
func (s *Store) State() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Token: s.token, Loading: s.loading}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Bootstrap validates the persisted token against the identity endpoint.
// It runs once; later calls return immediately. A rejected token is
// removed from storage. Loading is false when Bootstrap returns.
func (s *Store) Bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.bootstrapped {
		s.mu.Unlock()
		return
	}
	s.bootstrapped = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	stored, err := s.creds.Get()
	if err != nil {
		if !errors.Is(err, credential.ErrNotFound) {
			log.Printf("session: reading stored token: %v", err)
		}
		return
	}

	s.mu.Lock()
	s.token = stored
	s.mu.Unlock()
	s.api.SetToken(stored)

	user, err := s.api.MeWithToken(ctx, stored)
	if err != nil {
		log.Printf("session: stored token rejected: %v", err)
		s.drop()
		return
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// Login authenticates with email and password. When the response carries
// no identity, the identity endpoint is queried with the new token before
// anything is persisted; if that fails the login fails.
func (s *Store) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		log.Printf("session: login failed: %v", err)
		return &AuthError{Message: api.MessageOr(err, LoginFailedMessage), Err: err}
	}
	if resp.AccessToken == "" {
		return &AuthError{Message: LoginFailedMessage, Err: ErrNoAccessToken}
	}

	user := resp.User
	if user == nil {
		user, err = s.api.MeWithToken(ctx, resp.AccessToken)
		if err != nil {
			log.Printf("session: identity lookup after login failed: %v", err)
			return &AuthError{Message: api.MessageOr(err, LoginFailedMessage), Err: err}
		}
	}

	if err := s.creds.Set(resp.AccessToken); err != nil {
		return &AuthError{Message: LoginFailedMessage, Err: fmt.Errorf("persisting token: %w", err)}
	}
	s.api.SetToken(resp.AccessToken)

	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = user
	s.mu.Unlock()

	return nil
}

// Register creates an account and then logs in with the same credentials.
// A rejected registration returns *RegistrationError without attempting
// the login; a failed auto-login returns the login's *AuthError.
func (s *Store) Register(ctx context.Context, email, password, name string) error {
	err := s.api.Register(ctx, api.Registration{Email: email, Password: password, Name: name})
	if err != nil {
		log.Printf("session: registration failed: %v", err)
		return &RegistrationError{Message: api.MessageOr(err, RegistrationFailedMessage), Err: err}
	}

	return s.Login(ctx, email, password)
}

// Logout forgets the session locally. It makes no network call.
func (s *Store) Logout() {
	s.drop()
}

// drop clears the persisted token, the client's default credential and
// the in-memory session.
func (s *Store) drop() {
	if err := s.creds.Clear(); err != nil {
		log.Printf("session: clearing stored token: %v", err)
	}
	s.api.ClearToken()

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()
}
