// Package session holds the client's authentication state: who is logged in,
// persisted across process restarts, written only by login/logout and read by
// everything that needs an identity.
package session

import (
	"context"
	"sync"

	"parley/internal/models"
	"parley/internal/observability"
)

// Authenticator is the slice of the API client the store depends on.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	CreateAccount(ctx context.Context, creds models.Credentials) error
	Identity(ctx context.Context) (*models.User, error)
	SessionToken() string
	SetSessionToken(token string)
}

// Store is the single authoritative writer of the session. Components that
// need identity read through Current; only login/logout mutate.
type Store struct {
	mu      sync.RWMutex
	session models.Session
	api     Authenticator
	file    string
	log     *observability.Logger
}

// NewStore creates a logged-out store persisting to the given file path.
// An empty path disables persistence.
func NewStore(api Authenticator, file string) *Store {
	return &Store{
		session: models.LoggedOut(),
		api:     api,
		file:    file,
		log:     observability.GlobalLogger,
	}
}

// Current returns a copy of the session. The held user never carries a
// password, so handing out copies leaks nothing.
func (s *Store) Current() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Login exchanges credentials for a session and fetches the authenticated
// identity. On success the user's password field is scrubbed before the
// session is stored or persisted. A rejected login surfaces the server's
// error verbatim and leaves the store logged out.
func (s *Store) Login(ctx context.Context, creds models.Credentials) (models.Session, error) {
	// Arriving at login implies leaving any previous session behind.
	s.clear()

	if err := s.api.Login(ctx, creds); err != nil {
		return models.LoggedOut(), err
	}

	user, err := s.api.Identity(ctx)
	if err != nil {
		return models.LoggedOut(), err
	}
	user.Password = ""

	s.mu.Lock()
	s.session = models.Session{User: user, IsAuthenticated: true}
	current := s.session
	s.mu.Unlock()

	if err := s.persist(); err != nil {
		s.log.Warn("could not persist session", "error", err)
	}
	s.log.Info("logged in", "user", user.Username, "admin", user.IsAdmin == 1)
	return current, nil
}

// CreateAccount registers the credentials and then logs in with them.
func (s *Store) CreateAccount(ctx context.Context, creds models.Credentials) (models.Session, error) {
	if err := s.api.CreateAccount(ctx, creds); err != nil {
		return models.LoggedOut(), err
	}
	return s.Login(ctx, creds)
}

// Logout clears the local session unconditionally and asks the server to
// invalidate its side. A failed invalidation is logged, not surfaced: the
// local state is already gone, and calling Logout twice is not an error.
func (s *Store) Logout(ctx context.Context) {
	hadToken := s.api.SessionToken() != ""
	s.clear()
	if hadToken {
		if err := s.api.Logout(ctx); err != nil {
			s.log.Warn("server-side logout failed", "error", err)
		}
	}
	s.api.SetSessionToken("")
}

// ForceLogout clears local state without calling the server. It is the
// auth-expired hook the API client fires on any 401: by the time the server
// says the session is invalid there is nothing left to invalidate.
func (s *Store) ForceLogout() {
	s.clear()
	s.api.SetSessionToken("")
	s.log.Info("session expired, logged out")
}

// Restore reconstitutes the session from durable storage at process start.
// With no (or unreadable) prior session the store stays logged out.
func (s *Store) Restore() models.Session {
	state, err := s.load()
	if err != nil || state == nil || state.User == nil || state.Token == "" {
		return s.Current()
	}

	state.User.Password = ""
	s.mu.Lock()
	s.session = models.Session{User: state.User, IsAuthenticated: true}
	current := s.session
	s.mu.Unlock()
	s.api.SetSessionToken(state.Token)
	return current
}

func (s *Store) clear() {
	s.mu.Lock()
	s.session = models.LoggedOut()
	s.mu.Unlock()
	if err := s.discard(); err != nil {
		s.log.Warn("could not remove persisted session", "error", err)
	}
}
