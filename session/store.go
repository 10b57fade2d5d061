package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"time"

	"civicpulse-be/models"

	"github.com/sirupsen/logrus"
)

var (
	// ErrAuthentication is returned by SignIn on bad credentials.
	ErrAuthentication = errors.New("invalid credentials")
	// ErrRegistration is returned by SignUp on validation failure or a
	// duplicate account.
	ErrRegistration = errors.New("registration rejected")
	// ErrUpdate is returned by UpdateProfile when no identity is active or
	// the backing write is rejected.
	ErrUpdate = errors.New("profile update rejected")
)

// AuthEvent names an identity-change notification from the auth collaborator.
type AuthEvent string

const (
	SignedIn       AuthEvent = "SIGNED_IN"
	SignedOut      AuthEvent = "SIGNED_OUT"
	TokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// Identity is the authenticated principal as reported by the auth
// collaborator.
type Identity struct {
	UserID string
	Email  string
}

// Change is one identity-change notification. A nil Identity means the
// session ended.
type Change struct {
	Event    AuthEvent
	Identity *Identity
}

// SignUpData carries the profile fields fixed at registration time.
type SignUpData struct {
	Username string
	FullName string
	Role     models.UserRole
}

// Authenticator is the external auth collaborator, specified at its
// interface only.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string, data SignUpData) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	// Changes yields identity-change notifications for the lifetime of the
	// collaborator.
	Changes() <-chan Change
}

// ProfileFetcher loads exactly one profile row for an identity.
type ProfileFetcher func(ctx context.Context, userID string) (*models.Profile, error)

// ProfileWriter persists a partial profile update for an identity.
type ProfileWriter func(ctx context.Context, userID string, updates models.ProfileUpdate) error

// State is the session snapshot a view renders from. Loading is true from
// construction until the first identity-change notification settles.
type State struct {
	Identity *Identity
	Profile  *models.Profile
	Loading  bool
}

// Store maintains {identity, profile, loading} for one client session. It is
// explicitly constructed and owns its subscription to the auth collaborator;
// Close releases it. Profile fetches triggered by superseded identity
// changes are discarded on arrival rather than applied.
type Store struct {
	auth  Authenticator
	fetch ProfileFetcher
	write ProfileWriter

	mu    sync.RWMutex
	state State
	gen   uint64

	done chan struct{}
	wg   sync.WaitGroup
}

// NewStore builds a session store and starts listening for identity changes.
// The caller must Close it when the owning scope is torn down.
func NewStore(auth Authenticator, fetch ProfileFetcher, write ProfileWriter) *Store {
	s := &Store{
		auth:  auth,
		fetch: fetch,
		write: write,
		state: State{Loading: true},
		done:  make(chan struct{}),
	}
	s.wg.Add(1)
	go s.listen()
	return s
}

// Close tears down the subscription. Any in-flight profile fetch completes
// but its result is discarded.
func (s *Store) Close() {
	s.mu.Lock()
	s.gen++
	s.mu.Unlock()
	close(s.done)
	s.wg.Wait()
}

// State returns a copy of the current session state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) listen() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case change, ok := <-s.auth.Changes():
			if !ok {
				return
			}
			s.handleChange(change)
		}
	}
}

func (s *Store) handleChange(change Change) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state.Identity = change.Identity

	if change.Identity == nil {
		s.state.Profile = nil
		s.state.Loading = false
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	userID := change.Identity.UserID
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		profile, err := s.fetch(ctx, userID)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			// A newer identity change arrived while fetching; stale result.
			return
		}
		if err != nil {
			logrus.Warnf("Profile fetch failed for %s: %v", userID, err)
		} else {
			s.state.Profile = profile
		}
		s.state.Loading = false
	}()
}

// SignUp registers a new account. On success the account stays
// unauthenticated pending email verification.
func (s *Store) SignUp(ctx context.Context, email, password string, data SignUpData) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: malformed email", ErrRegistration)
	}
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrRegistration)
	}
	if data.Role != "" && !data.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrRegistration, data.Role)
	}
	if err := s.auth.SignUp(ctx, email, password, data); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistration, err)
	}
	logrus.Info("Registration successful; verification email sent")
	return nil
}

// SignIn authenticates with the collaborator. Identity and profile are
// populated asynchronously through the change subscription; callers must not
// assume the profile is set when this returns.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	if err := s.auth.SignIn(ctx, email, password); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	logrus.Info("Signed in")
	return nil
}

// SignOut clears the session unconditionally. Collaborator errors are
// surfaced as a local notice, never returned.
func (s *Store) SignOut(ctx context.Context) {
	if err := s.auth.SignOut(ctx); err != nil {
		logrus.Warnf("Sign out notification failed: %v", err)
	}

	s.mu.Lock()
	s.gen++
	s.state.Identity = nil
	s.state.Profile = nil
	s.state.Loading = false
	s.mu.Unlock()
}

// UpdateProfile persists a partial edit and merges it into local state
// optimistically, without a re-fetch.
func (s *Store) UpdateProfile(ctx context.Context, updates models.ProfileUpdate) error {
	s.mu.RLock()
	identity := s.state.Identity
	s.mu.RUnlock()

	if identity == nil {
		return fmt.Errorf("%w: no active identity", ErrUpdate)
	}
	if err := s.write(ctx, identity.UserID, updates); err != nil {
		return fmt.Errorf("%w: %v", ErrUpdate, err)
	}

	s.mu.Lock()
	if s.state.Profile != nil {
		updates.ApplyTo(s.state.Profile)
	}
	s.mu.Unlock()
	return nil
}
