package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"civicpulse-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	mu      sync.Mutex
	changes chan Change

	signUpErr  error
	signInErr  error
	signOutErr error

	signedUp  []string
	signedOut int
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{changes: make(chan Change, 8)}
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string, data SignUpData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signUpErr != nil {
		return f.signUpErr
	}
	f.signedUp = append(f.signedUp, email)
	return nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) error {
	if f.signInErr != nil {
		return f.signInErr
	}
	f.changes <- Change{Event: SignedIn, Identity: &Identity{UserID: "u1", Email: email}}
	return nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signedOut++
	f.mu.Unlock()
	return f.signOutErr
}

func (f *fakeAuth) Changes() <-chan Change { return f.changes }

func staticFetcher(profile *models.Profile) ProfileFetcher {
	return func(ctx context.Context, userID string) (*models.Profile, error) {
		return profile, nil
	}
}

func waitFor(t *testing.T, s *Store, cond func(State) bool) State {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state := s.State()
		if cond(state) {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
	return State{}
}

func TestStoreStartsLoading(t *testing.T) {
	auth := newFakeAuth()
	s := NewStore(auth, staticFetcher(nil), nil)
	defer s.Close()

	assert.True(t, s.State().Loading)
	assert.Equal(t, Pending, Admit(s.State()))
}

func TestStorePopulatesProfileOnSignIn(t *testing.T) {
	auth := newFakeAuth()
	profile := &models.Profile{Username: "jordan", Role: models.RoleCitizen}
	s := NewStore(auth, staticFetcher(profile), nil)
	defer s.Close()

	require.NoError(t, s.SignIn(context.Background(), "jordan@example.com", "secret1"))

	state := waitFor(t, s, func(st State) bool { return !st.Loading && st.Profile != nil })
	require.NotNil(t, state.Identity)
	assert.Equal(t, "u1", state.Identity.UserID)
	assert.Equal(t, "jordan", state.Profile.Username)
	assert.Equal(t, Allow, Admit(state, models.RoleCitizen))
}

func TestStoreSignInFailure(t *testing.T) {
	auth := newFakeAuth()
	auth.signInErr = errors.New("bad password")
	s := NewStore(auth, staticFetcher(nil), nil)
	defer s.Close()

	err := s.SignIn(context.Background(), "jordan@example.com", "wrong")
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestStoreDiscardsStaleFetch(t *testing.T) {
	auth := newFakeAuth()
	release := make(chan struct{})
	fetch := func(ctx context.Context, userID string) (*models.Profile, error) {
		if userID == "slow" {
			<-release
			return &models.Profile{Username: "stale"}, nil
		}
		return &models.Profile{Username: "fresh"}, nil
	}
	s := NewStore(auth, fetch, nil)
	defer s.Close()

	auth.changes <- Change{Event: SignedIn, Identity: &Identity{UserID: "slow"}}
	auth.changes <- Change{Event: TokenRefreshed, Identity: &Identity{UserID: "fast"}}

	waitFor(t, s, func(st State) bool {
		return st.Profile != nil && st.Profile.Username == "fresh"
	})
	close(release)

	// The slow fetch lands after release but must not clobber the newer one.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "fresh", s.State().Profile.Username)
}

func TestStoreSignOutClearsStateEvenOnError(t *testing.T) {
	auth := newFakeAuth()
	auth.signOutErr = errors.New("network down")
	s := NewStore(auth, staticFetcher(&models.Profile{Username: "jordan"}), nil)
	defer s.Close()

	require.NoError(t, s.SignIn(context.Background(), "jordan@example.com", "secret1"))
	waitFor(t, s, func(st State) bool { return st.Profile != nil })

	s.SignOut(context.Background())

	state := s.State()
	assert.Nil(t, state.Identity)
	assert.Nil(t, state.Profile)
	assert.False(t, state.Loading)
	assert.Equal(t, RedirectToAuth, Admit(state))
	auth.mu.Lock()
	assert.Equal(t, 1, auth.signedOut)
	auth.mu.Unlock()
}

func TestStoreSignOutEvent(t *testing.T) {
	auth := newFakeAuth()
	s := NewStore(auth, staticFetcher(&models.Profile{Username: "jordan"}), nil)
	defer s.Close()

	auth.changes <- Change{Event: SignedIn, Identity: &Identity{UserID: "u1"}}
	waitFor(t, s, func(st State) bool { return st.Profile != nil })

	auth.changes <- Change{Event: SignedOut}
	state := waitFor(t, s, func(st State) bool { return st.Identity == nil && !st.Loading })
	assert.Nil(t, state.Profile)
}

func TestStoreSignUpValidation(t *testing.T) {
	auth := newFakeAuth()
	s := NewStore(auth, staticFetcher(nil), nil)
	defer s.Close()

	data := SignUpData{Username: "jordan", Role: models.RoleCitizen}

	err := s.SignUp(context.Background(), "not-an-email", "secret1", data)
	assert.ErrorIs(t, err, ErrRegistration)

	err = s.SignUp(context.Background(), "jordan@example.com", "short", data)
	assert.ErrorIs(t, err, ErrRegistration)

	err = s.SignUp(context.Background(), "jordan@example.com", "secret1", SignUpData{Role: "mayor"})
	assert.ErrorIs(t, err, ErrRegistration)

	require.NoError(t, s.SignUp(context.Background(), "jordan@example.com", "secret1", data))
	auth.mu.Lock()
	assert.Equal(t, []string{"jordan@example.com"}, auth.signedUp)
	auth.mu.Unlock()

	// Registration does not sign the user in.
	assert.Nil(t, s.State().Identity)
}

func TestStoreUpdateProfileRequiresIdentity(t *testing.T) {
	auth := newFakeAuth()
	s := NewStore(auth, staticFetcher(nil), func(ctx context.Context, userID string, updates models.ProfileUpdate) error {
		return nil
	})
	defer s.Close()

	username := "new_name"
	err := s.UpdateProfile(context.Background(), models.ProfileUpdate{Username: &username})
	assert.ErrorIs(t, err, ErrUpdate)
}

func TestStoreUpdateProfileMergesOptimistically(t *testing.T) {
	auth := newFakeAuth()
	var written models.ProfileUpdate
	write := func(ctx context.Context, userID string, updates models.ProfileUpdate) error {
		written = updates
		return nil
	}
	s := NewStore(auth, staticFetcher(&models.Profile{Username: "jordan", Role: models.RoleCitizen}), write)
	defer s.Close()

	require.NoError(t, s.SignIn(context.Background(), "jordan@example.com", "secret1"))
	waitFor(t, s, func(st State) bool { return st.Profile != nil })

	username := "jordan_v2"
	require.NoError(t, s.UpdateProfile(context.Background(), models.ProfileUpdate{Username: &username}))

	assert.Equal(t, "jordan_v2", s.State().Profile.Username)
	require.NotNil(t, written.Username)
	assert.Equal(t, "jordan_v2", *written.Username)
}

func TestStoreCloseStopsListening(t *testing.T) {
	auth := newFakeAuth()
	s := NewStore(auth, staticFetcher(&models.Profile{Username: "jordan"}), nil)
	s.Close()

	// Changes after Close must not panic or mutate state.
	select {
	case auth.changes <- Change{Event: SignedIn, Identity: &Identity{UserID: "u1"}}:
	default:
	}
	time.Sleep(20 * time.Millisecond)
	assert.Nil(t, s.State().Identity)
}
