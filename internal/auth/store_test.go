package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindweek/internal/identity"
	"mindweek/internal/kvstore"
	"mindweek/internal/profile"
)

type fakeIdentity struct {
	identity.Broadcaster

	mu           sync.Mutex
	signInCalls  int
	signUpCalls  int
	signOutCalls int

	signInErr  error
	signUpErr  error
	signOutErr error

	// blockSignIn, when non-nil, makes SignIn wait until the channel
	// is closed. Used to hold an operation in flight.
	blockSignIn chan struct{}

	displayName string
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*identity.Identity, error) {
	f.mu.Lock()
	f.signInCalls++
	block := f.blockSignIn
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &identity.Identity{
		UserID:      "u1",
		Email:       email,
		DisplayName: f.displayName,
	}, nil
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (*identity.Identity, error) {
	f.mu.Lock()
	f.signUpCalls++
	f.mu.Unlock()

	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &identity.Identity{UserID: "u2", Email: email}, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	f.mu.Unlock()
	return f.signOutErr
}

func (f *fakeIdentity) calls() (signIn, signUp, signOut int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signInCalls, f.signUpCalls, f.signOutCalls
}

type fakeProfiles struct {
	mu     sync.Mutex
	writes []profile.Record
	err    error
}

func (f *fakeProfiles) WriteProfile(ctx context.Context, userID string, rec profile.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.writes = append(f.writes, rec)
	return nil
}

func newTestStore(t *testing.T, ident *fakeIdentity, kv *kvstore.Memory, profiles *fakeProfiles) *Store {
	t.Helper()

	if ident == nil {
		ident = &fakeIdentity{}
	}
	if kv == nil {
		kv = kvstore.NewMemory()
	}
	if profiles == nil {
		profiles = &fakeProfiles{}
	}

	s := NewStore(ident, kv, profiles)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(s.Close)
	return s
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success establishes session and mirrors storage", func(t *testing.T) {
		kv := kvstore.NewMemory()
		s := newTestStore(t, nil, kv, nil)

		sess, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err)

		assert.Equal(t, "a@b.com", sess.Email)
		assert.Equal(t, "a", sess.DisplayName, "display name defaults to email local part")

		snap := s.Snapshot()
		assert.True(t, snap.Authenticated)
		assert.Equal(t, "a@b.com", snap.User.Email)
		assert.False(t, snap.Loading)

		flag, err := kv.Get(ctx, keyAuthenticated)
		require.NoError(t, err)
		assert.Equal(t, "true", flag)

		payload, err := kv.Get(ctx, keySession)
		require.NoError(t, err)
		stored, err := decodeSession(payload)
		require.NoError(t, err)
		assert.Equal(t, sess, stored)
	})

	t.Run("backend display name wins over email default", func(t *testing.T) {
		ident := &fakeIdentity{displayName: "Alice"}
		s := newTestStore(t, ident, nil, nil)

		sess, err := s.Login(ctx, "alice@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "Alice", sess.DisplayName)
	})

	t.Run("empty input fails validation before any collaborator call", func(t *testing.T) {
		ident := &fakeIdentity{}
		s := newTestStore(t, ident, nil, nil)

		_, err := s.Login(ctx, "", "secret")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "email", verr.Field)

		_, err = s.Login(ctx, "a@b.com", "")
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "password", verr.Field)

		signIn, _, _ := ident.calls()
		assert.Zero(t, signIn)
		assert.False(t, s.Snapshot().Authenticated)
	})

	t.Run("backend rejection surfaces reason and leaves state unchanged", func(t *testing.T) {
		ident := &fakeIdentity{
			signInErr: identity.NewError(identity.ReasonWrongPassword, nil),
		}
		kv := kvstore.NewMemory()
		s := newTestStore(t, ident, kv, nil)

		_, err := s.Login(ctx, "a@b.com", "nope")
		var iderr *identity.Error
		require.ErrorAs(t, err, &iderr)
		assert.Equal(t, identity.ReasonWrongPassword, iderr.Reason)

		assert.False(t, s.Snapshot().Authenticated)
		assert.Zero(t, kv.Len())
	})

	t.Run("raw backend errors are wrapped, never passed through", func(t *testing.T) {
		ident := &fakeIdentity{signInErr: errors.New("pq: connection refused")}
		s := newTestStore(t, ident, nil, nil)

		_, err := s.Login(ctx, "a@b.com", "secret")
		var iderr *identity.Error
		require.ErrorAs(t, err, &iderr)
		assert.Equal(t, identity.ReasonUnknown, iderr.Reason)
		assert.NotContains(t, iderr.Message(), "pq:")
	})

	t.Run("rejected while already authenticated", func(t *testing.T) {
		s := newTestStore(t, nil, nil, nil)

		_, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err)

		_, err = s.Login(ctx, "a@b.com", "secret")
		var serr *StateError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, StateErrAlreadyAuthenticated, serr.Kind)
	})

	t.Run("second call rejected while first is in flight", func(t *testing.T) {
		block := make(chan struct{})
		ident := &fakeIdentity{blockSignIn: block}
		s := newTestStore(t, ident, nil, nil)

		done := make(chan error, 1)
		go func() {
			_, err := s.Login(ctx, "a@b.com", "secret")
			done <- err
		}()

		// Wait for the first login to reach the backend.
		require.Eventually(t, func() bool {
			signIn, _, _ := ident.calls()
			return signIn == 1
		}, time.Second, time.Millisecond)

		assert.True(t, s.Snapshot().Loading)

		_, err := s.Login(ctx, "a@b.com", "secret")
		var serr *StateError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, StateErrInFlight, serr.Kind)

		close(block)
		require.NoError(t, <-done)
		assert.True(t, s.Snapshot().Authenticated)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("short password fails validation without a collaborator call", func(t *testing.T) {
		ident := &fakeIdentity{}
		s := newTestStore(t, ident, nil, nil)

		_, _, err := s.Register(ctx, "Jo", "jo@x.com", "abcde")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "password", verr.Field)

		_, signUp, _ := ident.calls()
		assert.Zero(t, signUp)
	})

	t.Run("explicit name wins over email-derived default", func(t *testing.T) {
		profiles := &fakeProfiles{}
		s := newTestStore(t, nil, nil, profiles)

		sess, warning, err := s.Register(ctx, "Jo", "jo@x.com", "abcdef")
		require.NoError(t, err)
		require.Nil(t, warning)

		assert.Equal(t, "u2", sess.UserID)
		assert.Equal(t, "Jo", sess.DisplayName)
		assert.True(t, s.Snapshot().Authenticated)

		require.Len(t, profiles.writes, 1)
		assert.Equal(t, "Jo", profiles.writes[0].Name)
		assert.Equal(t, "jo@x.com", profiles.writes[0].Email)
	})

	t.Run("profile write failure does not roll back authentication", func(t *testing.T) {
		profiles := &fakeProfiles{err: errors.New("firestore unavailable")}
		s := newTestStore(t, nil, nil, profiles)

		sess, warning, err := s.Register(ctx, "Jo", "jo@x.com", "abcdef")
		require.NoError(t, err)
		require.NotNil(t, sess)

		require.NotNil(t, warning)
		assert.Equal(t, "register", warning.Op)
		assert.True(t, s.Snapshot().Authenticated)
	})

	t.Run("email already in use", func(t *testing.T) {
		ident := &fakeIdentity{
			signUpErr: identity.NewError(identity.ReasonEmailInUse, nil),
		}
		s := newTestStore(t, ident, nil, nil)

		_, _, err := s.Register(ctx, "Jo", "jo@x.com", "abcdef")
		var iderr *identity.Error
		require.ErrorAs(t, err, &iderr)
		assert.Equal(t, identity.ReasonEmailInUse, iderr.Reason)
		assert.False(t, s.Snapshot().Authenticated)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("success clears state and both persisted entries", func(t *testing.T) {
		kv := kvstore.NewMemory()
		s := newTestStore(t, nil, kv, nil)

		_, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err)
		require.NotZero(t, kv.Len())

		require.NoError(t, s.Logout(ctx))

		assert.False(t, s.Snapshot().Authenticated)
		assert.Nil(t, s.Snapshot().User)
		assert.Zero(t, kv.Len(), "no persisted session entries remain")
	})

	t.Run("backend failure leaves local state untouched", func(t *testing.T) {
		ident := &fakeIdentity{
			signOutErr: identity.NewError(identity.ReasonNetwork, nil),
		}
		kv := kvstore.NewMemory()
		s := newTestStore(t, ident, kv, nil)

		_, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err)
		entries := kv.Len()

		err = s.Logout(ctx)
		var iderr *identity.Error
		require.ErrorAs(t, err, &iderr)
		assert.Equal(t, identity.ReasonNetwork, iderr.Reason)

		assert.True(t, s.Snapshot().Authenticated, "reject-on-uncertainty keeps the session")
		assert.Equal(t, entries, kv.Len())
	})

	t.Run("no-op while already signed out", func(t *testing.T) {
		ident := &fakeIdentity{}
		s := newTestStore(t, ident, nil, nil)

		require.NoError(t, s.Logout(ctx))

		_, _, signOut := ident.calls()
		assert.Zero(t, signOut)
	})
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("rehydrates persisted session", func(t *testing.T) {
		kv := kvstore.NewMemory()
		payload, err := encodeSession(&Session{
			UserID:      "u1",
			Email:       "a@b.com",
			DisplayName: "a",
		})
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, keySession, payload))
		require.NoError(t, kv.Set(ctx, keyAuthenticated, "true"))

		s := newTestStore(t, nil, kv, nil)

		snap := s.Snapshot()
		assert.True(t, snap.Authenticated)
		assert.Equal(t, "a@b.com", snap.User.Email)
		assert.False(t, snap.Loading)
	})

	t.Run("missing authenticated flag means signed out", func(t *testing.T) {
		kv := kvstore.NewMemory()
		payload, err := encodeSession(&Session{UserID: "u1", Email: "a@b.com"})
		require.NoError(t, err)
		require.NoError(t, kv.Set(ctx, keySession, payload))

		s := newTestStore(t, nil, kv, nil)
		assert.False(t, s.Snapshot().Authenticated)
	})

	t.Run("corrupt payload is discarded", func(t *testing.T) {
		kv := kvstore.NewMemory()
		require.NoError(t, kv.Set(ctx, keySession, "{not json"))
		require.NoError(t, kv.Set(ctx, keyAuthenticated, "true"))

		s := newTestStore(t, nil, kv, nil)
		assert.False(t, s.Snapshot().Authenticated)
	})

	t.Run("operations rejected before initialization", func(t *testing.T) {
		s := NewStore(&fakeIdentity{}, kvstore.NewMemory(), &fakeProfiles{})

		_, err := s.Login(ctx, "a@b.com", "secret")
		var serr *StateError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, StateErrInitializing, serr.Kind)

		assert.True(t, s.Snapshot().Loading)
	})

	t.Run("second initialize is rejected", func(t *testing.T) {
		s := newTestStore(t, nil, nil, nil)

		err := s.Initialize(ctx)
		var serr *StateError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, StateErrAlreadyInitialized, serr.Kind)
	})
}

func TestAuthStateNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("backend sign-out clears the session", func(t *testing.T) {
		ident := &fakeIdentity{}
		kv := kvstore.NewMemory()
		s := newTestStore(t, ident, kv, nil)

		_, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err)

		ident.Publish(nil)

		require.Eventually(t, func() bool {
			return !s.Snapshot().Authenticated
		}, time.Second, time.Millisecond)
		assert.Zero(t, kv.Len())
	})

	t.Run("backend identity refresh re-mirrors the session", func(t *testing.T) {
		ident := &fakeIdentity{}
		kv := kvstore.NewMemory()
		s := newTestStore(t, ident, kv, nil)

		ident.Publish(&identity.Identity{UserID: "u9", Email: "ext@b.com"})

		require.Eventually(t, func() bool {
			snap := s.Snapshot()
			return snap.Authenticated && snap.User.UserID == "u9"
		}, time.Second, time.Millisecond)

		flag, err := kv.Get(ctx, keyAuthenticated)
		require.NoError(t, err)
		assert.Equal(t, "true", flag)
	})
}

func TestWatch(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers snapshots on transitions", func(t *testing.T) {
		s := newTestStore(t, nil, nil, nil)

		updates, unsubscribe := s.Watch()
		defer unsubscribe()

		_, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err)

		var saw bool
		deadline := time.After(time.Second)
		for !saw {
			select {
			case snap := <-updates:
				saw = snap.Authenticated
			case <-deadline:
				t.Fatal("no authenticated snapshot delivered")
			}
		}
	})

	t.Run("no delivery after unsubscribe", func(t *testing.T) {
		s := newTestStore(t, nil, nil, nil)

		updates, unsubscribe := s.Watch()
		unsubscribe()

		_, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err)

		// Channel is closed on unsubscribe; only the zero value may
		// be read afterwards.
		snap, ok := <-updates
		assert.False(t, ok)
		assert.False(t, snap.Authenticated)
	})

	t.Run("unsubscribe twice is safe", func(t *testing.T) {
		s := newTestStore(t, nil, nil, nil)

		_, unsubscribe := s.Watch()
		unsubscribe()
		unsubscribe()
	})
}

func TestPersistenceWarnings(t *testing.T) {
	ctx := context.Background()

	t.Run("mirror failure completes the transition and warns", func(t *testing.T) {
		kv := kvstore.NewMemory()
		s := newTestStore(t, nil, kv, nil)

		kv.FailWrites = errors.New("disk full")

		sess, err := s.Login(ctx, "a@b.com", "secret")
		require.NoError(t, err, "persistence failure must not fail the login")
		require.NotNil(t, sess)
		assert.True(t, s.Snapshot().Authenticated)

		select {
		case w := <-s.Warnings():
			assert.Equal(t, "login", w.Op)
		case <-time.After(time.Second):
			t.Fatal("expected a persistence warning")
		}
	})
}
