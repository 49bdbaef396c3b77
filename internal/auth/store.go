// Package auth owns the authenticated-user state for the process: who
// is signed in, mediation between callers and the identity backend,
// and the persisted mirror that survives restarts.
package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"mindweek/internal/identity"
	"mindweek/internal/kvstore"
	"mindweek/internal/logger"
	"mindweek/internal/profile"
)

type State int

const (
	Initializing State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "invalid"
	}
}

// Snapshot is the read-only view published to the presentation layer.
type Snapshot struct {
	User          *Session
	Authenticated bool
	Loading       bool
}

// Store is the single source of truth for the session. All mutation
// goes through its operations; at most one operation runs at a time.
type Store struct {
	identity identity.Service
	kv       kvstore.Store
	profiles profile.Writer

	mu       sync.Mutex
	state    State
	user     *Session
	inFlight bool
	closed   bool

	watchers    map[int]chan Snapshot
	nextWatcher int

	warnings chan Warning

	stopPump func()
}

func NewStore(
	idsvc identity.Service,
	kv kvstore.Store,
	profiles profile.Writer,
) *Store {
	return &Store{
		identity: idsvc,
		kv:       kv,
		profiles: profiles,
		state:    Initializing,
		watchers: make(map[int]chan Snapshot),
		warnings: make(chan Warning, 16),
	}
}

// Initialize rehydrates any persisted session and starts listening
// for identity-state notifications. It must run exactly once, before
// the store serves its first caller.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.state != Initializing {
		s.mu.Unlock()
		return &StateError{Kind: StateErrAlreadyInitialized}
	}
	s.mu.Unlock()

	user, authenticated := s.rehydrate(ctx)

	events, unsubscribe := s.identity.AuthStateChanges()

	s.mu.Lock()
	s.user = user
	if authenticated {
		s.state = Authenticated
	} else {
		s.state = Unauthenticated
	}
	s.stopPump = unsubscribe
	s.notifyLocked()
	s.mu.Unlock()

	go s.pump(events)

	logger.Info("session store ready", map[string]any{
		"state": s.StateNow().String(),
	})

	return nil
}

func (s *Store) rehydrate(ctx context.Context) (*Session, bool) {
	payload, err := s.kv.Get(ctx, keySession)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.warn("initialize", err)
		return nil, false
	}

	flag, err := s.kv.Get(ctx, keyAuthenticated)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		s.warn("initialize", err)
	}
	if flag != "true" {
		return nil, false
	}

	sess, err := decodeSession(payload)
	if err != nil {
		s.warn("initialize", err)
		return nil, false
	}

	return sess, true
}

// Login verifies credentials through the identity backend and
// establishes the session.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "must not be empty"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "must not be empty"}
	}

	if err := s.begin(true); err != nil {
		return nil, err
	}
	defer s.end()

	ident, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, asAuthError(err)
	}

	sess := sessionFromIdentity(ident, "")
	s.establish(ctx, "login", sess)

	return sess, nil
}

// Register creates the account, establishes the session, and writes
// the profile record best-effort. A profile-write failure comes back
// as a non-nil Warning and never rolls back authentication.
func (s *Store) Register(ctx context.Context, name, email, password string) (*Session, *Warning, error) {
	if name == "" {
		return nil, nil, &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if email == "" {
		return nil, nil, &ValidationError{Field: "email", Message: "must not be empty"}
	}
	if password == "" {
		return nil, nil, &ValidationError{Field: "password", Message: "must not be empty"}
	}
	if len(password) < 6 {
		return nil, nil, &ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	if err := s.begin(true); err != nil {
		return nil, nil, err
	}
	defer s.end()

	ident, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, nil, asAuthError(err)
	}

	sess := sessionFromIdentity(ident, name)
	s.establish(ctx, "register", sess)

	var warning *Warning
	if err := s.profiles.WriteProfile(ctx, sess.UserID, profile.Record{
		Name:      sess.DisplayName,
		Email:     sess.Email,
		CreatedAt: time.Now(),
	}); err != nil {
		s.warn("register", err)
		warning = &Warning{Op: "register", Err: err}
	}

	return sess, warning, nil
}

// Logout signs out of the identity backend first. If that call fails
// the local session is left untouched so local and remote state never
// diverge. Logging out while already unauthenticated is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.begin(false); err != nil {
		return err
	}
	defer s.end()

	s.mu.Lock()
	alreadyOut := s.state == Unauthenticated
	s.mu.Unlock()

	if alreadyOut {
		return nil
	}

	if err := s.identity.SignOut(ctx); err != nil {
		return asAuthError(err)
	}

	s.clear(ctx, "logout")
	return nil
}

// Snapshot returns the current published view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// StateNow returns the state-machine position.
func (s *Store) StateNow() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Watch subscribes to snapshot updates. The returned func
// unsubscribes; no delivery happens after it returns.
func (s *Store) Watch() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextWatcher
	s.nextWatcher++

	ch := make(chan Snapshot, 8)
	s.watchers[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[id]; ok {
			delete(s.watchers, id)
			close(ch)
		}
	}

	return ch, unsubscribe
}

// Warnings exposes non-fatal persistence and profile-write failures.
func (s *Store) Warnings() <-chan Warning {
	return s.warnings
}

// Close stops the identity-event pump and tears down all watchers.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stopPump
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// begin takes the in-flight guard. mustBeSignedOut additionally
// rejects login/register attempts while a session is already held.
func (s *Store) begin(mustBeSignedOut bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Initializing {
		return &StateError{Kind: StateErrInitializing}
	}
	if s.inFlight {
		return &StateError{Kind: StateErrInFlight}
	}
	if mustBeSignedOut && s.state == Authenticated {
		return &StateError{Kind: StateErrAlreadyAuthenticated}
	}

	s.inFlight = true
	s.notifyLocked()
	return nil
}

func (s *Store) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false
	s.notifyLocked()
}

// establish commits the session in memory, then mirrors it into the
// key-value store. Mirror failures are warnings, not rollbacks.
func (s *Store) establish(ctx context.Context, op string, sess *Session) {
	s.mu.Lock()
	s.user = sess
	s.state = Authenticated
	s.notifyLocked()
	s.mu.Unlock()

	s.mirror(ctx, op, sess)
}

func (s *Store) mirror(ctx context.Context, op string, sess *Session) {
	payload, err := encodeSession(sess)
	if err != nil {
		s.warn(op, err)
		return
	}

	if err := s.kv.Set(ctx, keySession, payload); err != nil {
		s.warn(op, err)
	}
	if err := s.kv.Set(ctx, keyAuthenticated, "true"); err != nil {
		s.warn(op, err)
	}
}

// clear drops the in-memory session and removes both mirrored keys.
func (s *Store) clear(ctx context.Context, op string) {
	s.mu.Lock()
	s.user = nil
	s.state = Unauthenticated
	s.notifyLocked()
	s.mu.Unlock()

	if err := s.kv.Remove(ctx, keySession); err != nil {
		s.warn(op, err)
	}
	if err := s.kv.Remove(ctx, keyAuthenticated); err != nil {
		s.warn(op, err)
	}
}

// pump applies identity-state notifications pushed by the backend.
// It exits when the subscription channel closes.
func (s *Store) pump(events <-chan *identity.Identity) {
	for ident := range events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		if ident == nil {
			s.mu.Lock()
			signedIn := s.state == Authenticated
			s.mu.Unlock()

			if signedIn {
				logger.Info("identity backend reported sign-out", nil)
				s.clear(ctx, "auth-state-change")
			}
		} else {
			s.mu.Lock()
			explicitName := ""
			if s.user != nil && s.user.UserID == ident.UserID {
				explicitName = s.user.DisplayName
			}
			s.mu.Unlock()

			sess := sessionFromIdentity(ident, explicitName)
			s.establish(ctx, "auth-state-change", sess)
		}

		cancel()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Authenticated: s.state == Authenticated,
		Loading:       s.state == Initializing || s.inFlight,
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Store) warn(op string, err error) {
	logger.Warn("non-fatal persistence failure", map[string]any{
		"op":    op,
		"error": err.Error(),
	})

	select {
	case s.warnings <- Warning{Op: op, Err: err}:
	default:
	}
}

// asAuthError guarantees callers only ever see the closed identity
// error type, never raw backend internals.
func asAuthError(err error) error {
	var iderr *identity.Error
	if errors.As(err, &iderr) {
		return iderr
	}
	return identity.NewError(identity.ReasonUnknown, err)
}
