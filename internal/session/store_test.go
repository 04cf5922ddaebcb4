package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"codeberg.org/edtech/portal/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var student = &User{ID: "u-1", Name: "Ada", Email: "ada@example.com", Role: routes.RoleStudent, Grade: "5"}

type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	user       *User
	loginErr   error
	userErrs   []error
	logoutErr  error
	refreshErr error

	// when set, the named call blocks until the channel is closed
	gates   map[string]chan struct{}
	entered chan string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:   make(map[string]int),
		user:    student,
		gates:   make(map[string]chan struct{}),
		entered: make(chan string, 16),
	}
}

func (f *fakeBackend) enter(ctx context.Context, name string) error {
	f.mu.Lock()
	f.calls[name]++
	gate := f.gates[name]
	f.mu.Unlock()

	select {
	case f.entered <- name:
	default:
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (f *fakeBackend) block(name string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()

	gate := make(chan struct{})
	f.gates[name] = gate
	return gate
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Login(ctx context.Context, _ Credentials) (*User, error) {
	if err := f.enter(ctx, "login"); err != nil {
		return nil, err
	}

	if f.loginErr != nil {
		return nil, f.loginErr
	}

	return f.user, nil
}

func (f *fakeBackend) Register(ctx context.Context, _ Registration) (*RegisterResult, error) {
	if err := f.enter(ctx, "register"); err != nil {
		return nil, err
	}

	return &RegisterResult{Message: "Signup successful. Please verify your email.", UserID: "u-2"}, nil
}

func (f *fakeBackend) VerifyEmail(ctx context.Context, _ string) (string, error) {
	if err := f.enter(ctx, "verify"); err != nil {
		return "", err
	}

	return "Email verified successfully. Please login to continue.", nil
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (*User, error) {
	if err := f.enter(ctx, "user"); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.userErrs) > 0 {
		err := f.userErrs[0]
		f.userErrs = f.userErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	return f.user, nil
}

func (f *fakeBackend) Logout(ctx context.Context) error {
	if err := f.enter(ctx, "logout"); err != nil {
		return err
	}

	return f.logoutErr
}

func (f *fakeBackend) Refresh(ctx context.Context) (*User, error) {
	if err := f.enter(ctx, "refresh"); err != nil {
		return nil, err
	}

	if f.refreshErr != nil {
		return nil, f.refreshErr
	}

	return f.user, nil
}

type memPersister struct {
	mu   sync.Mutex
	snap Snapshot
}

func (m *memPersister) Load() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *memPersister) Save(s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s
	return nil
}

func (m *memPersister) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = Snapshot{}
	return nil
}

var errUnauthorized = &APIError{Status: http.StatusUnauthorized, Message: "No access token provided"}

func waitEntered(t *testing.T, f *fakeBackend, name string) {
	t.Helper()

	select {
	case got := <-f.entered:
		require.Equal(t, name, got)
	case <-time.After(2 * time.Second):
		t.Fatalf("backend call %q never started", name)
	}
}

func TestLogin_Success(t *testing.T) {
	backend := newFakeBackend()
	persister := &memPersister{}
	store := NewStore(backend, persister)

	user, err := store.Login(context.Background(), " ada@example.com ", "secret1")

	require.NoError(t, err)
	assert.Equal(t, student, user)

	state := store.Snapshot()
	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.True(t, state.IsAuthenticated())
	assert.False(t, state.IsLoading)

	snap, _ := persister.Load()
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, student, snap.User)
}

func TestLogin_MalformedInputMakesNoCall(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)

	testCases := []struct {
		email    string
		password string
		message  string
	}{
		{"", "secret1", "email is required"},
		{"not-an-email", "secret1", "email must be a valid email address"},
		{"ada@example.com", "", "password is required"},
	}

	for _, tc := range testCases {
		_, err := store.Login(context.Background(), tc.email, tc.password)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, tc.message, Message(err))
	}

	assert.Equal(t, 0, backend.count("login"))
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	backend := newFakeBackend()
	backend.loginErr = &APIError{Status: http.StatusBadRequest, Message: "Invalid credentials"}
	store := NewStore(backend, nil)

	_, err := store.Login(context.Background(), "ada@example.com", "wrong-password")

	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", Message(err))

	state := store.Snapshot()
	assert.Equal(t, StatusError, state.Status)
	assert.Nil(t, state.User)
	assert.Error(t, state.Err)

	store.DismissError()
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)
}

func TestLogin_FailureKeepsExistingSession(t *testing.T) {
	backend := newFakeBackend()
	persister := &memPersister{}
	store := NewStore(backend, persister)

	_, err := store.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	backend.loginErr = &APIError{Status: http.StatusBadRequest, Message: "Invalid credentials"}

	_, err = store.Login(context.Background(), "other@example.com", "wrong-password")
	require.Error(t, err)

	state := store.Snapshot()
	assert.Equal(t, StatusAuthenticated, state.Status)
	assert.Equal(t, student, state.User)
	assert.False(t, state.IsLoading)
	assert.Equal(t, "Invalid credentials", Message(state.Err))

	snap, _ := persister.Load()
	assert.True(t, snap.IsAuthenticated)

	store.DismissError()
	assert.True(t, store.Snapshot().IsAuthenticated(), "dismissing the notice keeps the session")
}

func TestLogin_AppliesAfterCallerIsGone(t *testing.T) {
	backend := newFakeBackend()
	release := backend.block("login")
	store := NewStore(backend, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		store.Login(context.Background(), "ada@example.com", "secret1") //nolint:errcheck // caller has navigated away
	}()

	waitEntered(t, backend, "login")
	assert.Equal(t, StatusChecking, store.Snapshot().Status)
	assert.True(t, store.Snapshot().IsLoading)

	close(release)
	<-done

	assert.Equal(t, StatusAuthenticated, store.Snapshot().Status)
}

func TestLogout_AlwaysEndsAnonymous(t *testing.T) {
	backend := newFakeBackend()
	backend.logoutErr = errors.New("dial tcp: connection refused")
	persister := &memPersister{}
	store := NewStore(backend, persister)

	_, err := store.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	err = store.Logout(context.Background())

	assert.Error(t, err, "backend failure is still reported")
	state := store.Snapshot()
	assert.Equal(t, StatusAnonymous, state.Status)
	assert.Nil(t, state.User)
	assert.False(t, state.IsLoading)

	snap, _ := persister.Load()
	assert.False(t, snap.IsAuthenticated)
}

func TestGetUser_Success(t *testing.T) {
	store := NewStore(newFakeBackend(), nil)

	user, err := store.GetUser(context.Background())

	require.NoError(t, err)
	assert.Equal(t, student, user)
	assert.Equal(t, StatusAuthenticated, store.Snapshot().Status)
}

func TestGetUser_UnauthorizedIsNotAnError(t *testing.T) {
	backend := newFakeBackend()
	backend.userErrs = []error{errUnauthorized}
	store := NewStore(backend, nil)

	user, err := store.GetUser(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)
}

func TestGetUser_NetworkFailureClearsSession(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)

	_, err := store.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	backend.userErrs = []error{errors.New("request failed: dial tcp: connection refused")}

	user, err := store.GetUser(context.Background())

	assert.Error(t, err)
	assert.Nil(t, user)
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)
	assert.Nil(t, store.Snapshot().User)
}

func TestGetUser_StaleResponseDiscardedAfterLogout(t *testing.T) {
	backend := newFakeBackend()
	release := backend.block("user")
	store := NewStore(backend, nil)

	var (
		user *User
		err  error
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		user, err = store.GetUser(context.Background())
	}()

	waitEntered(t, backend, "user")

	require.NoError(t, store.Logout(context.Background()))
	waitEntered(t, backend, "logout")

	close(release)
	<-done

	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Nil(t, user)
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status, "slow getUser must not resurrect the session")
}

func TestRegisterAndVerify_DoNotAuthenticate(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)

	result, err := store.Register(context.Background(), Registration{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "secret1",
		Grade:    "5",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-2", result.UserID)
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)

	msg, err := store.VerifyEmail(context.Background(), "123456")
	require.NoError(t, err)
	assert.Contains(t, msg, "verified")
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)
	assert.False(t, store.Snapshot().IsLoading)
}

func TestRegister_ValidatesInput(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)

	testCases := []struct {
		reg     Registration
		message string
	}{
		{Registration{Email: "ada@example.com", Password: "secret1", Grade: "5"}, "name is required"},
		{Registration{Name: "Ada", Email: "ada@example.com", Password: "123", Grade: "5"}, "password must be at least 6 characters long"},
		{Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1", Grade: "13"}, "grade must be one of: KG1 KG2 1 2 3 4 5 6 7 8 9 10 11 12"},
	}

	for _, tc := range testCases {
		_, err := store.Register(context.Background(), tc.reg)
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, tc.message, Message(err))
	}

	_, err := store.VerifyEmail(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, 0, backend.count("register"))
	assert.Equal(t, 0, backend.count("verify"))
}

func TestRefresh_FailureClearsSession(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)

	_, err := store.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)

	backend.refreshErr = errUnauthorized

	_, err = store.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)
}

func TestInitialize_RestoresAndRevalidates(t *testing.T) {
	backend := newFakeBackend()
	persister := &memPersister{snap: Snapshot{User: student, IsAuthenticated: true}}
	store := NewStore(backend, persister)

	require.NoError(t, store.Initialize(context.Background()))

	assert.Equal(t, StatusAuthenticated, store.Snapshot().Status)
	assert.Equal(t, 1, backend.count("user"))
	assert.Equal(t, 0, backend.count("refresh"))
}

func TestInitialize_FallsBackToRefresh(t *testing.T) {
	backend := newFakeBackend()
	backend.userErrs = []error{errUnauthorized, nil}
	persister := &memPersister{snap: Snapshot{User: student, IsAuthenticated: true}}
	store := NewStore(backend, persister)

	require.NoError(t, store.Initialize(context.Background()))

	assert.Equal(t, StatusAuthenticated, store.Snapshot().Status)
	assert.Equal(t, 2, backend.count("user"))
	assert.Equal(t, 1, backend.count("refresh"))
}

func TestInitialize_ClearsWhenEverythingFails(t *testing.T) {
	backend := newFakeBackend()
	backend.userErrs = []error{errUnauthorized}
	backend.refreshErr = errUnauthorized
	persister := &memPersister{snap: Snapshot{User: student, IsAuthenticated: true}}
	store := NewStore(backend, persister)

	require.NoError(t, store.Initialize(context.Background()))

	assert.Equal(t, StatusAnonymous, store.Snapshot().Status)
	snap, _ := persister.Load()
	assert.False(t, snap.IsAuthenticated)
}

func TestInitialize_AnonymousSnapshotMakesNoCall(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, &memPersister{})

	require.NoError(t, store.Initialize(context.Background()))
	assert.Equal(t, 0, backend.count("user"))
}

func TestSubscribe(t *testing.T) {
	store := NewStore(newFakeBackend(), nil)

	var (
		mu       sync.Mutex
		statuses []Status
	)

	unsubscribe := store.Subscribe(func(s State) {
		mu.Lock()
		defer mu.Unlock()
		statuses = append(statuses, s.Status)
	})

	_, err := store.GetUser(context.Background())
	require.NoError(t, err)

	unsubscribe()
	store.Clear()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Status{StatusChecking, StatusAuthenticated}, statuses)
}

func TestAutoRefresh_RunsWhileAuthenticated(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil)

	_, err := store.Login(context.Background(), "ada@example.com", "secret1")
	require.NoError(t, err)
	<-backend.entered // drain the login call

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go store.AutoRefresh(ctx, 10*time.Millisecond)

	waitEntered(t, backend, "refresh")
	cancel()

	assert.Equal(t, StatusAuthenticated, store.Snapshot().Status)
}
