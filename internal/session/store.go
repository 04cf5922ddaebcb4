package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"codeberg.org/edtech/portal/internal/logger"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// passed to begin by actions that must not change the status
const keepStatus Status = -1

// client-side session state. every action that changes the session takes a
// new generation; a response is applied only if no later action started
// in the meantime.
type Store struct {
	backend   Backend
	persister Persister

	mu         sync.Mutex
	state      State
	generation uint64
	inflight   int
	listeners  map[int]func(State)
	nextID     int
}

// creates a store; persister may be nil
func NewStore(backend Backend, persister Persister) *Store {
	return &Store{
		backend:   backend,
		persister: persister,
		listeners: make(map[int]func(State)),
	}
}

// returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// registers fn to be called after every state change
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// validates the current session with the backend. a 401 is not an error:
// the store becomes anonymous and (nil, nil) is returned.
func (s *Store) GetUser(ctx context.Context) (*User, error) {
	gen := s.begin(StatusChecking)

	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		if !s.finish(gen, clearSession) {
			return nil, ErrSuperseded
		}

		if errors.Is(err, ErrUnauthorized) {
			return nil, nil
		}

		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.finish(gen, authenticate(user)) {
		return nil, ErrSuperseded
	}

	return user, nil
}

// logs in. malformed input is rejected before any request and leaves the
// state untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*User, error) {
	creds := Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validate.Struct(creds); err != nil {
		return nil, invalidInput(err)
	}

	prior := s.Snapshot()
	gen := s.begin(StatusChecking)

	user, err := s.backend.Login(ctx, creds)
	if err != nil {
		if !s.finish(gen, loginFailed(prior, err)) {
			return nil, ErrSuperseded
		}

		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.finish(gen, authenticate(user)) {
		return nil, ErrSuperseded
	}

	return user, nil
}

// logs out. local state is cleared before the backend is called, so the
// store ends anonymous even when the call fails; that error is returned
// for a non-fatal notification only.
func (s *Store) Logout(ctx context.Context) error {
	gen := s.begin(StatusAnonymous)
	s.finish(gen, clearSession)

	s.beginSide()
	defer s.finishSide()

	if err := s.backend.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	return nil
}

// registers an account. never authenticates: the email must be verified
// and a login performed afterwards.
func (s *Store) Register(ctx context.Context, reg Registration) (*RegisterResult, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)

	if err := validate.Struct(reg); err != nil {
		return nil, invalidInput(err)
	}

	s.beginSide()
	defer s.finishSide()

	result, err := s.backend.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	return result, nil
}

// confirms an email verification code. never authenticates.
func (s *Store) VerifyEmail(ctx context.Context, code string) (string, error) {
	code = strings.TrimSpace(code)
	if err := validate.Var(code, "required,alphanum"); err != nil {
		return "", fmt.Errorf("%w: verification code must be a non-empty alphanumeric code", ErrInvalidInput)
	}

	s.beginSide()
	defer s.finishSide()

	msg, err := s.backend.VerifyEmail(ctx, code)
	if err != nil {
		return "", fmt.Errorf("verify email: %w", err)
	}

	return msg, nil
}

// exchanges the refresh cookie for a new access token. failure clears the
// session.
func (s *Store) Refresh(ctx context.Context) (*User, error) {
	gen := s.begin(keepStatus)

	user, err := s.backend.Refresh(ctx)
	if err != nil {
		if !s.finish(gen, clearSession) {
			return nil, ErrSuperseded
		}

		return nil, fmt.Errorf("refresh: %w", err)
	}

	if !s.finish(gen, authenticate(user)) {
		return nil, ErrSuperseded
	}

	return user, nil
}

// restores the persisted snapshot and, if it claims a session, revalidates
// it: user lookup first, then a refresh and a second lookup. a session that
// fails both is cleared.
func (s *Store) Initialize(ctx context.Context) error {
	if s.persister != nil {
		snap, err := s.persister.Load()
		if err != nil {
			return fmt.Errorf("load session state: %w", err)
		}

		s.mu.Lock()
		if snap.IsAuthenticated && snap.User != nil {
			s.state = State{Status: StatusAuthenticated, User: snap.User}
		}
		s.mu.Unlock()
	}

	if !s.Snapshot().IsAuthenticated() {
		return nil
	}

	user, err := s.GetUser(ctx)
	if err == nil && user != nil {
		return nil
	}

	if _, err := s.Refresh(ctx); err != nil {
		return nil
	}

	if user, err = s.GetUser(ctx); err != nil || user == nil {
		s.Clear()
		return err
	}

	return nil
}

// refreshes the session every interval while it is authenticated
func (s *Store) AutoRefresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if s.Snapshot().Status != StatusAuthenticated {
				continue
			}

			if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
				logger.Warn("session refresh failed, session cleared", "error", err)
			}
		}
	}
}

// drops the session locally without contacting the backend
func (s *Store) Clear() {
	gen := s.begin(StatusAnonymous)
	s.finish(gen, clearSession)
}

// turns a transient error status back into anonymous
func (s *Store) DismissError() {
	s.mu.Lock()
	if s.state.Status != StatusError {
		s.mu.Unlock()
		return
	}

	s.state.Status = StatusAnonymous
	s.state.Err = nil
	state := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
}

// starts a session action
func (s *Store) begin(status Status) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inflight++

	if status != keepStatus {
		s.state.Status = status
	}
	s.state.IsLoading = true

	state := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
	return gen
}

// completes a session action, applying it only if it is still current
func (s *Store) finish(gen uint64, apply func(*State)) bool {
	s.mu.Lock()
	s.inflight--
	s.state.IsLoading = s.inflight > 0

	current := gen == s.generation
	if current {
		apply(&s.state)
		s.persist()
	}

	state := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
	return current
}

// side actions only affect IsLoading
func (s *Store) beginSide() {
	s.mu.Lock()
	s.inflight++
	s.state.IsLoading = true
	state := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
}

func (s *Store) finishSide() {
	s.mu.Lock()
	s.inflight--
	s.state.IsLoading = s.inflight > 0
	state := s.state
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	notify(listeners, state)
}

// must hold s.mu
func (s *Store) persist() {
	if s.persister == nil {
		return
	}

	var err error
	if s.state.IsAuthenticated() {
		err = s.persister.Save(Snapshot{User: s.state.User, IsAuthenticated: true})
	} else {
		err = s.persister.Clear()
	}

	if err != nil {
		logger.Warn("failed to persist session state", "error", err)
	}
}

// must hold s.mu
func (s *Store) snapshotListeners() []func(State) {
	out := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}

	return out
}

func notify(listeners []func(State), state State) {
	for _, fn := range listeners {
		fn(state)
	}
}

func authenticate(user *User) func(*State) {
	return func(st *State) {
		st.Status = StatusAuthenticated
		st.User = user
		st.Err = nil
	}
}

func failWith(err error) func(*State) {
	return func(st *State) {
		st.Status = StatusError
		st.User = nil
		st.Err = err
	}
}

// a failed login keeps an existing session; only an anonymous store
// moves to the error status
func loginFailed(prior State, err error) func(*State) {
	if !prior.IsAuthenticated() {
		return failWith(err)
	}

	return func(st *State) {
		st.Status = prior.Status
		st.User = prior.User
		st.Err = err
	}
}

func clearSession(st *State) {
	st.Status = StatusAnonymous
	st.User = nil
	st.Err = nil
}
