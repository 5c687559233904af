// Package session owns the signed-in user and bearer token.
//
// The token and the serialized user are persisted together through a store.SessionStore;
// an in-memory session never exists without its persisted counterpart.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"pulse-cli/internal/api"
	"pulse-cli/internal/model"
	"pulse-cli/internal/store"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoAuthenticator = errors.New("session: no authenticator configured")
	ErrMissingInput    = errors.New("email and password are required")
)

// Authenticator is the subset of the API client used for sign-in.
type Authenticator interface {
	Register(ctx context.Context, req api.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req api.LoginRequest) (api.TokenResponse, error)
}

// State is a snapshot handed to subscribers.
type State struct {
	Authenticated bool
	User          model.User
}

type Manager struct {
	store store.SessionStore
	log   *slog.Logger
	now   func() time.Time

	mu    sync.RWMutex
	auth  Authenticator
	token string
	user  model.User

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

var _ api.TokenSource = (*Manager)(nil)

func New(st store.SessionStore, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{store: st, log: log, now: time.Now, subs: map[int]func(State){}}
}

// UseAuthenticator wires the API client. The client itself reads Token from this manager,
// so it is attached after construction.
func (m *Manager) UseAuthenticator(a Authenticator) {
	m.mu.Lock()
	m.auth = a
	m.mu.Unlock()
}

func (m *Manager) setClock(now func() time.Time) { m.now = now }

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *Manager) User() (model.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.token != ""
}

func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != ""
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return State{Authenticated: m.token != "", User: m.user}
}

// OnChange registers fn for every sign-in/sign-out transition. The returned func unsubscribes.
func (m *Manager) OnChange(fn func(State)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify() {
	st := m.State()
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

// Restore reads the persisted session. It never fails: anything missing, malformed or
// expired leaves the manager signed out and the persisted pair cleared.
func (m *Manager) Restore(ctx context.Context) State {
	token, raw, err := m.store.LoadSession(ctx)
	if err != nil {
		m.log.Warn("session restore failed", "err", err)
		m.reset(ctx)
		return m.State()
	}
	token = strings.TrimSpace(token)
	if token == "" && strings.TrimSpace(raw) == "" {
		m.setSignedOut()
		return m.State()
	}

	u, err := decodeUser(raw)
	if err != nil || token == "" {
		m.log.Warn("discarding malformed session", "err", err)
		m.reset(ctx)
		return m.State()
	}
	if expired, exp := m.tokenExpired(token); expired {
		m.log.Info("discarding expired session", "expired_at", exp)
		m.reset(ctx)
		return m.State()
	}

	m.mu.Lock()
	m.token = token
	m.user = u
	m.mu.Unlock()
	m.log.Debug("session restored", "email", u.Email)
	m.notify()
	return m.State()
}

func decodeUser(raw string) (model.User, error) {
	var u model.User
	if strings.TrimSpace(raw) == "" {
		return u, errors.New("missing user")
	}
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return u, fmt.Errorf("decode user: %w", err)
	}
	if strings.TrimSpace(u.Email) == "" {
		return u, errors.New("user has no email")
	}
	return u, nil
}

// tokenExpired inspects JWT exp without verifying the signature. Tokens that are not JWTs
// are treated as opaque and never expire client-side.
func (m *Manager) tokenExpired(token string) (bool, time.Time) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false, time.Time{}
	}
	if claims.ExpiresAt == nil {
		return false, time.Time{}
	}
	exp := claims.ExpiresAt.Time
	return !m.now().Before(exp), exp
}

// Login signs in and persists the session. Any failure leaves the manager signed out.
func (m *Manager) Login(ctx context.Context, email, password string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		m.reset(ctx)
		return model.User{}, ErrMissingInput
	}
	auth, err := m.authenticator()
	if err != nil {
		m.reset(ctx)
		return model.User{}, err
	}

	tr, err := auth.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		m.reset(ctx)
		return model.User{}, err
	}
	if err := m.commit(ctx, tr.AccessToken, tr.User); err != nil {
		m.reset(ctx)
		return model.User{}, err
	}
	m.log.Info("signed in", "email", tr.User.Email)
	return tr.User, nil
}

// Register creates the account and then signs in with the same credentials. Like Login,
// any failure leaves the manager signed out.
func (m *Manager) Register(ctx context.Context, email, password, displayName string) (model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		m.reset(ctx)
		return model.User{}, ErrMissingInput
	}
	auth, err := m.authenticator()
	if err != nil {
		m.reset(ctx)
		return model.User{}, err
	}

	req := api.RegisterRequest{Email: email, Password: password}
	if name := strings.TrimSpace(displayName); name != "" {
		req.FullName = model.StrPtr(name)
	}
	if _, err := auth.Register(ctx, req); err != nil {
		m.reset(ctx)
		return model.User{}, err
	}
	return m.Login(ctx, email, password)
}

// Logout clears the persisted and in-memory session. The in-memory session is always
// cleared; the returned error only reports a storage failure.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.ClearSession(ctx)
	if err != nil {
		m.log.Warn("clear session failed", "err", err)
	}
	m.setSignedOut()
	m.notify()
	return err
}

// HandleAuthFailure tears the session down when err is an API 401. It reports whether it did.
func (m *Manager) HandleAuthFailure(ctx context.Context, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	if !m.Authenticated() {
		return false
	}
	m.log.Info("session rejected by server; signing out")
	_ = m.Logout(ctx)
	return true
}

func (m *Manager) authenticator() (Authenticator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.auth == nil {
		return nil, ErrNoAuthenticator
	}
	return m.auth, nil
}

func (m *Manager) commit(ctx context.Context, token string, u model.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := m.store.SaveSession(ctx, token, string(b)); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.mu.Lock()
	m.token = token
	m.user = u
	m.mu.Unlock()
	m.notify()
	return nil
}

func (m *Manager) reset(ctx context.Context) {
	if err := m.store.ClearSession(ctx); err != nil {
		m.log.Warn("clear session failed", "err", err)
	}
	wasAuth := m.Authenticated()
	m.setSignedOut()
	if wasAuth {
		m.notify()
	}
}

func (m *Manager) setSignedOut() {
	m.mu.Lock()
	m.token = ""
	m.user = model.User{}
	m.mu.Unlock()
}
