package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"library-client/internal/api"
	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
	"library-client/pkg/logger"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Manager holds the session in memory and mirrors it to a Store.
// It is the api.TokenSource of every REST client.
type Manager struct {
	store  storage.Store
	oauth  *OAuthClient
	log     zerolog.Logger
	now     func() time.Time
	timeout time.Duration
	flight  singleflight.Group

	mu   sync.RWMutex
	data LoginData
	user *models.User
}

type Option func(*managerOptions)

type managerOptions struct {
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
	log        zerolog.Logger
}

func WithTimeout(d time.Duration) Option {
	return func(o *managerOptions) { o.timeout = d }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *managerOptions) { o.httpClient = hc }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *managerOptions) { o.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(o *managerOptions) { o.log = l }
}

// NewManager builds a Manager for the OAuth root (serving /token and /me).
// Call Load to restore a persisted session.
func NewManager(oauthURL string, store storage.Store, opts ...Option) *Manager {
	o := managerOptions{
		timeout: api.DefaultTimeout,
		now:     time.Now,
		log:     logger.Component("auth"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = api.DefaultTimeout
	}

	m := &Manager{store: store, log: o.log, now: o.now, timeout: o.timeout}

	clientOpts := []api.Option{api.WithTimeout(o.timeout), api.WithLogger(o.log)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	m.oauth = &OAuthClient{
		anon:   api.NewClient(oauthURL, nil, clientOpts...),
		authed: api.NewClient(oauthURL, m, clientOpts...),
	}
	return m
}

// Load restores the session persisted by an earlier process.
func (m *Manager) Load(ctx context.Context) error {
	var data LoginData
	if _, err := m.store.Get(ctx, KeyLoginData, &data); err != nil {
		return err
	}
	var user models.User
	found, err := m.store.Get(ctx, KeyLoginUser, &user)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data = data
	m.user = nil
	if found {
		m.user = &user
	}
	m.mu.Unlock()

	m.log.Debug().Bool("logged_in", data.LoggedIn).Str("username", data.Username).Msg("session loaded")
	return nil
}

// Login runs the password grant, persists the session and caches /me.
func (m *Manager) Login(ctx context.Context, username, password string) (LoginData, error) {
	tr, err := m.oauth.password(ctx, username, password)
	if err != nil {
		return LoginData{}, err
	}

	data := tr.loginData(username, LoginData{}, m.now())
	m.mu.Lock()
	m.data = data
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Set(ctx, KeyLoginData, data); err != nil {
		return data, err
	}

	if _, err := m.Me(ctx); err != nil {
		m.log.Warn().Err(err).Str("username", username).Msg("could not fetch current user")
	}

	m.log.Info().Str("username", username).Str("scope", data.Scope).Msg("logged in")
	return data, nil
}

// Logout revokes the token when possible and always clears local state.
func (m *Manager) Logout(ctx context.Context) error {
	if m.LoggedIn() {
		if err := m.oauth.revoke(ctx); err != nil {
			m.log.Warn().Err(err).Msg("token revoke failed")
		}
	}

	m.mu.Lock()
	m.data = LoginData{}
	m.user = nil
	m.mu.Unlock()

	return m.store.Delete(ctx, KeyLoginData, KeyLoginUser)
}

// State returns the session without refreshing it.
func (m *Manager) State() LoginData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data
}

func (m *Manager) LoggedIn() bool {
	return m.State().LoggedIn
}

// User is the last /me result.
func (m *Manager) User() (models.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return models.User{}, false
	}
	return *m.user, true
}

// Me fetches and caches the current user.
func (m *Manager) Me(ctx context.Context) (models.User, error) {
	if !m.LoggedIn() {
		return models.User{}, ErrNotLoggedIn
	}
	user, err := m.oauth.me(ctx)
	if err != nil {
		return models.User{}, err
	}

	m.mu.Lock()
	m.user = &user
	m.mu.Unlock()

	if err := m.store.Set(ctx, KeyLoginUser, user); err != nil {
		return user, err
	}
	return user, nil
}

// Current returns the session, refreshing an expired access token first.
// A failed refresh is logged and the stale session returned; the next
// call then fails with 401.
//
// Concurrent callers share one refresh. It runs detached from any caller's
// context, bounded by the manager timeout, so a caller that gives up early
// returns the stale session without failing the others.
func (m *Manager) Current(ctx context.Context) LoginData {
	data := m.State()
	if !data.LoggedIn || data.RefreshToken == "" || !data.Expired(m.now()) {
		return data
	}

	ch := m.flight.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
		defer cancel()
		return m.refresh(rctx)
	})
	select {
	case <-ctx.Done():
		return data
	case res := <-ch:
		if res.Err != nil {
			m.log.Warn().Err(res.Err).Str("username", data.Username).Msg("token refresh failed")
			return data
		}
		return res.Val.(LoginData)
	}
}

func (m *Manager) refresh(ctx context.Context) (LoginData, error) {
	prev := m.State()
	if !prev.Expired(m.now()) {
		return prev, nil
	}

	tr, err := m.oauth.refresh(ctx, prev.RefreshToken)
	if err != nil {
		return prev, err
	}
	data := tr.loginData(prev.Username, prev, m.now())

	m.mu.Lock()
	m.data = data
	m.mu.Unlock()

	if err := m.store.Set(ctx, KeyLoginData, data); err != nil {
		m.log.Warn().Err(err).Msg("could not persist refreshed session")
	}
	m.log.Debug().Time("expires", data.Expires).Msg("access token refreshed")
	return data, nil
}

// Credentials implements api.TokenSource.
func (m *Manager) Credentials(ctx context.Context) (api.Credentials, error) {
	data := m.Current(ctx)
	if err := ctx.Err(); err != nil {
		return api.Credentials{}, err
	}
	if !data.LoggedIn {
		return api.Credentials{}, nil
	}
	return api.Credentials{AccessToken: data.AccessToken, Username: data.Username}, nil
}
