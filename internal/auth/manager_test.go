package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
	"library-client/pkg/jwt"
)

type fakeOAuth struct {
	t          *testing.T
	expiresIn  int64
	accessTok  string
	failGrant  atomic.Bool
	refreshes  atomic.Int32
	revokes    atomic.Int32
	lastBearer atomic.Value
}

func (f *fakeOAuth) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(f.t, r.ParseForm())
		if f.failGrant.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		access := f.accessTok
		switch r.PostForm.Get("grant_type") {
		case "password":
			if r.PostForm.Get("password") != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if access == "" {
				access = "access-1"
			}
		case "refresh_token":
			assert.Equal(f.t, "refresh-1", r.PostForm.Get("refresh_token"))
			f.refreshes.Add(1)
			time.Sleep(20 * time.Millisecond)
			access = "access-2"
		}
		body := map[string]any{"access_token": access, "scope": "first:admin", "token_type": "bearer"}
		if r.PostForm.Get("grant_type") == "password" {
			body["refresh_token"] = "refresh-1"
		}
		if f.expiresIn > 0 {
			body["expires_in"] = f.expiresIn
		}
		json.NewEncoder(w).Encode(body)
	})
	mux.HandleFunc("DELETE /token", func(w http.ResponseWriter, r *http.Request) {
		f.revokes.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		f.lastBearer.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"id": 1, "username": "fred", "name": "Fred", "scope": "first:admin"}`))
	})
	return mux
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setup(t *testing.T, f *fakeOAuth) (*Manager, *storage.MemoryStore, *clock) {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)

	store := storage.NewMemoryStore()
	clk := &clock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return NewManager(srv.URL, store, WithClock(clk.Now)), store, clk
}

func TestLogin(t *testing.T) {
	f := &fakeOAuth{expiresIn: 900}
	m, store, clk := setup(t, f)
	ctx := context.Background()

	data, err := m.Login(ctx, "fred", "secret")
	require.NoError(t, err)

	assert.True(t, data.LoggedIn)
	assert.Equal(t, "access-1", data.AccessToken)
	assert.Equal(t, "refresh-1", data.RefreshToken)
	assert.Equal(t, "first:admin", data.Scope)
	assert.Equal(t, clk.Now().Add(900*time.Second), data.Expires)

	var persisted LoginData
	found, err := store.Get(ctx, KeyLoginData, &persisted)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, data.AccessToken, persisted.AccessToken)

	user, ok := m.User()
	require.True(t, ok)
	assert.Equal(t, "Fred", user.Title)
	assert.Equal(t, "Bearer access-1", f.lastBearer.Load())

	var stored models.User
	found, err = store.Get(ctx, KeyLoginUser, &stored)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "fred", stored.Username)
}

func TestLogin_BadPassword(t *testing.T) {
	m, _, _ := setup(t, &fakeOAuth{})

	_, err := m.Login(context.Background(), "fred", "wrong")
	assert.Error(t, err)
	assert.False(t, m.LoggedIn())
}

func TestCredentials_LoggedOut(t *testing.T) {
	m, _, _ := setup(t, &fakeOAuth{})

	creds, err := m.Credentials(context.Background())
	require.NoError(t, err)
	assert.Empty(t, creds.AccessToken)
}

func TestCurrent_RefreshesOnceForConcurrentCallers(t *testing.T) {
	f := &fakeOAuth{expiresIn: 60}
	m, store, clk := setup(t, f)
	ctx := context.Background()

	_, err := m.Login(ctx, "fred", "secret")
	require.NoError(t, err)
	clk.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	tokens := make([]string, 8)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			creds, err := m.Credentials(ctx)
			assert.NoError(t, err)
			tokens[i] = creds.AccessToken
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), f.refreshes.Load())
	for _, tok := range tokens {
		assert.Equal(t, "access-2", tok)
	}

	var persisted LoginData
	_, err = store.Get(ctx, KeyLoginData, &persisted)
	require.NoError(t, err)
	assert.Equal(t, "access-2", persisted.AccessToken)
	assert.Equal(t, "refresh-1", persisted.RefreshToken, "refresh token kept when the grant omits it")
}

func TestCurrent_CanceledCallerDoesNotSpoilSharedRefresh(t *testing.T) {
	f := &fakeOAuth{expiresIn: 60}
	m, store, clk := setup(t, f)
	ctx := context.Background()

	_, err := m.Login(ctx, "fred", "secret")
	require.NoError(t, err)
	clk.Advance(2 * time.Minute)

	// The fake refresh takes 20ms, so this caller gives up while it runs.
	short, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	_, err = m.Credentials(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	creds, err := m.Credentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-2", creds.AccessToken)
	assert.Equal(t, int32(1), f.refreshes.Load())

	var persisted LoginData
	_, err = store.Get(ctx, KeyLoginData, &persisted)
	require.NoError(t, err)
	assert.Equal(t, "access-2", persisted.AccessToken)
}

func TestCurrent_RefreshFailureReturnsStale(t *testing.T) {
	f := &fakeOAuth{expiresIn: 60}
	m, _, clk := setup(t, f)
	ctx := context.Background()

	_, err := m.Login(ctx, "fred", "secret")
	require.NoError(t, err)
	clk.Advance(2 * time.Minute)
	f.failGrant.Store(true)

	data := m.Current(ctx)
	assert.True(t, data.LoggedIn)
	assert.Equal(t, "access-1", data.AccessToken)
}

func TestLogin_ExpiryFromToken(t *testing.T) {
	issued := time.Now()
	tok, err := jwt.NewManager("test-secret", 15*time.Minute, time.Hour).GenerateAccessToken("fred", "first:admin")
	require.NoError(t, err)

	m, _, _ := setup(t, &fakeOAuth{accessTok: tok})
	data, err := m.Login(context.Background(), "fred", "secret")
	require.NoError(t, err)

	assert.WithinDuration(t, issued.Add(15*time.Minute), data.Expires, 2*time.Second)
}

func TestLogout(t *testing.T) {
	f := &fakeOAuth{expiresIn: 900}
	m, store, _ := setup(t, f)
	ctx := context.Background()

	_, err := m.Login(ctx, "fred", "secret")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, int32(1), f.revokes.Load())
	assert.False(t, m.LoggedIn())
	_, ok := m.User()
	assert.False(t, ok)
	assert.Empty(t, store.Keys())
}

func TestLoad(t *testing.T) {
	f := &fakeOAuth{expiresIn: 900}
	m, store, _ := setup(t, f)
	ctx := context.Background()

	_, err := m.Login(ctx, "fred", "secret")
	require.NoError(t, err)

	restored := NewManager("http://unused.invalid", store)
	require.NoError(t, restored.Load(ctx))

	assert.True(t, restored.LoggedIn())
	assert.Equal(t, "fred", restored.State().Username)
	user, ok := restored.User()
	require.True(t, ok)
	assert.Equal(t, int64(1), user.ID)
}

func TestExpired(t *testing.T) {
	now := time.Now()
	assert.False(t, LoginData{}.Expired(now))
	assert.True(t, LoginData{Expires: now.Add(time.Second)}.Expired(now))
	assert.False(t, LoginData{Expires: now.Add(time.Minute)}.Expired(now))
}
