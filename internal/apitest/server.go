// Package apitest is an in-memory implementation of the library REST and
// OAuth API. cmd/mockapi serves it for local development and the client
// packages test against it.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"library-client/internal/models"
	"library-client/pkg/jwt"
)

type Options struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Superuser is created with ScopeSuperuser when set.
	Superuser         string
	SuperuserPassword string
	BcryptCost        int
}

func (o Options) withDefaults() Options {
	if o.Secret == "" {
		o.Secret = "apitest-secret"
	}
	if o.AccessTTL == 0 {
		o.AccessTTL = 15 * time.Minute
	}
	if o.RefreshTTL == 0 {
		o.RefreshTTL = 72 * time.Hour
	}
	return o
}

// Server is the mock API.
type Server struct {
	db       *DB
	tokens   *jwt.Manager
	engine   *gin.Engine
	requests atomic.Int64
}

func New(opts Options) (*Server, error) {
	opts = opts.withDefaults()
	s := &Server{
		db:     NewDB(opts.BcryptCost),
		tokens: jwt.NewManager(opts.Secret, opts.AccessTTL, opts.RefreshTTL),
	}
	s.engine = s.setupRouter()

	if opts.Superuser != "" {
		if _, err := s.AddUser(opts.Superuser, opts.SuperuserPassword, ScopeSuperuser); err != nil {
			return nil, fmt.Errorf("seed superuser: %w", err)
		}
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// DB exposes the store for seeding and assertions.
func (s *Server) DB() *DB {
	return s.db
}

// Requests counts every request served so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

func (s *Server) ResetRequests() {
	s.requests.Store(0)
}

// AddUser seeds an active User.
func (s *Server) AddUser(username, password, scope string) (models.User, error) {
	u := models.NewUser()
	u.Username = username
	u.Name = username
	u.Scope = scope
	u.Password = &password
	e, err := s.db.Insert(models.Unpersisted, u)
	if err != nil {
		return models.User{}, err
	}
	return e.(models.User), nil
}

// AddLibrary seeds an active Library.
func (s *Server) AddLibrary(name string) (models.Library, error) {
	l := models.NewLibrary()
	l.Name = name
	l.Scope = name
	e, err := s.db.Insert(models.Unpersisted, l)
	if err != nil {
		return models.Library{}, err
	}
	return e.(models.Library), nil
}

// Add seeds any Library owned entity.
func (s *Server) Add(e models.Entity) (models.Entity, error) {
	return s.db.Insert(e.EntityLibraryID(), e)
}

// Link seeds an association between two saved entities.
func (s *Server) Link(parent, child models.Entity, principal bool) error {
	_, err := s.db.Link(nodeOf(parent), nodeOf(child), parent.EntityLibraryID(), principal)
	return err
}

// Test bundles a running Server for package tests.
type Test struct {
	*Server
	HTTP *httptest.Server
}

// BaseURL is the REST root, including /api.
func (t *Test) BaseURL() string {
	return t.HTTP.URL + "/api"
}

// OAuthURL is the OAuth root.
func (t *Test) OAuthURL() string {
	return t.HTTP.URL + "/oauth"
}

// NewHTTPTest starts a Server with a superuser "admin" / "secret" and
// stops it when the test ends.
func NewHTTPTest(t testing.TB) *Test {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := New(Options{
		Superuser:         "admin",
		SuperuserPassword: "secret",
		BcryptCost:        bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("apitest: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &Test{Server: s, HTTP: srv}
}
