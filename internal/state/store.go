// Package state is the application state shared by every view: the login
// session, the current Library and the canonical Library and User lists.
// It has an explicit lifecycle: Load after login or at startup, Reset at
// logout.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"library-client/internal/api"
	"library-client/internal/domains/library"
	"library-client/internal/domains/user"
	"library-client/internal/hooks"
	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
	"library-client/pkg/logger"
)

// KeyCurrentLibrary holds the id of the selected Library.
const KeyCurrentLibrary = "CURRENT_LIBRARY"

// ErrUnknownLibrary is returned when selecting a Library that is not loaded.
var ErrUnknownLibrary = errors.New("library is not available to this user")

// Session is the part of auth.Manager the state depends on.
type Session interface {
	LoggedIn() bool
}

// Store implements hooks.Env.
type Store struct {
	client  hooks.Requester
	session Session
	storage storage.Store
	log     zerolog.Logger

	mu        sync.RWMutex
	library   models.Library
	libraries []models.Library
	users     []models.User
	subs      map[int]func()
	nextSub   int
}

func New(client hooks.Requester, session Session, store storage.Store) *Store {
	return &Store{
		client:    client,
		session:   session,
		storage:   store,
		log:       logger.Component("state"),
		library:   models.NewLibrary(),
		libraries: []models.Library{},
		users:     []models.User{},
		subs:      make(map[int]func()),
	}
}

func (s *Store) LoggedIn() bool {
	return s.session.LoggedIn()
}

// Library is the current Library, or an unsaved one (id -1) when none is selected.
func (s *Store) Library() models.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.library
}

func (s *Store) Libraries() []models.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.libraries
}

// Users is empty for callers without the superuser scope.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users
}

// Load fetches Libraries and Users in parallel and restores the selected
// Library. Logged out, it resets instead.
func (s *Store) Load(ctx context.Context) error {
	if !s.LoggedIn() {
		return s.Reset(ctx)
	}

	var (
		libraries []models.Library
		users     []models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		libraries, err = library.All(gctx, s.client)
		if err != nil {
			return fmt.Errorf("load libraries: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		users, err = user.All(gctx, s.client)
		if errors.Is(err, api.ErrForbidden) {
			users, err = []models.User{}, nil
		}
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	var selected int64 = models.Unpersisted
	if _, err := s.storage.Get(ctx, KeyCurrentLibrary, &selected); err != nil {
		s.log.Warn().Err(err).Msg("could not read current library")
	}

	current := models.NewLibrary()
	for _, l := range libraries {
		if l.ID == selected {
			current = l
			break
		}
	}
	if len(libraries) == 1 && current.ID < 0 {
		current = libraries[0]
	}

	s.mu.Lock()
	s.libraries = libraries
	s.users = users
	s.library = current
	s.mu.Unlock()

	s.log.Debug().
		Int("libraries", len(libraries)).
		Int("users", len(users)).
		Int64("library_id", current.ID).
		Msg("state loaded")
	s.notify()
	return nil
}

// SelectLibrary makes the Library with id current and remembers it.
func (s *Store) SelectLibrary(ctx context.Context, id int64) (models.Library, error) {
	s.mu.Lock()
	var found *models.Library
	for i := range s.libraries {
		if s.libraries[i].ID == id {
			found = &s.libraries[i]
			break
		}
	}
	if found == nil {
		s.mu.Unlock()
		return models.NewLibrary(), fmt.Errorf("%w: %d", ErrUnknownLibrary, id)
	}
	s.library = *found
	selected := s.library
	s.mu.Unlock()

	if err := s.storage.Set(ctx, KeyCurrentLibrary, id); err != nil {
		return selected, err
	}
	s.notify()
	return selected, nil
}

// Reset drops everything loaded and forgets the selected Library.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.library = models.NewLibrary()
	s.libraries = []models.Library{}
	s.users = []models.User{}
	s.mu.Unlock()

	s.notify()
	return s.storage.Delete(ctx, KeyCurrentLibrary)
}

// Subscribe registers fn to run after every Load, SelectLibrary and Reset.
// Pass a ListFetcher's Sync to have it follow login and Library changes.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn()
	}
}
