package hooks

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-client/internal/api"
	"library-client/internal/association"
	"library-client/internal/models"
)

type call struct {
	Method string
	Path   string
}

// fakeRequester answers every call with one canned response.
type fakeRequester struct {
	mu      sync.Mutex
	calls   []call
	status  int
	body    string
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRequester) do(method, path string) (*api.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{method, path})
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	if f.status >= 300 {
		return nil, api.FromStatus(f.status, "")
	}
	return &api.Response{Status: f.status, Data: []byte(f.body)}, nil
}

func (f *fakeRequester) Get(_ context.Context, path string) (*api.Response, error) {
	return f.do(http.MethodGet, path)
}

func (f *fakeRequester) Post(_ context.Context, path string, _ any) (*api.Response, error) {
	return f.do(http.MethodPost, path)
}

func (f *fakeRequester) Put(_ context.Context, path string, _ any) (*api.Response, error) {
	return f.do(http.MethodPut, path)
}

func (f *fakeRequester) Delete(_ context.Context, path string) (*api.Response, error) {
	return f.do(http.MethodDelete, path)
}

func newAuthorMutator(r Requester, bus Publisher) *Mutator[models.Author] {
	return NewMutator(r, bus, models.ModelAuthor, models.ToAuthor, func() models.Author {
		return models.NewAuthor(models.Unpersisted)
	})
}

func validAuthor() models.Author {
	a := models.NewAuthor(1)
	a.FirstName, a.LastName = "Ann", "Leckie"
	return a
}

func TestMutator_Insert(t *testing.T) {
	r := &fakeRequester{status: http.StatusCreated, body: `{"id": 7, "libraryId": 1, "firstName": "Ann", "lastName": "Leckie"}`}
	m := newAuthorMutator(r, nil)

	got, err := m.Insert(context.Background(), validAuthor())
	require.NoError(t, err)

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, "Leckie, Ann", got.Title)
	assert.NoError(t, m.Err())
	assert.False(t, m.Executing())
	assert.Equal(t, []call{{http.MethodPost, "/authors/1"}}, r.calls)
}

func TestMutator_InsertConflictReturnsPlaceholder(t *testing.T) {
	r := &fakeRequester{status: http.StatusConflict}
	m := newAuthorMutator(r, nil)

	got, err := m.Insert(context.Background(), validAuthor())

	assert.ErrorIs(t, err, api.ErrNotUnique)
	assert.Error(t, m.Err())
	assert.True(t, m.NotUnique())
	assert.Equal(t, models.Unpersisted, got.ID)
	assert.Empty(t, got.FirstName, "placeholder, not a partially filled entity")

	m.ClearErr()
	assert.NoError(t, m.Err())
}

func TestMutator_ValidationNeverReachesNetwork(t *testing.T) {
	r := &fakeRequester{status: http.StatusCreated}
	m := newAuthorMutator(r, nil)

	_, err := m.Insert(context.Background(), models.NewAuthor(1))

	kind, ok := api.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, api.KindValidation, kind)
	assert.Empty(t, r.calls)
}

func TestMutator_SuccessClearsPriorError(t *testing.T) {
	r := &fakeRequester{status: http.StatusConflict}
	m := newAuthorMutator(r, nil)
	_, _ = m.Insert(context.Background(), validAuthor())
	require.Error(t, m.Err())

	r.status, r.body = http.StatusOK, `{"id": 7, "libraryId": 1, "firstName": "Ann", "lastName": "Leckie"}`
	a := validAuthor()
	a.ID = 7
	_, err := m.Update(context.Background(), a)
	require.NoError(t, err)
	assert.NoError(t, m.Err())
	assert.Equal(t, call{http.MethodPut, "/authors/1/7"}, r.calls[1])
}

func TestMutator_BusyGuard(t *testing.T) {
	r := &fakeRequester{
		status:  http.StatusCreated,
		body:    `{"id": 7, "libraryId": 1, "firstName": "Ann", "lastName": "Leckie"}`,
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	m := newAuthorMutator(r, nil)

	done := make(chan error, 1)
	go func() {
		_, err := m.Insert(context.Background(), validAuthor())
		done <- err
	}()
	<-r.started
	assert.True(t, m.Executing())

	got, err := m.Insert(context.Background(), validAuthor())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, models.Unpersisted, got.ID)
	assert.NoError(t, m.Err(), "a refused call does not overwrite the executing call's flag")
	assert.True(t, m.Executing())

	close(r.block)
	require.NoError(t, <-done)
	assert.False(t, m.Executing())
	assert.NoError(t, m.Err())
	assert.Len(t, r.calls, 1)
}

func TestMutator_RemoveUnsaved(t *testing.T) {
	r := &fakeRequester{status: http.StatusOK}
	m := newAuthorMutator(r, nil)

	_, err := m.Remove(context.Background(), validAuthor())
	assert.Error(t, err)
	assert.Empty(t, r.calls)
}

func TestMutator_IncludePublishes(t *testing.T) {
	author := validAuthor()
	author.ID = 7
	raw, err := json.Marshal(author)
	require.NoError(t, err)

	r := &fakeRequester{status: http.StatusOK, body: string(raw)}
	bus := association.NewBus()
	var events []association.Event
	bus.Subscribe(func(ev association.Event) { events = append(events, ev) })
	m := newAuthorMutator(r, bus)

	series := models.Series{ID: 5, LibraryID: 1}
	_, err = m.Include(context.Background(), author, series)
	require.NoError(t, err)
	_, err = m.Exclude(context.Background(), author, series)
	require.NoError(t, err)

	assert.Equal(t, []call{
		{http.MethodPost, "/series/1/5/authors/7"},
		{http.MethodDelete, "/series/1/5/authors/7"},
	}, r.calls)
	require.Len(t, events, 2)
	assert.Equal(t, association.Include, events[0].Action)
	assert.Equal(t, models.RefOf(series), events[0].Parent)
	assert.Equal(t, int64(7), events[0].Child.EntityID())
	assert.Equal(t, association.Exclude, events[1].Action)
}

func TestMutator_FailedIncludeDoesNotPublish(t *testing.T) {
	author := validAuthor()
	author.ID = 7
	r := &fakeRequester{status: http.StatusForbidden}
	bus := association.NewBus()
	published := false
	bus.Subscribe(func(association.Event) { published = true })

	_, err := newAuthorMutator(r, bus).Include(context.Background(), author, models.Story{ID: 2, LibraryID: 1})
	assert.ErrorIs(t, err, api.ErrForbidden)
	assert.False(t, published)
}

func TestMutator_IncludePrincipal(t *testing.T) {
	author := validAuthor()
	author.ID = 7
	r := &fakeRequester{status: http.StatusOK}
	m := newAuthorMutator(r, nil)

	_, err := m.IncludePrincipal(context.Background(), author, models.Story{ID: 2, LibraryID: 1})
	require.NoError(t, err)
	assert.Equal(t, []call{{http.MethodPost, "/stories/1/2/authors/7?principal"}}, r.calls)
}

func TestMutator_IncludePrincipalNeedsAuthor(t *testing.T) {
	r := &fakeRequester{status: http.StatusOK}
	m := NewMutator(r, nil, models.ModelStory, models.ToStory, func() models.Story {
		return models.NewStory(models.Unpersisted)
	})

	got, err := m.IncludePrincipal(context.Background(), models.Story{ID: 2, LibraryID: 1}, models.Volume{ID: 3, LibraryID: 1})
	assert.Error(t, err)
	assert.Equal(t, models.Unpersisted, got.ID)
	assert.Empty(t, r.calls)
}
