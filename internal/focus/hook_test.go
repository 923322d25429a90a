package focus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-client/internal/api"
	"library-client/internal/apitest"
	"library-client/internal/association"
	"library-client/internal/auth"
	"library-client/internal/domains/author"
	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
)

type env struct {
	session *auth.Manager
	library models.Library
}

func (e env) LoggedIn() bool          { return e.session.LoggedIn() }
func (e env) Library() models.Library { return e.library }

type fixture struct {
	ts      *apitest.Test
	session *auth.Manager
	client  *api.Client
	lib     models.Library
	series  models.Series
	authors []models.Author
}

func setup(t *testing.T, login bool) *fixture {
	t.Helper()
	ts := apitest.NewHTTPTest(t)
	session := auth.NewManager(ts.OAuthURL(), storage.NewMemoryStore())
	f := &fixture{ts: ts, session: session, client: api.NewClient(ts.BaseURL(), session)}

	var err error
	f.lib, err = ts.AddLibrary("Home")
	require.NoError(t, err)

	s := models.NewSeries(f.lib.ID)
	s.Name = "Discworld"
	e, err := ts.Add(s)
	require.NoError(t, err)
	f.series = e.(models.Series)

	for _, name := range [][2]string{{"Terry", "Pratchett"}, {"Neil", "Gaiman"}} {
		a := models.NewAuthor(f.lib.ID)
		a.FirstName, a.LastName = name[0], name[1]
		e, err := ts.Add(a)
		require.NoError(t, err)
		f.authors = append(f.authors, e.(models.Author))
	}
	require.NoError(t, ts.Link(f.series, f.authors[0], true))

	for i, name := range []string{"Mort", "The Colour of Magic"} {
		st := models.NewStory(f.lib.ID)
		st.Name = name
		ordinal := 2 - i
		st.Ordinal = &ordinal
		e, err := ts.Add(st)
		require.NoError(t, err)
		require.NoError(t, ts.Link(f.series, e, false))
	}

	if login {
		_, err := session.Login(context.Background(), "admin", "secret")
		require.NoError(t, err)
	}
	ts.ResetRequests()
	return f
}

func (f *fixture) env() env {
	return env{session: f.session, library: f.lib}
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestFetch_PopulatesRelations(t *testing.T) {
	f := setup(t, true)
	h := New(f.client, f.env(), nil)
	defer h.Close()

	stub := models.NewSeries(f.lib.ID)
	stub.ID = f.series.ID
	s, err := h.Fetch(waitCtx(t), stub)
	require.NoError(t, err)
	require.NoError(t, s.Err)

	got := s.Data.(models.Series)
	assert.Equal(t, "Discworld", got.Name)
	require.Len(t, got.Authors, 1)
	assert.Equal(t, "Pratchett", got.Authors[0].LastName)
	require.NotNil(t, got.Library)
	assert.Equal(t, "Home", got.Library.Name)

	// reading order, not name order
	require.Len(t, got.Stories, 2)
	assert.Equal(t, "The Colour of Magic", got.Stories[0].Name)
	assert.Equal(t, "Mort", got.Stories[1].Name)
}

func TestFetch_LoggedOutReturnsStub(t *testing.T) {
	f := setup(t, false)
	h := New(f.client, f.env(), nil)
	defer h.Close()

	stub := models.NewAuthor(f.lib.ID)
	stub.ID = f.authors[0].ID
	stub.FirstName = "stale"
	s, err := h.Fetch(waitCtx(t), stub)
	require.NoError(t, err)
	assert.NoError(t, s.Err)
	assert.Equal(t, stub, s.Data)
	assert.Zero(t, f.ts.Requests())
}

func TestFetch_UnsavedReturnsStub(t *testing.T) {
	f := setup(t, true)
	h := New(f.client, f.env(), nil)
	defer h.Close()

	stub := models.NewVolume(f.lib.ID)
	s, err := h.Fetch(waitCtx(t), stub)
	require.NoError(t, err)
	assert.Equal(t, stub, s.Data)
	assert.Zero(t, f.ts.Requests())
}

func TestFetch_LibraryIsCurrentLibrary(t *testing.T) {
	f := setup(t, true)
	h := New(f.client, f.env(), nil)
	defer h.Close()

	s, err := h.Fetch(waitCtx(t), models.Library{ID: f.lib.ID})
	require.NoError(t, err)
	assert.Equal(t, f.lib, s.Data)
	assert.Zero(t, f.ts.Requests())
}

func TestFetch_NotFoundKeepsStub(t *testing.T) {
	f := setup(t, true)
	h := New(f.client, f.env(), nil)
	defer h.Close()

	stub := models.NewStory(f.lib.ID)
	stub.ID = 9999
	s, err := h.Fetch(waitCtx(t), stub)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Err, api.ErrNotFound)
}

func TestRefresh_RefetchesAfterServerChange(t *testing.T) {
	f := setup(t, true)
	h := New(f.client, f.env(), nil)
	defer h.Close()

	_, err := h.Fetch(waitCtx(t), f.series)
	require.NoError(t, err)
	require.NoError(t, f.ts.Link(f.series, f.authors[1], false))

	h.Refresh()
	s, err := h.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Len(t, s.Data.(models.Series).Authors, 2)
}

func TestBus_PatchesFocusedCopy(t *testing.T) {
	f := setup(t, true)
	bus := association.NewBus()
	h := New(f.client, f.env(), bus)
	defer h.Close()

	before, err := h.Fetch(waitCtx(t), f.series)
	require.NoError(t, err)
	held := before.Data.(models.Series)
	require.Len(t, held.Authors, 1)

	m := author.NewMutator(f.client, bus)
	_, err = m.Include(context.Background(), f.authors[1], held)
	require.NoError(t, err)

	after := h.Snapshot().Data.(models.Series)
	require.Len(t, after.Authors, 2)
	assert.Len(t, held.Authors, 1, "the caller's copy is untouched")

	_, err = m.Exclude(context.Background(), f.authors[0], after)
	require.NoError(t, err)
	final := h.Snapshot().Data.(models.Series)
	require.Len(t, final.Authors, 1)
	assert.Equal(t, f.authors[1].ID, final.Authors[0].ID)
}
