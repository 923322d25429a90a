package series

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-client/internal/api"
	"library-client/internal/apitest"
	"library-client/internal/association"
	"library-client/internal/auth"
	"library-client/internal/hooks"
	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
)

func TestSeries_AuthorScopedMembership(t *testing.T) {
	ts := apitest.NewHTTPTest(t)
	session := auth.NewManager(ts.OAuthURL(), storage.NewMemoryStore())
	ctx := context.Background()
	_, err := session.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	client := api.NewClient(ts.BaseURL(), session)
	lib, err := ts.AddLibrary("Home")
	require.NoError(t, err)

	a := models.NewAuthor(lib.ID)
	a.FirstName, a.LastName = "Ursula", "Le Guin"
	e, err := ts.Add(a)
	require.NoError(t, err)
	author := e.(models.Author)

	bus := association.NewBus()
	membership := association.NewMembership(author)
	defer membership.Track(bus)()

	m := NewMutator(client, bus)
	s := models.NewSeries(lib.ID)
	s.Name = "Earthsea"
	earthsea, err := m.Insert(ctx, s)
	require.NoError(t, err)
	assert.False(t, membership.Included(earthsea))

	_, err = m.Include(ctx, earthsea, author)
	require.NoError(t, err)
	assert.True(t, membership.Included(earthsea))

	got, err := Fetch(ctx, client, hooks.Scoped[Params]{
		Params:    Params{CurrentPage: 1, Parent: models.RefOf(author)},
		LoggedIn:  true,
		LibraryID: lib.ID,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Earthsea", got[0].Name)

	_, err = m.Exclude(ctx, earthsea, author)
	require.NoError(t, err)
	assert.False(t, membership.Included(earthsea))

	ok, err := Unique(ctx, client, models.Series{ID: models.Unpersisted, LibraryID: lib.ID, Name: "earthsea"})
	require.NoError(t, err)
	assert.False(t, ok)
}
