package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-client/internal/api"
	"library-client/internal/apitest"
	"library-client/internal/auth"
	"library-client/internal/hooks"
	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
)

func TestLibraries_Lifecycle(t *testing.T) {
	ts := apitest.NewHTTPTest(t)
	session := auth.NewManager(ts.OAuthURL(), storage.NewMemoryStore())
	ctx := context.Background()
	_, err := session.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	client := api.NewClient(ts.BaseURL(), session)
	m := NewMutator(client)

	for _, name := range []string{"Zoo", "Attic"} {
		l := models.NewLibrary()
		l.Name, l.Scope = name, name
		_, err := m.Insert(ctx, l)
		require.NoError(t, err)
	}

	dup := models.NewLibrary()
	dup.Name, dup.Scope = "zoo", "zoo2"
	got, err := m.Insert(ctx, dup)
	assert.ErrorIs(t, err, api.ErrNotUnique)
	assert.Equal(t, models.Unpersisted, got.ID)

	all, err := All(ctx, client)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Attic", all[0].Name)

	page, err := Fetch(ctx, client, hooks.Scoped[Params]{
		Params:   Params{CurrentPage: 1, PageSize: 1, Name: "zo"},
		LoggedIn: true,
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Zoo", page[0].Name)

	found, ok, err := Exact(ctx, client, "Attic")
	require.NoError(t, err)
	require.True(t, ok)
	removed, err := m.Remove(ctx, found)
	require.NoError(t, err)
	assert.Equal(t, found.ID, removed.ID)

	ok, err = Unique(ctx, client, models.Library{ID: models.Unpersisted, Name: "Attic"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLibraries_WritesNeedSuperuser(t *testing.T) {
	ts := apitest.NewHTTPTest(t)
	_, err := ts.AddUser("reader", "pw", "home:read")
	require.NoError(t, err)
	session := auth.NewManager(ts.OAuthURL(), storage.NewMemoryStore())
	ctx := context.Background()
	_, err = session.Login(ctx, "reader", "pw")
	require.NoError(t, err)

	l := models.NewLibrary()
	l.Name, l.Scope = "Home", "home"
	m := NewMutator(api.NewClient(ts.BaseURL(), session))
	_, err = m.Insert(ctx, l)
	assert.ErrorIs(t, err, api.ErrForbidden)
	assert.ErrorIs(t, m.Err(), api.ErrForbidden)
}
