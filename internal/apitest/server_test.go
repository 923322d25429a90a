package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-client/internal/models"
)

func login(t *testing.T, ts *Test, username, password string) TokenResponse {
	t.Helper()
	resp, err := http.PostForm(ts.OAuthURL()+"/token", url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tr TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	return tr
}

func call(t *testing.T, ts *Test, token, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, ts.BaseURL()+path, r)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestToken_PasswordGrant(t *testing.T) {
	ts := NewHTTPTest(t)

	tr := login(t, ts, "admin", "secret")
	assert.NotEmpty(t, tr.AccessToken)
	assert.NotEmpty(t, tr.RefreshToken)
	assert.Equal(t, ScopeSuperuser, tr.Scope)
	assert.Equal(t, int64(900), tr.ExpiresIn)
}

func TestToken_Rejects(t *testing.T) {
	ts := NewHTTPTest(t)

	cases := map[string]url.Values{
		"wrong password": {"grant_type": {"password"}, "username": {"admin"}, "password": {"nope"}},
		"unknown user":   {"grant_type": {"password"}, "username": {"ghost"}, "password": {"secret"}},
		"bad refresh":    {"grant_type": {"refresh_token"}, "refresh_token": {"garbage"}},
		"bad grant":      {"grant_type": {"client_credentials"}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			resp, err := http.PostForm(ts.OAuthURL()+"/token", form)
			require.NoError(t, err)
			resp.Body.Close()
			assert.GreaterOrEqual(t, resp.StatusCode, 400)
		})
	}
}

func TestToken_RefreshAndRevoke(t *testing.T) {
	ts := NewHTTPTest(t)
	tr := login(t, ts, "admin", "secret")

	resp, err := http.PostForm(ts.OAuthURL()+"/token", url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {tr.RefreshToken},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodDelete, ts.OAuthURL()+"/token", nil)
	req.Header.Set("Authorization", "Bearer "+tr.AccessToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	status, _ := call(t, ts, tr.AccessToken, http.MethodGet, "/libraries", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAPI_RequiresToken(t *testing.T) {
	ts := NewHTTPTest(t)

	resp, err := http.Get(ts.BaseURL() + "/libraries")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_UsersNeedSuperuser(t *testing.T) {
	ts := NewHTTPTest(t)
	_, err := ts.AddUser("reader", "pw", "library:read")
	require.NoError(t, err)

	tr := login(t, ts, "reader", "pw")
	status, _ := call(t, ts, tr.AccessToken, http.MethodGet, "/users", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, ts, tr.AccessToken, http.MethodGet, "/libraries", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAPI_CRUDAndUniqueness(t *testing.T) {
	ts := NewHTTPTest(t)
	lib, err := ts.AddLibrary("Home")
	require.NoError(t, err)
	token := login(t, ts, "admin", "secret").AccessToken

	status, data := call(t, ts, token, http.MethodPost, "/series/"+itoa(lib.ID), map[string]any{"name": "Discworld"})
	require.Equal(t, http.StatusCreated, status, string(data))
	created, err := models.ToSeries(data)
	require.NoError(t, err)
	assert.Equal(t, lib.ID, created.LibraryID)
	assert.True(t, created.Active)

	status, _ = call(t, ts, token, http.MethodPost, "/series/"+itoa(lib.ID), map[string]any{"name": "  DISCWORLD "})
	assert.Equal(t, http.StatusConflict, status)

	status, data = call(t, ts, token, http.MethodGet, "/series/"+itoa(lib.ID)+"/exact/discworld", nil)
	require.Equal(t, http.StatusOK, status)
	found, err := models.ToSeries(data)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	status, _ = call(t, ts, token, http.MethodDelete, "/series/"+itoa(lib.ID)+"/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, ts, token, http.MethodGet, "/series/"+itoa(lib.ID)+"/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_ValidationIsBadRequest(t *testing.T) {
	ts := NewHTTPTest(t)
	lib, err := ts.AddLibrary("Home")
	require.NoError(t, err)
	token := login(t, ts, "admin", "secret").AccessToken

	status, _ := call(t, ts, token, http.MethodPost, "/stories/"+itoa(lib.ID), map[string]any{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAPI_UnknownLibrary(t *testing.T) {
	ts := NewHTTPTest(t)
	token := login(t, ts, "admin", "secret").AccessToken

	status, _ := call(t, ts, token, http.MethodGet, "/authors/99", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPI_ListFilters(t *testing.T) {
	ts := NewHTTPTest(t)
	lib, err := ts.AddLibrary("Home")
	require.NoError(t, err)
	for _, name := range []string{"Alpha", "Beta", "Gamma", "Đà Lạt"} {
		v := models.NewVolume(lib.ID)
		v.Name = name
		_, err := ts.Add(v)
		require.NoError(t, err)
	}
	retired := models.NewVolume(lib.ID)
	retired.Name = "Zeta"
	retired.Active = false
	_, err = ts.Add(retired)
	require.NoError(t, err)
	token := login(t, ts, "admin", "secret").AccessToken

	names := func(query string) []string {
		status, data := call(t, ts, token, http.MethodGet, "/volumes/"+itoa(lib.ID)+query, nil)
		require.Equal(t, http.StatusOK, status)
		volumes, err := models.ToVolumes(data)
		require.NoError(t, err)
		out := []string{}
		for _, v := range volumes {
			out = append(out, v.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Zeta", "Đà Lạt"}, names(""))
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma", "Đà Lạt"}, names("?active"))
	assert.Equal(t, []string{"Beta", "Gamma"}, names("?limit=2&offset=1"))
	assert.Equal(t, []string{"Đà Lạt"}, names("?name=da%20lat"))
}

func TestAPI_Associations(t *testing.T) {
	ts := NewHTTPTest(t)
	lib, err := ts.AddLibrary("Home")
	require.NoError(t, err)
	token := login(t, ts, "admin", "secret").AccessToken

	a := models.NewAuthor(lib.ID)
	a.FirstName, a.LastName = "Terry", "Pratchett"
	author, err := ts.Add(a)
	require.NoError(t, err)
	s := models.NewStory(lib.ID)
	s.Name = "Mort"
	story, err := ts.Add(s)
	require.NoError(t, err)

	base := "/stories/" + itoa(lib.ID) + "/" + itoa(story.EntityID()) + "/authors"
	status, _ := call(t, ts, token, http.MethodPost, base+"/"+itoa(author.EntityID())+"?principal", nil)
	require.Equal(t, http.StatusOK, status)

	status, data := call(t, ts, token, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	authors, err := models.ToAuthors(data)
	require.NoError(t, err)
	require.Len(t, authors, 1)
	require.NotNil(t, authors[0].Principal)
	assert.True(t, *authors[0].Principal)

	// the link is visible from the other side
	status, data = call(t, ts, token, http.MethodGet, "/authors/"+itoa(lib.ID)+"/"+itoa(author.EntityID())+"?withStories", nil)
	require.Equal(t, http.StatusOK, status)
	got, err := models.ToAuthor(data)
	require.NoError(t, err)
	require.Len(t, got.Stories, 1)
	assert.Equal(t, "Mort", got.Stories[0].Name)

	status, _ = call(t, ts, token, http.MethodDelete, base+"/"+itoa(author.EntityID()), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, ts, token, http.MethodDelete, base+"/"+itoa(author.EntityID()), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDB_DeleteLibraryCascades(t *testing.T) {
	db := NewDB(4)
	lib, err := db.Insert(models.Unpersisted, models.Library{Name: "Home", Scope: "home", Active: true})
	require.NoError(t, err)
	v := models.NewVolume(lib.EntityID())
	v.Name = "Alpha"
	_, err = db.Insert(lib.EntityID(), v)
	require.NoError(t, err)

	_, err = db.Delete(models.ModelLibrary, lib.EntityID(), lib.EntityID())
	require.NoError(t, err)
	assert.Empty(t, db.rows[models.ModelVolume])

	_, err = db.List(models.ModelVolume, lib.EntityID(), Filter{}, With{})
	assert.ErrorIs(t, err, ErrLibraryAbsent)
}

func itoa(id int64) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
