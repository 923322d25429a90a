package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"library-client/internal/api"
	"library-client/internal/apitest"
	"library-client/internal/auth"
	"library-client/internal/infrastructure/storage"
	"library-client/internal/models"
)

func TestWorkbook_Sheets(t *testing.T) {
	notes := "signed copy"
	isbn := "978-0-552-13106-1"
	two := 2
	c := Catalog{
		Library: models.Library{ID: 1, Name: "Home"},
		Authors: []models.Author{{ID: 10, LibraryID: 1, FirstName: "Terry", LastName: "Pratchett", Active: true,
			Stories: []models.Story{{ID: 30, Name: "Mort", Title: "Mort"}}}},
		Stories: []models.Story{{ID: 30, LibraryID: 1, Name: "Mort", Ordinal: &two, Active: true}},
		Volumes: []models.Volume{{ID: 40, LibraryID: 1, Name: "Mort", ISBN: &isbn, Notes: &notes}},
	}

	f, err := Workbook(c)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetAuthors, SheetSeries, SheetStories, SheetVolumes}, f.GetSheetList())

	rows, err := f.GetRows(SheetAuthors)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"ID", "Last Name", "First Name", "Active", "Series", "Stories", "Volumes", "Notes"}, rows[0])
	assert.Equal(t, "Pratchett", rows[1][1])
	assert.Equal(t, "Mort", rows[1][5])

	rows, err = f.GetRows(SheetSeries)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")

	rows, err = f.GetRows(SheetStories)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2", rows[1][2])

	rows, err = f.GetRows(SheetVolumes)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, isbn, rows[1][2])
	assert.Equal(t, notes, rows[1][9])

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	reopened, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer reopened.Close()
	props, err := reopened.GetDocProps()
	require.NoError(t, err)
	assert.Equal(t, "Home", props.Title)
}

func TestLoad_WalksPages(t *testing.T) {
	ts := apitest.NewHTTPTest(t)
	session := auth.NewManager(ts.OAuthURL(), storage.NewMemoryStore())
	ctx := context.Background()
	_, err := session.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	lib, err := ts.AddLibrary("Home")
	require.NoError(t, err)

	for i := 0; i < pageSize+5; i++ {
		v := models.NewVolume(lib.ID)
		v.Name = "Volume " + string(rune('A'+i/26)) + string(rune('a'+i%26))
		_, err := ts.Add(v)
		require.NoError(t, err)
	}
	a := models.NewAuthor(lib.ID)
	a.FirstName, a.LastName = "Terry", "Pratchett"
	author, err := ts.Add(a)
	require.NoError(t, err)
	s := models.NewSeries(lib.ID)
	s.Name = "Discworld"
	series, err := ts.Add(s)
	require.NoError(t, err)
	require.NoError(t, ts.Link(series, author, true))

	c, err := Load(ctx, api.NewClient(ts.BaseURL(), session), lib)
	require.NoError(t, err)
	assert.Len(t, c.Volumes, pageSize+5)
	require.Len(t, c.Authors, 1)
	require.Len(t, c.Authors[0].Series, 1)
	assert.Equal(t, "Discworld", c.Authors[0].Series[0].Title)
	require.Len(t, c.Series, 1)
	assert.Empty(t, c.Stories)
}
