// Package export writes the catalog of one Library to an Excel workbook.
package export

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"library-client/internal/domains/author"
	"library-client/internal/domains/series"
	"library-client/internal/domains/story"
	"library-client/internal/domains/volume"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

// pageSize is the page size used to walk each collection.
const pageSize = 100

// Catalog is everything a Library owns, with relations expanded.
type Catalog struct {
	Library models.Library
	Authors []models.Author
	Series  []models.Series
	Stories []models.Story
	Volumes []models.Volume
}

// Load reads every page of the four collections of lib in parallel.
func Load(ctx context.Context, client hooks.Requester, lib models.Library) (Catalog, error) {
	c := Catalog{Library: lib}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		c.Authors, err = pages(func(n int) ([]models.Author, error) {
			return author.Fetch(ctx, client, hooks.Scoped[author.Params]{
				Params:    author.Params{CurrentPage: n, PageSize: pageSize, WithSeries: true, WithStories: true, WithVolumes: true},
				LoggedIn:  true,
				LibraryID: lib.ID,
			})
		})
		return err
	})
	g.Go(func() (err error) {
		c.Series, err = pages(func(n int) ([]models.Series, error) {
			return series.Fetch(ctx, client, hooks.Scoped[series.Params]{
				Params:    series.Params{CurrentPage: n, PageSize: pageSize, WithAuthors: true, WithStories: true},
				LoggedIn:  true,
				LibraryID: lib.ID,
			})
		})
		return err
	})
	g.Go(func() (err error) {
		c.Stories, err = pages(func(n int) ([]models.Story, error) {
			return story.Fetch(ctx, client, hooks.Scoped[story.Params]{
				Params:    story.Params{CurrentPage: n, PageSize: pageSize, WithAuthors: true, WithSeries: true},
				LoggedIn:  true,
				LibraryID: lib.ID,
			})
		})
		return err
	})
	g.Go(func() (err error) {
		c.Volumes, err = pages(func(n int) ([]models.Volume, error) {
			return volume.Fetch(ctx, client, hooks.Scoped[volume.Params]{
				Params:    volume.Params{CurrentPage: n, PageSize: pageSize, WithAuthors: true, WithStories: true},
				LoggedIn:  true,
				LibraryID: lib.ID,
			})
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return c, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

func pages[T any](page func(n int) ([]T, error)) ([]T, error) {
	var out []T
	for n := 1; ; n++ {
		batch, err := page(n)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < pageSize {
			return out, nil
		}
	}
}

// Sheet names, in workbook order.
const (
	SheetAuthors = "Authors"
	SheetSeries  = "Series"
	SheetStories = "Stories"
	SheetVolumes = "Volumes"
)

// Workbook builds one sheet per collection with a bold header row.
func Workbook(c Catalog) (*excelize.File, error) {
	f := excelize.NewFile()

	// Rename default sheet
	if err := f.SetSheetName("Sheet1", SheetAuthors); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetSeries, SheetStories, SheetVolumes} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{SheetAuthors, []string{"ID", "Last Name", "First Name", "Active", "Series", "Stories", "Volumes", "Notes"}, authorRows(c.Authors)},
		{SheetSeries, []string{"ID", "Name", "Copyright", "Active", "Authors", "Stories", "Notes"}, seriesRows(c.Series)},
		{SheetStories, []string{"ID", "Name", "Ordinal", "Copyright", "Active", "Authors", "Series", "Notes"}, storyRows(c.Stories)},
		{SheetVolumes, []string{"ID", "Name", "ISBN", "Type", "Location", "Read", "Active", "Authors", "Stories", "Notes"}, volumeRows(c.Volumes)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.headers, s.rows, headerStyle); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
	}

	if err := f.SetDocProps(&excelize.DocProperties{Title: c.Library.Name, Creator: "librarian"}); err != nil {
		return nil, err
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, style int) error {
	// Row 1: Header
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}

	// Data rows from row 2
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func authorRows(list []models.Author) [][]any {
	rows := make([][]any, 0, len(list))
	for _, a := range list {
		rows = append(rows, []any{a.ID, a.LastName, a.FirstName, a.Active,
			titles(a.Series), titles(a.Stories), titles(a.Volumes), text(a.Notes)})
	}
	return rows
}

func seriesRows(list []models.Series) [][]any {
	rows := make([][]any, 0, len(list))
	for _, s := range list {
		rows = append(rows, []any{s.ID, s.Name, text(s.Copyright), s.Active,
			titles(s.Authors), titles(models.SortStoriesByOrdinal(s.Stories)), text(s.Notes)})
	}
	return rows
}

func storyRows(list []models.Story) [][]any {
	rows := make([][]any, 0, len(list))
	for _, s := range list {
		ordinal := ""
		if s.Ordinal != nil {
			ordinal = strconv.Itoa(*s.Ordinal)
		}
		rows = append(rows, []any{s.ID, s.Name, ordinal, text(s.Copyright), s.Active,
			titles(s.Authors), titles(s.Series), text(s.Notes)})
	}
	return rows
}

func volumeRows(list []models.Volume) [][]any {
	rows := make([][]any, 0, len(list))
	for _, v := range list {
		rows = append(rows, []any{v.ID, v.Name, text(v.ISBN), text(v.Type), text(v.Location), v.Read, v.Active,
			titles(v.Authors), titles(v.Stories), text(v.Notes)})
	}
	return rows
}

// titles joins related entity titles by "|".
func titles[T models.Entity](list []T) string {
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = e.EntityTitle()
	}
	return strings.Join(out, "|")
}

func text(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
