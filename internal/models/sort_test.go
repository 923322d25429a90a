package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ordinal(n int) *int { return &n }

func TestSortAuthors(t *testing.T) {
	in := []Author{
		{ID: 1, LibraryID: 1, LastName: "Zed", FirstName: "A"},
		{ID: 2, LibraryID: 1, LastName: "Amy", FirstName: "B"},
	}

	out := SortAuthors(in)

	assert.Equal(t, []int64{2, 1}, authorIDs(out))
	assert.Equal(t, []int64{1, 2}, authorIDs(in), "input must not be reordered")
}

func TestSortAuthors_LibraryThenNames(t *testing.T) {
	in := []Author{
		{ID: 1, LibraryID: 2, LastName: "Adams", FirstName: "Z"},
		{ID: 2, LibraryID: 1, LastName: "smith", FirstName: "B"},
		{ID: 3, LibraryID: 1, LastName: "Smith", FirstName: "a"},
		{ID: 4, LibraryID: 1, LastName: "Brown", FirstName: "C"},
	}

	assert.Equal(t, []int64{4, 3, 2, 1}, authorIDs(SortAuthors(in)))
}

func TestSortStoriesByOrdinal(t *testing.T) {
	in := []Story{
		{ID: 1, Name: "Unnumbered"},
		{ID: 2, Name: "Second", Ordinal: ordinal(2)},
		{ID: 3, Name: "First", Ordinal: ordinal(1)},
		{ID: 4, Name: "Also Second", Ordinal: ordinal(2)},
	}

	out := SortStoriesByOrdinal(in)

	ids := make([]int64, len(out))
	for i, s := range out {
		ids[i] = s.ID
	}
	assert.Equal(t, []int64{3, 4, 2, 1}, ids)
}

func TestSeriesSortRelations(t *testing.T) {
	s := Series{
		Authors: []Author{{ID: 1, LastName: "Zed"}, {ID: 2, LastName: "Amy"}},
		Stories: []Story{{ID: 1, Name: "B", Ordinal: ordinal(2)}, {ID: 2, Name: "A", Ordinal: ordinal(1)}},
	}

	sorted := s.SortRelations()

	assert.Equal(t, []int64{2, 1}, authorIDs(sorted.Authors))
	assert.Equal(t, int64(2), sorted.Stories[0].ID)
	assert.Equal(t, int64(1), s.Stories[0].ID, "receiver is a copy")
}

func TestSortEmpty(t *testing.T) {
	assert.Nil(t, SortAuthors(nil))
	assert.Nil(t, SortVolumes(nil))
}

func authorIDs(list []Author) []int64 {
	ids := make([]int64, len(list))
	for i, a := range list {
		ids[i] = a.ID
	}
	return ids
}
