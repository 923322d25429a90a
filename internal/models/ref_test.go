package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefOf(t *testing.T) {
	s := Series{ID: 3, LibraryID: 1}
	assert.Equal(t, Ref{Model: ModelSeries, ID: 3, LibraryID: 1}, RefOf(s))

	l := Library{ID: 1}
	assert.Equal(t, Ref{Model: ModelLibrary, ID: 1, LibraryID: 1}, RefOf(l))

	assert.True(t, RefOf(nil).IsZero())
}

func TestRefCanParent(t *testing.T) {
	assert.True(t, Ref{Model: ModelStory}.CanParent())
	assert.True(t, Ref{Model: ModelLibrary}.CanParent())
	assert.False(t, Ref{Model: ModelUser}.CanParent())
	assert.False(t, Ref{}.CanParent())
}

func TestAssociable(t *testing.T) {
	assert.True(t, Associable(ModelSeries, ModelAuthor))
	assert.True(t, Associable(ModelAuthor, ModelSeries))
	assert.True(t, Associable(ModelStory, ModelVolume))
	assert.False(t, Associable(ModelSeries, ModelVolume))
	assert.False(t, Associable(ModelLibrary, ModelAuthor), "library ownership is not an association")
	assert.True(t, Related(ModelLibrary, ModelAuthor))
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("series:12", 3)
	require.NoError(t, err)
	assert.Equal(t, Ref{Model: ModelSeries, ID: 12, LibraryID: 3}, r)
	assert.Equal(t, "series:12", r.String())

	r, err = ParseRef("Libraries:4", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(4), r.LibraryID)

	_, err = ParseRef("series", 3)
	assert.Error(t, err)
	_, err = ParseRef("shelf:1", 3)
	assert.Error(t, err)
	_, err = ParseRef("series:x", 3)
	assert.Error(t, err)
}
