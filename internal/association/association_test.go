package association

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-client/internal/models"
)

func author(id int64, last string) models.Author {
	a := models.NewAuthor(1)
	a.ID, a.LastName, a.FirstName = id, last, "X"
	return a
}

func TestApply_IncludeThenExclude(t *testing.T) {
	a1, a2 := author(1, "One"), author(2, "Two")
	series := models.Series{ID: 5, LibraryID: 1, Name: "Radch", Authors: []models.Author{a1}}
	parent := models.RefOf(series)

	included, ok := Apply(series, Event{Action: Include, Parent: parent, Child: a2})
	require.True(t, ok)
	got := included.(models.Series)
	assert.Equal(t, []int64{1, 2}, authorIDs(got.Authors))
	assert.Equal(t, []int64{1}, authorIDs(series.Authors), "original is not modified")

	excluded, ok := Apply(got, Event{Action: Exclude, Parent: parent, Child: a1})
	require.True(t, ok)
	assert.Equal(t, []int64{2}, authorIDs(excluded.(models.Series).Authors))
	assert.Equal(t, []int64{1, 2}, authorIDs(got.Authors))
}

func TestApply_IncludeIsIdempotent(t *testing.T) {
	a1 := author(1, "One")
	series := models.Series{ID: 5, Authors: []models.Author{a1}}

	out, ok := Apply(series, Event{Action: Include, Parent: models.RefOf(series), Child: a1})
	require.True(t, ok)
	assert.Len(t, out.(models.Series).Authors, 1)
}

func TestApply_ExcludeLastLeavesNil(t *testing.T) {
	v := models.Volume{ID: 3, Stories: []models.Story{{ID: 8}}}

	out, ok := Apply(v, Event{Action: Exclude, Parent: models.RefOf(v), Child: models.Story{ID: 8}})
	require.True(t, ok)
	assert.Nil(t, out.(models.Volume).Stories)
}

func TestApply_Ignores(t *testing.T) {
	series := models.Series{ID: 5}

	_, ok := Apply(series, Event{Action: Include, Parent: models.Ref{Model: models.ModelSeries, ID: 6}, Child: author(1, "A")})
	assert.False(t, ok, "other parent")

	_, ok = Apply(series, Event{Action: Include, Parent: models.RefOf(series), Child: models.Volume{ID: 1}})
	assert.False(t, ok, "series has no volumes")

	_, ok = Apply(nil, Event{Action: Include})
	assert.False(t, ok)
}

func TestMembership(t *testing.T) {
	a1, a2 := author(1, "One"), author(2, "Two")
	story := models.Story{ID: 4, LibraryID: 1, Authors: []models.Author{a1}}
	bus := NewBus()

	m := NewMembership(story)
	stop := m.Track(bus)

	assert.True(t, m.Included(a1))
	assert.False(t, m.Included(a2))
	assert.False(t, m.Included(models.Series{ID: 1}))

	bus.Publish(Event{Action: Include, Parent: models.RefOf(story), Child: a2})
	assert.True(t, m.Included(a2))

	bus.Publish(Event{Action: Exclude, Parent: models.RefOf(story), Child: a1})
	assert.False(t, m.Included(a1))

	bus.Publish(Event{Action: Include, Parent: models.Ref{Model: models.ModelStory, ID: 99}, Child: a1})
	assert.False(t, m.Included(a1), "events for other parents are ignored")

	stop()
	bus.Publish(Event{Action: Include, Parent: models.RefOf(story), Child: a1})
	assert.False(t, m.Included(a1), "no longer tracking")
}

func TestBus_UnsubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	var calls []string
	var stopA func()
	stopA = bus.Subscribe(func(Event) {
		calls = append(calls, "a")
		stopA()
	})
	bus.Subscribe(func(Event) { calls = append(calls, "b") })

	bus.Publish(Event{Action: Include})
	bus.Publish(Event{Action: Include})

	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func authorIDs(list []models.Author) []int64 {
	out := make([]int64, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}
