package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryParameters(t *testing.T) {
	var missing *string

	assert.Equal(t, "?active&limit=25", QueryParameters(P("active", ""), P("limit", 25), P("name", nil)))
	assert.Equal(t, "?limit=25", QueryParameters(P("name", missing), P("limit", 25)))
	assert.Equal(t, "", QueryParameters(P("name", nil)))
	assert.Equal(t, "", QueryParameters())
}

func TestQueryParameters_OrderAndEscape(t *testing.T) {
	name := "Le Guin & co"
	got := QueryParameters(P("offset", int64(50)), P("name", &name), Flag("withAuthors", true), Flag("withStories", false))
	assert.Equal(t, "?offset=50&name=Le+Guin+%26+co&withAuthors", got)
}

func TestNonEmpty(t *testing.T) {
	assert.Equal(t, "?limit=10", QueryParameters(NonEmpty("name", ""), P("limit", 10)))
	assert.Equal(t, "?name=ann", QueryParameters(NonEmpty("name", "ann")))
}
