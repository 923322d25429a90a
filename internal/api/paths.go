package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"library-client/internal/models"
)

// segments is the single dispatch table from discriminant to REST collection.
var segments = map[models.Model]string{
	models.ModelAuthor:  "authors",
	models.ModelLibrary: "libraries",
	models.ModelSeries:  "series",
	models.ModelStory:   "stories",
	models.ModelUser:    "users",
	models.ModelVolume:  "volumes",
}

// global models are not owned by a Library and carry no libraryId segment.
func global(m models.Model) bool {
	return m == models.ModelLibrary || m == models.ModelUser
}

// Segment returns the collection path segment of a model.
func Segment(m models.Model) (string, error) {
	seg, ok := segments[m]
	if !ok {
		return "", fmt.Errorf("no REST collection for model %q", m)
	}
	return seg, nil
}

func join(parts ...string) string {
	return "/" + strings.Join(parts, "/")
}

func id(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Collection is the list and insert path: /authors/{libraryId}, /libraries, /users.
func Collection(m models.Model, libraryID int64) (string, error) {
	seg, err := Segment(m)
	if err != nil {
		return "", err
	}
	if global(m) {
		return join(seg), nil
	}
	return join(seg, id(libraryID)), nil
}

// Item is the detail, update and delete path of one entity.
func Item(ref models.Ref) (string, error) {
	seg, err := Segment(ref.Model)
	if err != nil {
		return "", err
	}
	if global(ref.Model) {
		return join(seg, id(ref.ID)), nil
	}
	return join(seg, id(ref.LibraryID), id(ref.ID)), nil
}

// Exact is the uniqueness probe path. Authors take first and last name,
// every other model takes a single name.
func Exact(m models.Model, libraryID int64, names ...string) (string, error) {
	seg, err := Segment(m)
	if err != nil {
		return "", err
	}
	want := 1
	if m == models.ModelAuthor {
		want = 2
	}
	if len(names) != want {
		return "", fmt.Errorf("exact %s: want %d name parts, got %d", m, want, len(names))
	}

	parts := []string{seg}
	if !global(m) {
		parts = append(parts, id(libraryID))
	}
	parts = append(parts, "exact")
	for _, n := range names {
		parts = append(parts, url.PathEscape(n))
	}
	return join(parts...), nil
}

// Children is the parent scoped list path. A Library parent is plain library scope.
func Children(parent models.Ref, child models.Model) (string, error) {
	if parent.Model == models.ModelLibrary {
		return Collection(child, parent.ID)
	}
	if !models.Related(parent.Model, child) {
		return "", fmt.Errorf("%s has no %s collection", parent.Model, child)
	}
	pseg, err := Segment(parent.Model)
	if err != nil {
		return "", err
	}
	cseg, err := Segment(child)
	if err != nil {
		return "", err
	}
	return join(pseg, id(parent.LibraryID), id(parent.ID), cseg), nil
}

// Association is the include (POST) and exclude (DELETE) path. Every parent
// model uses the same nested shape.
func Association(parent, child models.Ref) (string, error) {
	if !models.Associable(parent.Model, child.Model) {
		return "", fmt.Errorf("%s cannot be associated with %s", child.Model, parent.Model)
	}
	base, err := Children(parent, child.Model)
	if err != nil {
		return "", err
	}
	return base + "/" + id(child.ID), nil
}
