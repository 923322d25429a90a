package hooks

import (
	"library-client/internal/api"
	"library-client/internal/models"
)

// Page converts a 1-based page into limit and offset. A zero pageSize
// means api.DefaultPageSize.
func Page(currentPage, pageSize int) (limit, offset int) {
	limit = pageSize
	if limit <= 0 {
		limit = api.DefaultPageSize
	}
	if currentPage < 1 {
		currentPage = 1
	}
	return limit, limit * (currentPage - 1)
}

// ListPath picks the collection a list fetch reads. A name search covers
// the whole Library even when a parent is given; otherwise a parent scopes
// the list to its children. skip is true when no request should be made:
// an unsaved parent or no current Library.
func ListPath(model models.Model, libraryID int64, parent models.Ref, name string) (path string, skip bool, err error) {
	if name == "" && !parent.IsZero() {
		if !parent.Persisted() {
			return "", true, nil
		}
		path, err = api.Children(parent, model)
		return path, false, err
	}
	if libraryID < 0 {
		return "", true, nil
	}
	path, err = api.Collection(model, libraryID)
	return path, false, err
}
