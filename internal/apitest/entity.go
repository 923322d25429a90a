package apitest

import (
	"library-client/internal/models"
	"library-client/internal/shared/utils"
)

// owned models live inside one Library.
func owned(m models.Model) bool {
	switch m {
	case models.ModelAuthor, models.ModelSeries, models.ModelStory, models.ModelVolume:
		return true
	}
	return false
}

// assign sets the server controlled fields and drops nested relations,
// which are never stored on the row itself.
func assign(e models.Entity, id, libraryID int64) models.Entity {
	switch v := e.(type) {
	case models.Author:
		v.ID, v.LibraryID = id, libraryID
		v.Principal, v.Library, v.Series, v.Stories, v.Volumes = nil, nil, nil, nil, nil
		return v
	case models.Library:
		v.ID = id
		v.Authors, v.Series, v.Stories, v.Volumes = nil, nil, nil, nil
		return v
	case models.Series:
		v.ID, v.LibraryID = id, libraryID
		v.Library, v.Authors, v.Stories = nil, nil, nil
		return v
	case models.Story:
		v.ID, v.LibraryID = id, libraryID
		v.Library, v.Authors, v.Series, v.Volumes = nil, nil, nil, nil
		return v
	case models.User:
		v.ID = id
		v.Password = nil
		return v
	case models.Volume:
		v.ID, v.LibraryID = id, libraryID
		v.Library, v.Authors, v.Stories = nil, nil, nil
		return v
	}
	return e
}

// uniqueKey is the value that must not repeat within a Library (or
// globally for Libraries and Users).
func uniqueKey(e models.Entity) string {
	switch v := e.(type) {
	case models.Author:
		return utils.Fold(v.FirstName) + "\x00" + utils.Fold(v.LastName)
	case models.User:
		return utils.Fold(v.Username)
	}
	return utils.Fold(name(e))
}

// searchText is what the name (or username) filter matches against.
func searchText(e models.Entity) string {
	switch v := e.(type) {
	case models.Author:
		return v.FirstName + " " + v.LastName
	case models.User:
		return v.Username
	}
	return name(e)
}

func name(e models.Entity) string {
	switch v := e.(type) {
	case models.Library:
		return v.Name
	case models.Series:
		return v.Name
	case models.Story:
		return v.Name
	case models.Volume:
		return v.Name
	}
	return e.EntityTitle()
}

func active(e models.Entity) bool {
	switch v := e.(type) {
	case models.Author:
		return v.Active
	case models.Library:
		return v.Active
	case models.Series:
		return v.Active
	case models.Story:
		return v.Active
	case models.User:
		return v.Active
	case models.Volume:
		return v.Active
	}
	return false
}

func withPrincipal(a models.Author, principal bool) models.Author {
	a.Principal = &principal
	return a
}

func sortEntities(m models.Model, list []models.Entity) []models.Entity {
	switch m {
	case models.ModelAuthor:
		return erase(models.SortAuthors(typed[models.Author](list)))
	case models.ModelLibrary:
		return erase(models.SortLibraries(typed[models.Library](list)))
	case models.ModelSeries:
		return erase(models.SortSeries(typed[models.Series](list)))
	case models.ModelStory:
		return erase(models.SortStories(typed[models.Story](list)))
	case models.ModelUser:
		return erase(models.SortUsers(typed[models.User](list)))
	case models.ModelVolume:
		return erase(models.SortVolumes(typed[models.Volume](list)))
	}
	return list
}

func typed[T models.Entity](list []models.Entity) []T {
	out := make([]T, 0, len(list))
	for _, e := range list {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func erase[T models.Entity](list []T) []models.Entity {
	out := make([]models.Entity, len(list))
	for i, e := range list {
		out[i] = e
	}
	return out
}
