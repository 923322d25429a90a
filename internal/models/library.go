package models

import "encoding/json"

// Library owns every other entity except Users.
type Library struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Scope  string  `json:"scope"`
	Notes  *string `json:"notes"`
	Active bool    `json:"active"`

	Authors []Author `json:"authors,omitempty"`
	Series  []Series `json:"series,omitempty"`
	Stories []Story  `json:"stories,omitempty"`
	Volumes []Volume `json:"volumes,omitempty"`

	Title string `json:"-"`
	Model Model  `json:"-"`
}

// NewLibrary returns an unsaved Library.
func NewLibrary() Library {
	l := Library{ID: Unpersisted, Active: true}
	l.normalize()
	return l
}

func (l *Library) UnmarshalJSON(data []byte) error {
	type alias Library
	var opt optional
	if err := json.Unmarshal(data, &opt); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*alias)(l)); err != nil {
		return err
	}
	l.ID = opt.id()
	l.Active = opt.active()
	return nil
}

func (l *Library) normalize() {
	l.Model = ModelLibrary
	l.Title = l.Name
	l.Authors = compact(l.Authors)
	l.Series = compact(l.Series)
	l.Stories = compact(l.Stories)
	l.Volumes = compact(l.Volumes)
	normalizeAll(l.Authors)
	normalizeAll(l.Series)
	normalizeAll(l.Stories)
	normalizeAll(l.Volumes)
}

// A Library is its own library.
func (l Library) EntityID() int64        { return l.ID }
func (l Library) EntityLibraryID() int64 { return l.ID }
func (l Library) EntityModel() Model     { return ModelLibrary }
func (l Library) EntityTitle() string    { return l.Title }

// SortRelations returns a copy with nested collections in canonical order.
func (l Library) SortRelations() Library {
	l.Authors = SortAuthors(l.Authors)
	l.Series = SortSeries(l.Series)
	l.Stories = SortStories(l.Stories)
	l.Volumes = SortVolumes(l.Volumes)
	return l
}

// ToLibrary converts one raw Library object.
func ToLibrary(raw []byte) (Library, error) {
	return decodeOne[Library](raw)
}

// ToLibraries converts a raw array of Libraries.
func ToLibraries(raw []byte) ([]Library, error) {
	return decodeMany[Library](raw)
}
