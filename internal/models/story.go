package models

import "encoding/json"

// Story is a single work, possibly part of Series and published in Volumes.
type Story struct {
	ID        int64   `json:"id"`
	LibraryID int64   `json:"libraryId"`
	Name      string  `json:"name"`
	Copyright *string `json:"copyright"`
	Notes     *string `json:"notes"`
	// Ordinal is the position within a Series.
	Ordinal *int `json:"ordinal"`
	Active  bool `json:"active"`

	Library *Library `json:"library,omitempty"`
	Authors []Author `json:"authors,omitempty"`
	Series  []Series `json:"series,omitempty"`
	Volumes []Volume `json:"volumes,omitempty"`

	Title string `json:"-"`
	Model Model  `json:"-"`
}

// NewStory returns an unsaved Story for the given Library.
func NewStory(libraryID int64) Story {
	s := Story{ID: Unpersisted, LibraryID: libraryID, Active: true}
	s.normalize()
	return s
}

func (s *Story) UnmarshalJSON(data []byte) error {
	type alias Story
	var opt optional
	if err := json.Unmarshal(data, &opt); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*alias)(s)); err != nil {
		return err
	}
	s.ID = opt.id()
	s.Active = opt.active()
	return nil
}

func (s *Story) normalize() {
	s.Model = ModelStory
	s.Title = s.Name
	if s.Library != nil {
		s.Library.normalize()
	}
	s.Authors = compact(s.Authors)
	s.Series = compact(s.Series)
	s.Volumes = compact(s.Volumes)
	normalizeAll(s.Authors)
	normalizeAll(s.Series)
	normalizeAll(s.Volumes)
}

func (s Story) EntityID() int64        { return s.ID }
func (s Story) EntityLibraryID() int64 { return s.LibraryID }
func (s Story) EntityModel() Model     { return ModelStory }
func (s Story) EntityTitle() string    { return s.Title }

// SortRelations returns a copy with nested collections in canonical order.
func (s Story) SortRelations() Story {
	s.Authors = SortAuthors(s.Authors)
	s.Series = SortSeries(s.Series)
	s.Volumes = SortVolumes(s.Volumes)
	return s
}

// ToStory converts one raw Story object.
func ToStory(raw []byte) (Story, error) {
	return decodeOne[Story](raw)
}

// ToStories converts a raw array of Stories.
func ToStories(raw []byte) ([]Story, error) {
	return decodeMany[Story](raw)
}
