package models

import "encoding/json"

// Series groups Stories in reading order.
type Series struct {
	ID        int64   `json:"id"`
	LibraryID int64   `json:"libraryId"`
	Name      string  `json:"name"`
	Copyright *string `json:"copyright"`
	Notes     *string `json:"notes"`
	Active    bool    `json:"active"`

	Library *Library `json:"library,omitempty"`
	Authors []Author `json:"authors,omitempty"`
	Stories []Story  `json:"stories,omitempty"`

	Title string `json:"-"`
	Model Model  `json:"-"`
}

// NewSeries returns an unsaved Series for the given Library.
func NewSeries(libraryID int64) Series {
	s := Series{ID: Unpersisted, LibraryID: libraryID, Active: true}
	s.normalize()
	return s
}

func (s *Series) UnmarshalJSON(data []byte) error {
	type alias Series
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

func (s *Series) normalize() {
	s.Model = ModelSeries
	s.Title = s.Name
	if s.Library != nil {
		s.Library.normalize()
	}
	s.Authors = compact(s.Authors)
	s.Stories = compact(s.Stories)
	normalizeAll(s.Authors)
	normalizeAll(s.Stories)
}

func (s Series) EntityID() int64        { return s.ID }
func (s Series) EntityLibraryID() int64 { return s.LibraryID }
func (s Series) EntityModel() Model     { return ModelSeries }
func (s Series) EntityTitle() string    { return s.Title }

// SortRelations returns a copy with nested collections in canonical order.
// Stories of a Series follow their ordinal.
func (s Series) SortRelations() Series {
	s.Authors = SortAuthors(s.Authors)
	s.Stories = SortStoriesByOrdinal(s.Stories)
	return s
}

// ToSeries converts one raw Series object.
func ToSeries(raw []byte) (Series, error) {
	return decodeOne[Series](raw)
}

// ToSeriesList converts a raw array of Series.
func ToSeriesList(raw []byte) ([]Series, error) {
	return decodeMany[Series](raw)
}
