package models

import "encoding/json"

// Author is a person credited on Series, Stories and Volumes of one Library.
type Author struct {
	ID        int64   `json:"id"`
	LibraryID int64   `json:"libraryId"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Notes     *string `json:"notes"`
	Active    bool    `json:"active"`
	// Principal is set on Authors nested under an association parent.
	Principal *bool `json:"principal,omitempty"`

	Library *Library `json:"library,omitempty"`
	Series  []Series `json:"series,omitempty"`
	Stories []Story  `json:"stories,omitempty"`
	Volumes []Volume `json:"volumes,omitempty"`

	Title string `json:"-"`
	Model Model  `json:"-"`
}

// NewAuthor returns an unsaved Author for the given Library.
func NewAuthor(libraryID int64) Author {
	a := Author{ID: Unpersisted, LibraryID: libraryID, Active: true}
	a.normalize()
	return a
}

func (a *Author) UnmarshalJSON(data []byte) error {
	type alias Author
	var opt optional
	if err := json.Unmarshal(data, &opt); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*alias)(a)); err != nil {
		return err
	}
	a.ID = opt.id()
	a.Active = opt.active()
	return nil
}

func (a *Author) normalize() {
	a.Model = ModelAuthor
	a.Title = authorTitle(a.FirstName, a.LastName)
	if a.Library != nil {
		a.Library.normalize()
	}
	a.Series = compact(a.Series)
	a.Stories = compact(a.Stories)
	a.Volumes = compact(a.Volumes)
	normalizeAll(a.Series)
	normalizeAll(a.Stories)
	normalizeAll(a.Volumes)
}

func authorTitle(first, last string) string {
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return last + ", " + first
}

func (a Author) EntityID() int64        { return a.ID }
func (a Author) EntityLibraryID() int64 { return a.LibraryID }
func (a Author) EntityModel() Model     { return ModelAuthor }
func (a Author) EntityTitle() string    { return a.Title }

// SortRelations returns a copy with nested collections in canonical order.
func (a Author) SortRelations() Author {
	a.Series = SortSeries(a.Series)
	a.Stories = SortStories(a.Stories)
	a.Volumes = SortVolumes(a.Volumes)
	return a
}

// ToAuthor converts one raw Author object.
func ToAuthor(raw []byte) (Author, error) {
	return decodeOne[Author](raw)
}

// ToAuthors converts a raw array of Authors.
func ToAuthors(raw []byte) ([]Author, error) {
	return decodeMany[Author](raw)
}
