package models

import "encoding/json"

// Volume types accepted by the server.
const (
	VolumeAnthology  = "Anthology"
	VolumeCollection = "Collection"
	VolumeSingle     = "Single"
)

// Volume is a physical or electronic book held by a Library.
type Volume struct {
	ID        int64   `json:"id"`
	LibraryID int64   `json:"libraryId"`
	Name      string  `json:"name"`
	ISBN      *string `json:"isbn"`
	GoogleID  *string `json:"googleId"`
	Location  *string `json:"location"`
	Type      *string `json:"type"`
	Read      bool    `json:"read"`
	Notes     *string `json:"notes"`
	Active    bool    `json:"active"`

	Library *Library `json:"library,omitempty"`
	Authors []Author `json:"authors,omitempty"`
	Stories []Story  `json:"stories,omitempty"`

	Title string `json:"-"`
	Model Model  `json:"-"`
}

// NewVolume returns an unsaved Volume for the given Library.
func NewVolume(libraryID int64) Volume {
	v := Volume{ID: Unpersisted, LibraryID: libraryID, Active: true}
	v.normalize()
	return v
}

func (v *Volume) UnmarshalJSON(data []byte) error {
	type alias Volume
	var opt optional
	if err := json.Unmarshal(data, &opt); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*alias)(v)); err != nil {
		return err
	}
	v.ID = opt.id()
	v.Active = opt.active()
	return nil
}

func (v *Volume) normalize() {
	v.Model = ModelVolume
	v.Title = v.Name
	if v.Library != nil {
		v.Library.normalize()
	}
	v.Authors = compact(v.Authors)
	v.Stories = compact(v.Stories)
	normalizeAll(v.Authors)
	normalizeAll(v.Stories)
}

func (v Volume) EntityID() int64        { return v.ID }
func (v Volume) EntityLibraryID() int64 { return v.LibraryID }
func (v Volume) EntityModel() Model     { return ModelVolume }
func (v Volume) EntityTitle() string    { return v.Title }

// SortRelations returns a copy with nested collections in canonical order.
func (v Volume) SortRelations() Volume {
	v.Authors = SortAuthors(v.Authors)
	v.Stories = SortStories(v.Stories)
	return v
}

// ToVolume converts one raw Volume object.
func ToVolume(raw []byte) (Volume, error) {
	return decodeOne[Volume](raw)
}

// ToVolumes converts a raw array of Volumes.
func ToVolumes(raw []byte) ([]Volume, error) {
	return decodeMany[Volume](raw)
}
