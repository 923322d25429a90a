package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref identifies an entity by discriminant, id and owning Library.
// It is the comparable form used for parent scoping, focus keys and
// association events.
type Ref struct {
	Model     Model `json:"model"`
	ID        int64 `json:"id"`
	LibraryID int64 `json:"libraryId"`
}

// RefOf builds the Ref of any entity.
func RefOf(e Entity) Ref {
	if e == nil {
		return Ref{}
	}
	return Ref{Model: e.EntityModel(), ID: e.EntityID(), LibraryID: e.EntityLibraryID()}
}

// IsZero reports an absent Ref (no parent).
func (r Ref) IsZero() bool {
	return r.Model == ""
}

// Persisted reports whether the referenced entity has a server id.
func (r Ref) Persisted() bool {
	return r.ID >= 0
}

// CanParent reports whether the model may scope a child list.
func (r Ref) CanParent() bool {
	_, ok := relations[r.Model]
	return ok
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", strings.ToLower(string(r.Model)), r.ID)
}

// relations is the closed table of parent -> child collections.
var relations = map[Model][]Model{
	ModelAuthor:  {ModelSeries, ModelStory, ModelVolume},
	ModelLibrary: {ModelAuthor, ModelSeries, ModelStory, ModelVolume},
	ModelSeries:  {ModelAuthor, ModelStory},
	ModelStory:   {ModelAuthor, ModelSeries, ModelVolume},
	ModelVolume:  {ModelAuthor, ModelStory},
}

// Related reports whether parent has a collection of child.
func Related(parent, child Model) bool {
	for _, m := range relations[parent] {
		if m == child {
			return true
		}
	}
	return false
}

// Associable reports whether parent and child are linked many-to-many,
// which excludes Library ownership.
func Associable(parent, child Model) bool {
	return parent != ModelLibrary && Related(parent, child)
}

// ParseModel accepts model names case-insensitively, singular or plural.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "author", "authors":
		return ModelAuthor, nil
	case "library", "libraries":
		return ModelLibrary, nil
	case "series":
		return ModelSeries, nil
	case "story", "stories":
		return ModelStory, nil
	case "user", "users":
		return ModelUser, nil
	case "volume", "volumes":
		return ModelVolume, nil
	}
	return "", fmt.Errorf("unknown model %q", s)
}

// ParseRef parses "model:id" as printed by Ref.String. The Library id is
// supplied by the caller since it is not part of the text form.
func ParseRef(s string, libraryID int64) (Ref, error) {
	name, idText, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, fmt.Errorf("reference %q must look like model:id", s)
	}
	model, err := ParseModel(name)
	if err != nil {
		return Ref{}, err
	}
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("reference %q: invalid id: %w", s, err)
	}
	ref := Ref{Model: model, ID: id, LibraryID: libraryID}
	if model == ModelLibrary {
		ref.LibraryID = id
	}
	return ref, nil
}
