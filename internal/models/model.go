// Package models holds the typed library entities and the converters that
// turn REST payloads into them.
package models

import (
	"encoding/json"
	"fmt"
)

// Model is the discriminant carried by every entity (the _model tag).
type Model string

const (
	ModelAuthor  Model = "Author"
	ModelLibrary Model = "Library"
	ModelSeries  Model = "Series"
	ModelStory   Model = "Story"
	ModelUser    Model = "User"
	ModelVolume  Model = "Volume"
)

// Unpersisted is the id of an entity that has never been sent to the server.
const Unpersisted int64 = -1

// Entity is implemented by every model type.
type Entity interface {
	EntityID() int64
	EntityLibraryID() int64
	EntityModel() Model
	EntityTitle() string
}

// Persisted reports whether the server has assigned e an id.
func Persisted(e Entity) bool {
	return e != nil && e.EntityID() >= 0
}

// Decode converts a single raw object of the given model.
func Decode(model Model, raw []byte) (Entity, error) {
	switch model {
	case ModelAuthor:
		return ToAuthor(raw)
	case ModelLibrary:
		return ToLibrary(raw)
	case ModelSeries:
		return ToSeries(raw)
	case ModelStory:
		return ToStory(raw)
	case ModelUser:
		return ToUser(raw)
	case ModelVolume:
		return ToVolume(raw)
	}
	return nil, fmt.Errorf("decode: unknown model %q", model)
}

// Placeholder returns the empty entity of a model, as handed back by a failed mutation.
func Placeholder(model Model) (Entity, error) {
	switch model {
	case ModelAuthor:
		return NewAuthor(Unpersisted), nil
	case ModelLibrary:
		return NewLibrary(), nil
	case ModelSeries:
		return NewSeries(Unpersisted), nil
	case ModelStory:
		return NewStory(Unpersisted), nil
	case ModelUser:
		return NewUser(), nil
	case ModelVolume:
		return NewVolume(Unpersisted), nil
	}
	return nil, fmt.Errorf("placeholder: unknown model %q", model)
}

// normalizer is implemented by pointer receivers of every entity.
type normalizer interface {
	normalize()
}

func decodeOne[T any, PT interface {
	*T
	normalizer
}](raw []byte) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	PT(&out).normalize()
	return out, nil
}

func decodeMany[T any, PT interface {
	*T
	normalizer
}](raw []byte) ([]T, error) {
	out := []T{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode []%T: %w", *new(T), err)
	}
	for i := range out {
		PT(&out[i]).normalize()
	}
	return out, nil
}

func normalizeAll[T any, PT interface {
	*T
	normalizer
}](list []T) {
	for i := range list {
		PT(&list[i]).normalize()
	}
}

// optional decodes the fields whose absence carries a default.
type optional struct {
	ID     *int64 `json:"id"`
	Active *bool  `json:"active"`
}

func (o optional) id() int64 {
	if o.ID == nil {
		return Unpersisted
	}
	return *o.ID
}

func (o optional) active() bool {
	return o.Active == nil || *o.Active
}
