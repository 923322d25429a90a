package models

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MaxNameLength  = 255
	MaxNotesLength = 5000
)

var (
	scopePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	isbnPattern  = regexp.MustCompile(`^[0-9Xx-]{10,17}$`)
)

func (l Library) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&l.Scope,
			validation.Required.Error("scope is required"),
			validation.Match(scopePattern).Error("scope may contain only letters, digits, '_' and '-'"),
		),
		validation.Field(&l.Notes, validation.Length(0, MaxNotesLength)),
	)
}

func (a Author) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.LibraryID, validation.Min(int64(0)).Error("library is required")),
		validation.Field(&a.FirstName,
			validation.Required.Error("first name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&a.LastName,
			validation.Required.Error("last name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&a.Notes, validation.Length(0, MaxNotesLength)),
	)
}

func (s Series) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.LibraryID, validation.Min(int64(0)).Error("library is required")),
		validation.Field(&s.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&s.Notes, validation.Length(0, MaxNotesLength)),
	)
}

func (s Story) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.LibraryID, validation.Min(int64(0)).Error("library is required")),
		validation.Field(&s.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&s.Ordinal, validation.Min(0).Error("ordinal must not be negative")),
		validation.Field(&s.Notes, validation.Length(0, MaxNotesLength)),
	)
}

func (v Volume) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.LibraryID, validation.Min(int64(0)).Error("library is required")),
		validation.Field(&v.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&v.ISBN, validation.Match(isbnPattern).Error("isbn must be 10 or 13 digits")),
		validation.Field(&v.Type, validation.In(VolumeAnthology, VolumeCollection, VolumeSingle)),
		validation.Field(&v.Location, validation.Length(0, MaxNameLength)),
		validation.Field(&v.Notes, validation.Length(0, MaxNotesLength)),
	)
}

func (u User) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Username,
			validation.Required.Error("username is required"),
			validation.Length(1, MaxNameLength),
			is.PrintableASCII,
		),
		validation.Field(&u.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
		validation.Field(&u.Password,
			validation.When(u.ID < 0, validation.Required.Error("password is required for a new user")),
		),
		validation.Field(&u.Scope, validation.Required.Error("scope is required")),
	)
}
