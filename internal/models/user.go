package models

import (
	"encoding/json"
	"strings"
)

// User is a login account. Users are global, not owned by a Library.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Password *string `json:"password,omitempty"`
	// Scope is a space separated list of permissions, e.g. "first:admin log:debug".
	Scope  string `json:"scope"`
	Active bool   `json:"active"`

	Title string `json:"-"`
	Model Model  `json:"-"`
}

// NewUser returns an unsaved User.
func NewUser() User {
	u := User{ID: Unpersisted, Active: true}
	u.normalize()
	return u
}

func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var opt optional
	if err := json.Unmarshal(data, &opt); err != nil {
		return err
	}
	if err := json.Unmarshal(data, (*alias)(u)); err != nil {
		return err
	}
	u.ID = opt.id()
	u.Active = opt.active()
	return nil
}

func (u *User) normalize() {
	u.Model = ModelUser
	u.Title = u.Name
	if u.Title == "" {
		u.Title = u.Username
	}
}

// Users have no owning Library.
func (u User) EntityID() int64        { return u.ID }
func (u User) EntityLibraryID() int64 { return Unpersisted }
func (u User) EntityModel() Model     { return ModelUser }
func (u User) EntityTitle() string    { return u.Title }

// Scopes splits the scope string into its permission tokens.
func (u User) Scopes() []string {
	return strings.Fields(u.Scope)
}

// HasScope reports whether the user was granted the exact token.
func (u User) HasScope(token string) bool {
	for _, s := range u.Scopes() {
		if s == token {
			return true
		}
	}
	return false
}

// ToUser converts one raw User object.
func ToUser(raw []byte) (User, error) {
	return decodeOne[User](raw)
}

// ToUsers converts a raw array of Users.
func ToUsers(raw []byte) ([]User, error) {
	return decodeMany[User](raw)
}
