package hooks

import "library-client/internal/models"

// Env is the slice of application state fetch hooks react to.
type Env interface {
	LoggedIn() bool
	Library() models.Library
}

// Scoped is the full set of watched inputs of a list fetch.
type Scoped[P comparable] struct {
	Params    P
	LoggedIn  bool
	LibraryID int64
}

// ScopeOf reads the environment half of a Scoped key.
func ScopeOf[P comparable](env Env, params P) Scoped[P] {
	return Scoped[P]{Params: params, LoggedIn: env.LoggedIn(), LibraryID: env.Library().ID}
}
