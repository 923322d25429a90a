package author

import (
	"context"
	"errors"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

type Mutator = hooks.Mutator[models.Author]

// NewMutator returns the Author write hook. bus may be nil.
func NewMutator(client hooks.Requester, bus hooks.Publisher) *Mutator {
	return hooks.NewMutator(client, bus, models.ModelAuthor, models.ToAuthor, placeholder)
}

func placeholder() models.Author {
	return models.NewAuthor(models.Unpersisted)
}

// Exact looks up the Author with exactly this first and last name.
func Exact(ctx context.Context, client hooks.Requester, libraryID int64, firstName, lastName string) (models.Author, bool, error) {
	path, err := api.Exact(models.ModelAuthor, libraryID, firstName, lastName)
	if err != nil {
		return placeholder(), false, err
	}
	resp, err := client.Get(ctx, path)
	if errors.Is(err, api.ErrNotFound) {
		return placeholder(), false, nil
	}
	if err != nil {
		return placeholder(), false, err
	}
	a, err := models.ToAuthor(resp.Data)
	if err != nil {
		return placeholder(), false, err
	}
	return a, true, nil
}

// Unique reports whether a's name is free in its Library, ignoring a itself.
// The answer is advisory; the server still rejects duplicates on write.
func Unique(ctx context.Context, client hooks.Requester, a models.Author) (bool, error) {
	found, ok, err := Exact(ctx, client, a.LibraryID, a.FirstName, a.LastName)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return found.ID == a.ID, nil
}
