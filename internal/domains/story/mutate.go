package story

import (
	"context"
	"errors"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

type Mutator = hooks.Mutator[models.Story]

func NewMutator(client hooks.Requester, bus hooks.Publisher) *Mutator {
	return hooks.NewMutator(client, bus, models.ModelStory, models.ToStory, placeholder)
}

func placeholder() models.Story {
	return models.NewStory(models.Unpersisted)
}

// Exact looks up the Story named exactly name.
func Exact(ctx context.Context, client hooks.Requester, libraryID int64, name string) (models.Story, bool, error) {
	path, err := api.Exact(models.ModelStory, libraryID, name)
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
	found, err := models.ToStory(resp.Data)
	if err != nil {
		return placeholder(), false, err
	}
	return found, true, nil
}

// Unique reports whether the name of s is free in its Library.
func Unique(ctx context.Context, client hooks.Requester, s models.Story) (bool, error) {
	found, ok, err := Exact(ctx, client, s.LibraryID, s.Name)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return found.ID == s.ID, nil
}
