package library

import (
	"context"
	"errors"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

type Mutator = hooks.Mutator[models.Library]

func NewMutator(client hooks.Requester) *Mutator {
	return hooks.NewMutator(client, nil, models.ModelLibrary, models.ToLibrary, models.NewLibrary)
}

func Exact(ctx context.Context, client hooks.Requester, name string) (models.Library, bool, error) {
	path, err := api.Exact(models.ModelLibrary, models.Unpersisted, name)
	if err != nil {
		return models.NewLibrary(), false, err
	}
	resp, err := client.Get(ctx, path)
	if errors.Is(err, api.ErrNotFound) {
		return models.NewLibrary(), false, nil
	}
	if err != nil {
		return models.NewLibrary(), false, err
	}
	l, err := models.ToLibrary(resp.Data)
	if err != nil {
		return models.NewLibrary(), false, err
	}
	return l, true, nil
}

func Unique(ctx context.Context, client hooks.Requester, l models.Library) (bool, error) {
	found, ok, err := Exact(ctx, client, l.Name)
	if err != nil {
		return false, err
	}
	return !ok || found.ID == l.ID, nil
}
