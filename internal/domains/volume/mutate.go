package volume

import (
	"context"
	"errors"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

type Mutator = hooks.Mutator[models.Volume]

func NewMutator(client hooks.Requester, bus hooks.Publisher) *Mutator {
	return hooks.NewMutator(client, bus, models.ModelVolume, models.ToVolume, placeholder)
}

func placeholder() models.Volume {
	return models.NewVolume(models.Unpersisted)
}

// Exact looks up the Volume named exactly name.
func Exact(ctx context.Context, client hooks.Requester, libraryID int64, name string) (models.Volume, bool, error) {
	path, err := api.Exact(models.ModelVolume, libraryID, name)
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
	found, err := models.ToVolume(resp.Data)
	if err != nil {
		return placeholder(), false, err
	}
	return found, true, nil
}

// Unique reports whether the name of v is free in its Library.
func Unique(ctx context.Context, client hooks.Requester, v models.Volume) (bool, error) {
	found, ok, err := Exact(ctx, client, v.LibraryID, v.Name)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return found.ID == v.ID, nil
}
