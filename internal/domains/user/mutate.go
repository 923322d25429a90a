package user

import (
	"context"
	"errors"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

type Mutator = hooks.Mutator[models.User]

func NewMutator(client hooks.Requester) *Mutator {
	return hooks.NewMutator(client, nil, models.ModelUser, models.ToUser, models.NewUser)
}

// Exact looks up a User by username.
func Exact(ctx context.Context, client hooks.Requester, username string) (models.User, bool, error) {
	path, err := api.Exact(models.ModelUser, models.Unpersisted, username)
	if err != nil {
		return models.NewUser(), false, err
	}
	resp, err := client.Get(ctx, path)
	if errors.Is(err, api.ErrNotFound) {
		return models.NewUser(), false, nil
	}
	if err != nil {
		return models.NewUser(), false, err
	}
	u, err := models.ToUser(resp.Data)
	if err != nil {
		return models.NewUser(), false, err
	}
	return u, true, nil
}

func Unique(ctx context.Context, client hooks.Requester, u models.User) (bool, error) {
	found, ok, err := Exact(ctx, client, u.Username)
	if err != nil {
		return false, err
	}
	return !ok || found.ID == u.ID, nil
}
