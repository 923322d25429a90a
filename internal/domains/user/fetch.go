// Package user lists and writes login accounts. Users are global; listing
// them needs the superuser scope on the server.
package user

import (
	"context"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

type Params struct {
	Active      bool
	Username    string
	CurrentPage int
	PageSize    int
}

type Fetcher = hooks.ListFetcher[Params, models.User]

func NewFetcher(client hooks.Requester, env hooks.Env) *Fetcher {
	return hooks.NewListFetcher(env, func(ctx context.Context, key hooks.Scoped[Params]) ([]models.User, error) {
		return Fetch(ctx, client, key)
	})
}

// Fetch loads one page of Users, or nothing when logged out.
func Fetch(ctx context.Context, client hooks.Requester, key hooks.Scoped[Params]) ([]models.User, error) {
	if !key.LoggedIn {
		return []models.User{}, nil
	}
	p := key.Params
	limit, offset := hooks.Page(p.CurrentPage, p.PageSize)
	return get(ctx, client, api.QueryParameters(
		api.Flag("active", p.Active),
		api.P("limit", limit),
		api.P("offset", offset),
		api.NonEmpty("username", p.Username),
	))
}

// All loads every User, for application state.
func All(ctx context.Context, client hooks.Requester) ([]models.User, error) {
	users, err := get(ctx, client, "")
	if err != nil {
		return nil, err
	}
	return models.SortUsers(users), nil
}

func get(ctx context.Context, client hooks.Requester, query string) ([]models.User, error) {
	path, err := api.Collection(models.ModelUser, models.Unpersisted)
	if err != nil {
		return []models.User{}, err
	}
	resp, err := client.Get(ctx, path+query)
	if err != nil {
		return []models.User{}, err
	}
	return models.ToUsers(resp.Data)
}
