// Package library lists and writes Libraries, the owners of every other
// catalog entity.
package library

import (
	"context"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

type Params struct {
	Active      bool
	Name        string
	CurrentPage int
	PageSize    int
}

type Fetcher = hooks.ListFetcher[Params, models.Library]

func NewFetcher(client hooks.Requester, env hooks.Env) *Fetcher {
	return hooks.NewListFetcher(env, func(ctx context.Context, key hooks.Scoped[Params]) ([]models.Library, error) {
		return Fetch(ctx, client, key)
	})
}

func Fetch(ctx context.Context, client hooks.Requester, key hooks.Scoped[Params]) ([]models.Library, error) {
	if !key.LoggedIn {
		return []models.Library{}, nil
	}
	p := key.Params
	limit, offset := hooks.Page(p.CurrentPage, p.PageSize)
	return get(ctx, client, api.QueryParameters(
		api.Flag("active", p.Active),
		api.P("limit", limit),
		api.NonEmpty("name", p.Name),
		api.P("offset", offset),
	))
}

// All loads every Library visible to the current user, sorted by name.
func All(ctx context.Context, client hooks.Requester) ([]models.Library, error) {
	libraries, err := get(ctx, client, "")
	if err != nil {
		return nil, err
	}
	return models.SortLibraries(libraries), nil
}

func get(ctx context.Context, client hooks.Requester, query string) ([]models.Library, error) {
	path, err := api.Collection(models.ModelLibrary, models.Unpersisted)
	if err != nil {
		return []models.Library{}, err
	}
	resp, err := client.Get(ctx, path+query)
	if err != nil {
		return []models.Library{}, err
	}
	return models.ToLibraries(resp.Data)
}
