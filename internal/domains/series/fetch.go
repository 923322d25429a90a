// Package series fetches and writes the Series of the current Library.
package series

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
	// Parent scopes the list to one Author or Story.
	Parent models.Ref

	WithAuthors bool
	WithLibrary bool
	WithStories bool
}

type Fetcher = hooks.ListFetcher[Params, models.Series]

func NewFetcher(client hooks.Requester, env hooks.Env) *Fetcher {
	return hooks.NewListFetcher(env, func(ctx context.Context, key hooks.Scoped[Params]) ([]models.Series, error) {
		return Fetch(ctx, client, key)
	})
}

// Fetch loads one page; see author.Fetch for the skip rules.
func Fetch(ctx context.Context, client hooks.Requester, key hooks.Scoped[Params]) ([]models.Series, error) {
	p := key.Params
	if !key.LoggedIn {
		return []models.Series{}, nil
	}
	path, skip, err := hooks.ListPath(models.ModelSeries, key.LibraryID, p.Parent, p.Name)
	if err != nil || skip {
		return []models.Series{}, err
	}

	limit, offset := hooks.Page(p.CurrentPage, p.PageSize)
	resp, err := client.Get(ctx, path+api.QueryParameters(
		api.Flag("active", p.Active),
		api.P("limit", limit),
		api.NonEmpty("name", p.Name),
		api.P("offset", offset),
		api.Flag("withAuthors", p.WithAuthors),
		api.Flag("withLibrary", p.WithLibrary),
		api.Flag("withStories", p.WithStories),
	))
	if err != nil {
		return []models.Series{}, err
	}

	series, err := models.ToSeriesList(resp.Data)
	if err != nil {
		return []models.Series{}, err
	}
	for i := range series {
		series[i] = series[i].SortRelations()
	}
	return series, nil
}
