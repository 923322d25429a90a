// Package author fetches and writes the Authors of the current Library.
package author

import (
	"context"

	"library-client/internal/api"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

// Params are the inputs of an Author list.
type Params struct {
	Active      bool
	Name        string
	CurrentPage int
	PageSize    int
	// Parent scopes the list to one Series, Story or Volume.
	Parent models.Ref

	WithLibrary bool
	WithSeries  bool
	WithStories bool
	WithVolumes bool
}

type Fetcher = hooks.ListFetcher[Params, models.Author]

// NewFetcher returns a list hook that refetches whenever its Params, the
// login state or the current Library change.
func NewFetcher(client hooks.Requester, env hooks.Env) *Fetcher {
	return hooks.NewListFetcher(env, func(ctx context.Context, key hooks.Scoped[Params]) ([]models.Author, error) {
		return Fetch(ctx, client, key)
	})
}

// Fetch loads one page. It makes no request and returns an empty list when
// logged out, when the parent is unsaved or when no Library is selected.
func Fetch(ctx context.Context, client hooks.Requester, key hooks.Scoped[Params]) ([]models.Author, error) {
	p := key.Params
	if !key.LoggedIn {
		return []models.Author{}, nil
	}
	path, skip, err := hooks.ListPath(models.ModelAuthor, key.LibraryID, p.Parent, p.Name)
	if err != nil || skip {
		return []models.Author{}, err
	}

	limit, offset := hooks.Page(p.CurrentPage, p.PageSize)
	resp, err := client.Get(ctx, path+api.QueryParameters(
		api.Flag("active", p.Active),
		api.P("limit", limit),
		api.NonEmpty("name", p.Name),
		api.P("offset", offset),
		api.Flag("withLibrary", p.WithLibrary),
		api.Flag("withSeries", p.WithSeries),
		api.Flag("withStories", p.WithStories),
		api.Flag("withVolumes", p.WithVolumes),
	))
	if err != nil {
		return []models.Author{}, err
	}

	authors, err := models.ToAuthors(resp.Data)
	if err != nil {
		return []models.Author{}, err
	}
	for i := range authors {
		authors[i] = authors[i].SortRelations()
	}
	return authors, nil
}
