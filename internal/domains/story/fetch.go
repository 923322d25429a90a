// Package story fetches and writes the Stories of the current Library.
package story

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
	// Parent scopes the list to one Author, Series or Volume.
	Parent models.Ref

	WithAuthors bool
	WithLibrary bool
	WithSeries  bool
	WithVolumes bool
}

type Fetcher = hooks.ListFetcher[Params, models.Story]

func NewFetcher(client hooks.Requester, env hooks.Env) *Fetcher {
	return hooks.NewListFetcher(env, func(ctx context.Context, key hooks.Scoped[Params]) ([]models.Story, error) {
		return Fetch(ctx, client, key)
	})
}

// Fetch loads one page; see author.Fetch for the skip rules.
func Fetch(ctx context.Context, client hooks.Requester, key hooks.Scoped[Params]) ([]models.Story, error) {
	p := key.Params
	if !key.LoggedIn {
		return []models.Story{}, nil
	}
	path, skip, err := hooks.ListPath(models.ModelStory, key.LibraryID, p.Parent, p.Name)
	if err != nil || skip {
		return []models.Story{}, err
	}

	limit, offset := hooks.Page(p.CurrentPage, p.PageSize)
	resp, err := client.Get(ctx, path+api.QueryParameters(
		api.Flag("active", p.Active),
		api.P("limit", limit),
		api.NonEmpty("name", p.Name),
		api.P("offset", offset),
		api.Flag("withAuthors", p.WithAuthors),
		api.Flag("withLibrary", p.WithLibrary),
		api.Flag("withSeries", p.WithSeries),
		api.Flag("withVolumes", p.WithVolumes),
	))
	if err != nil {
		return []models.Story{}, err
	}

	stories, err := models.ToStories(resp.Data)
	if err != nil {
		return []models.Story{}, err
	}
	for i := range stories {
		stories[i] = stories[i].SortRelations()
	}
	if p.Parent.Model == models.ModelSeries && p.Name == "" {
		// reading order
		stories = models.SortStoriesByOrdinal(stories)
	}
	return stories, nil
}
