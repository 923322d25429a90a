// Package focus fetches the fully populated version of the entity a view
// is editing.
package focus

import (
	"context"
	"sync"

	"library-client/internal/api"
	"library-client/internal/association"
	"library-client/internal/hooks"
	"library-client/internal/models"
)

// key is what the hook reacts to. The stub itself is not comparable.
type key struct {
	Ref      models.Ref
	LoggedIn bool
}

// Hook holds one focused entity.
type Hook struct {
	*hooks.Query[key, models.Entity]
	client hooks.Requester
	env    hooks.Env

	mu   sync.Mutex
	stub models.Entity

	unsubscribe func()
}

// New returns an idle hook. With a bus, include and exclude events aimed
// at the focused entity patch the hook's copy.
func New(client hooks.Requester, env hooks.Env, bus *association.Bus) *Hook {
	h := &Hook{client: client, env: env}
	h.Query = hooks.NewQuery[key, models.Entity](h.load, nil)
	if bus != nil {
		h.unsubscribe = bus.Subscribe(h.apply)
	}
	return h
}

// Set focuses stub. Only its model and id are used to fetch.
func (h *Hook) Set(stub models.Entity) {
	h.mu.Lock()
	h.stub = stub
	h.mu.Unlock()

	h.Query.Set(key{Ref: models.RefOf(stub), LoggedIn: h.env.LoggedIn()})
}

// Fetch is Set followed by Wait.
func (h *Hook) Fetch(ctx context.Context, stub models.Entity) (hooks.State[models.Entity], error) {
	h.Set(stub)
	return h.Wait(ctx)
}

// Sync refetches when the login state changed since the last Set.
func (h *Hook) Sync() {
	k, ok := h.Params()
	if !ok {
		return
	}
	k.LoggedIn = h.env.LoggedIn()
	h.Query.Set(k)
}

func (h *Hook) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	h.Query.Close()
}

func (h *Hook) load(ctx context.Context, k key) (models.Entity, error) {
	h.mu.Lock()
	stub := h.stub
	h.mu.Unlock()

	return Fetch(ctx, h.client, h.env, stub, k.LoggedIn)
}

func (h *Hook) apply(ev association.Event) {
	h.Mutate(func(focused models.Entity) models.Entity {
		patched, _ := association.Apply(focused, ev)
		return patched
	})
}

// Fetch loads stub with every relation it has. A Library resolves to the
// current Library of env; logged out or unsaved, the stub comes back as is.
func Fetch(ctx context.Context, client hooks.Requester, env hooks.Env, stub models.Entity, loggedIn bool) (models.Entity, error) {
	if stub == nil {
		return nil, nil
	}
	if stub.EntityModel() == models.ModelLibrary {
		return env.Library(), nil
	}
	if !loggedIn || !models.Persisted(stub) {
		return stub, nil
	}

	path, err := api.Item(models.RefOf(stub))
	if err != nil {
		return stub, err
	}
	resp, err := client.Get(ctx, path+withAll(stub.EntityModel()))
	if err != nil {
		return stub, err
	}

	e, err := models.Decode(stub.EntityModel(), resp.Data)
	if err != nil {
		return stub, err
	}
	return sortRelations(e), nil
}

func withAll(m models.Model) string {
	switch m {
	case models.ModelAuthor:
		return api.QueryParameters(
			api.Flag("withLibrary", true),
			api.Flag("withSeries", true),
			api.Flag("withStories", true),
			api.Flag("withVolumes", true),
		)
	case models.ModelSeries:
		return api.QueryParameters(
			api.Flag("withAuthors", true),
			api.Flag("withLibrary", true),
			api.Flag("withStories", true),
		)
	case models.ModelStory:
		return api.QueryParameters(
			api.Flag("withAuthors", true),
			api.Flag("withLibrary", true),
			api.Flag("withSeries", true),
			api.Flag("withVolumes", true),
		)
	case models.ModelVolume:
		return api.QueryParameters(
			api.Flag("withAuthors", true),
			api.Flag("withLibrary", true),
			api.Flag("withStories", true),
		)
	}
	return ""
}

func sortRelations(e models.Entity) models.Entity {
	switch v := e.(type) {
	case models.Author:
		return v.SortRelations()
	case models.Series:
		s := v.SortRelations()
		s.Stories = models.SortStoriesByOrdinal(s.Stories)
		return s
	case models.Story:
		return v.SortRelations()
	case models.User:
		return v
	case models.Volume:
		return v.SortRelations()
	}
	return e
}
