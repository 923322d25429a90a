package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"library-client/internal/api"
	"library-client/internal/association"
	"library-client/internal/models"
	"library-client/pkg/logger"
)

// ErrBusy rejects a mutation started while another is executing. It is
// reported only through the return value: Err keeps describing the call
// that is executing.
var ErrBusy = errors.New("another mutation is executing")

// Mutation tracks the executing and error flags of a mutator.
type Mutation struct {
	mu        sync.Mutex
	executing bool
	err       error
}

func (m *Mutation) Executing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executing
}

// Err is the failure of the last mutation, nil after a success.
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// NotUnique reports whether the last mutation was rejected as a duplicate.
func (m *Mutation) NotUnique() bool {
	return errors.Is(m.Err(), api.ErrNotUnique)
}

// ClearErr dismisses the last error.
func (m *Mutation) ClearErr() {
	m.mu.Lock()
	m.err = nil
	m.mu.Unlock()
}

func (m *Mutation) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.executing {
		return ErrBusy
	}
	m.executing = true
	m.err = nil
	return nil
}

func (m *Mutation) end(err error) {
	m.mu.Lock()
	m.executing = false
	m.err = err
	m.mu.Unlock()
}

// Mutable is what a Mutator can write.
type Mutable interface {
	models.Entity
	Validate() error
}

// Publisher receives association events; *association.Bus implements it.
type Publisher interface {
	Publish(association.Event)
}

// Requester is the subset of *api.Client mutators use.
type Requester interface {
	Get(ctx context.Context, path string) (*api.Response, error)
	Post(ctx context.Context, path string, body any) (*api.Response, error)
	Put(ctx context.Context, path string, body any) (*api.Response, error)
	Delete(ctx context.Context, path string) (*api.Response, error)
}

// Mutator writes entities of one model. Every call either returns the
// server's canonical entity, or records the error in Err and returns the
// placeholder (id -1). Callers check the returned error, not the value. Err
// mirrors it for every call that ran; a call refused with ErrBusy never ran
// and leaves Err alone.
type Mutator[T Mutable] struct {
	Mutation
	client      Requester
	bus         Publisher
	model       models.Model
	decode      func([]byte) (T, error)
	placeholder func() T
	log         zerolog.Logger
}

// NewMutator builds a Mutator. bus may be nil.
func NewMutator[T Mutable](client Requester, bus Publisher, model models.Model, decode func([]byte) (T, error), placeholder func() T) *Mutator[T] {
	return &Mutator[T]{
		client:      client,
		bus:         bus,
		model:       model,
		decode:      decode,
		placeholder: placeholder,
		log:         logger.Component("mutation").With().Str("model", string(model)).Logger(),
	}
}

// Insert validates and creates e.
func (m *Mutator[T]) Insert(ctx context.Context, e T) (T, error) {
	return m.run("insert", func() (T, error) {
		if err := e.Validate(); err != nil {
			return m.placeholder(), api.Invalid(err)
		}
		path, err := api.Collection(m.model, e.EntityLibraryID())
		if err != nil {
			return m.placeholder(), err
		}
		return m.decodeResponse(m.client.Post(ctx, path, models.ToNullValues(e)))
	})
}

// Update validates and replaces e.
func (m *Mutator[T]) Update(ctx context.Context, e T) (T, error) {
	return m.run("update", func() (T, error) {
		if !models.Persisted(e) {
			return m.placeholder(), fmt.Errorf("update %s: entity was never saved", m.model)
		}
		if err := e.Validate(); err != nil {
			return m.placeholder(), api.Invalid(err)
		}
		path, err := api.Item(models.RefOf(e))
		if err != nil {
			return m.placeholder(), err
		}
		return m.decodeResponse(m.client.Put(ctx, path, models.ToNullValues(e)))
	})
}

// Remove deletes e.
func (m *Mutator[T]) Remove(ctx context.Context, e T) (T, error) {
	return m.run("remove", func() (T, error) {
		if !models.Persisted(e) {
			return m.placeholder(), fmt.Errorf("remove %s: entity was never saved", m.model)
		}
		path, err := api.Item(models.RefOf(e))
		if err != nil {
			return m.placeholder(), err
		}
		resp, err := m.client.Delete(ctx, path)
		if err != nil {
			return m.placeholder(), err
		}
		if len(resp.Data) == 0 {
			return e, nil
		}
		return m.decodeResponse(resp, nil)
	})
}

// Include links child to parent and announces it on the bus.
func (m *Mutator[T]) Include(ctx context.Context, child T, parent models.Entity) (T, error) {
	return m.associate(ctx, association.Include, child, parent, false)
}

// IncludePrincipal links child to parent and marks the Author of the pair
// as principal.
func (m *Mutator[T]) IncludePrincipal(ctx context.Context, child T, parent models.Entity) (T, error) {
	if m.model != models.ModelAuthor && (parent == nil || parent.EntityModel() != models.ModelAuthor) {
		return m.placeholder(), fmt.Errorf("principal only applies to author links, not %s", m.model)
	}
	return m.associate(ctx, association.Include, child, parent, true)
}

// Exclude unlinks child from parent and announces it on the bus.
func (m *Mutator[T]) Exclude(ctx context.Context, child T, parent models.Entity) (T, error) {
	return m.associate(ctx, association.Exclude, child, parent, false)
}

func (m *Mutator[T]) associate(ctx context.Context, action association.Action, child T, parent models.Entity, principal bool) (T, error) {
	out, err := m.run(action.String(), func() (T, error) {
		if !models.Persisted(child) || !models.Persisted(parent) {
			return m.placeholder(), fmt.Errorf("%s: both %s and its parent must be saved", action, m.model)
		}
		path, err := api.Association(models.RefOf(parent), models.RefOf(child))
		if err != nil {
			return m.placeholder(), err
		}

		var resp *api.Response
		if action == association.Include {
			resp, err = m.client.Post(ctx, path+api.QueryParameters(api.Flag("principal", principal)), nil)
		} else {
			resp, err = m.client.Delete(ctx, path)
		}
		if err != nil {
			return m.placeholder(), err
		}
		if len(resp.Data) == 0 {
			return child, nil
		}
		return m.decodeResponse(resp, nil)
	})
	if err == nil && m.bus != nil {
		m.bus.Publish(association.Event{Action: action, Parent: models.RefOf(parent), Child: out})
	}
	return out, err
}

func (m *Mutator[T]) decodeResponse(resp *api.Response, err error) (T, error) {
	if err != nil {
		return m.placeholder(), err
	}
	out, err := m.decode(resp.Data)
	if err != nil {
		return m.placeholder(), err
	}
	return out, nil
}

func (m *Mutator[T]) run(op string, fn func() (T, error)) (T, error) {
	if err := m.begin(); err != nil {
		return m.placeholder(), err
	}

	out, err := fn()
	if err != nil {
		out = m.placeholder()
		m.log.Debug().Err(err).Str("op", op).Msg("mutation failed")
	}
	m.end(err)
	return out, err
}
