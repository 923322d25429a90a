package association

import (
	"sync"

	"library-client/internal/models"
)

// Membership is the set of children of one focused parent, per child model.
// List rows ask it whether they are included.
type Membership struct {
	mu     sync.RWMutex
	parent models.Ref
	ids    map[models.Model]map[int64]struct{}
}

// NewMembership derives the set from focused's nested collections.
func NewMembership(focused models.Entity) *Membership {
	m := &Membership{}
	m.Reset(focused)
	return m
}

// Reset recomputes the set, for example after the focused parent was refetched.
func (m *Membership) Reset(focused models.Entity) {
	ids := make(map[models.Model]map[int64]struct{})
	for model, children := range children(focused) {
		set := make(map[int64]struct{}, len(children))
		for _, id := range children {
			set[id] = struct{}{}
		}
		ids[model] = set
	}

	m.mu.Lock()
	m.parent = models.RefOf(focused)
	m.ids = ids
	m.mu.Unlock()
}

// Included reports whether e is a child of the focused parent.
func (m *Membership) Included(e models.Entity) bool {
	if e == nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[e.EntityModel()][e.EntityID()]
	return ok
}

// Apply updates the set from an event aimed at the focused parent.
func (m *Membership) Apply(ev Event) {
	if ev.Child == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !ev.Targets(m.parent) {
		return
	}

	model := ev.Child.EntityModel()
	switch ev.Action {
	case Include:
		if m.ids[model] == nil {
			m.ids[model] = make(map[int64]struct{})
		}
		m.ids[model][ev.Child.EntityID()] = struct{}{}
	case Exclude:
		delete(m.ids[model], ev.Child.EntityID())
	}
}

// Track keeps the set current from bus. The returned func stops tracking.
func (m *Membership) Track(bus *Bus) func() {
	return bus.Subscribe(m.Apply)
}

func children(focused models.Entity) map[models.Model][]int64 {
	out := map[models.Model][]int64{}
	switch f := focused.(type) {
	case models.Author:
		out[models.ModelSeries] = ids(f.Series)
		out[models.ModelStory] = ids(f.Stories)
		out[models.ModelVolume] = ids(f.Volumes)
	case models.Series:
		out[models.ModelAuthor] = ids(f.Authors)
		out[models.ModelStory] = ids(f.Stories)
	case models.Story:
		out[models.ModelAuthor] = ids(f.Authors)
		out[models.ModelSeries] = ids(f.Series)
		out[models.ModelVolume] = ids(f.Volumes)
	case models.Volume:
		out[models.ModelAuthor] = ids(f.Authors)
		out[models.ModelStory] = ids(f.Stories)
	}
	return out
}

func ids[T models.Entity](list []T) []int64 {
	out := make([]int64, len(list))
	for i, e := range list {
		out[i] = e.EntityID()
	}
	return out
}
