// Package association keeps locally held parents consistent with
// include/exclude mutations without refetching. Mutators publish an Event;
// views apply it to their own copies.
package association

import (
	"fmt"

	"library-client/internal/models"
)

type Action int

const (
	Include Action = iota + 1
	Exclude
)

func (a Action) String() string {
	switch a {
	case Include:
		return "include"
	case Exclude:
		return "exclude"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Event reports a successful include or exclude of Child under Parent.
type Event struct {
	Action Action
	Parent models.Ref
	Child  models.Entity
}

// Targets reports whether the event concerns the entity identified by ref.
func (e Event) Targets(ref models.Ref) bool {
	return e.Parent.Model == ref.Model && e.Parent.ID == ref.ID
}
