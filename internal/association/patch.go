package association

import (
	"slices"

	"library-client/internal/models"
)

// Apply returns a copy of focused with ev applied to the matching child
// collection. It reports false, returning focused as is, when the event
// targets another entity or a collection focused does not have.
// focused itself is never modified.
func Apply(focused models.Entity, ev Event) (models.Entity, bool) {
	if focused == nil || ev.Child == nil || !ev.Targets(models.RefOf(focused)) {
		return focused, false
	}

	switch f := focused.(type) {
	case models.Author:
		switch c := ev.Child.(type) {
		case models.Series:
			f.Series = patch(f.Series, c, ev.Action)
		case models.Story:
			f.Stories = patch(f.Stories, c, ev.Action)
		case models.Volume:
			f.Volumes = patch(f.Volumes, c, ev.Action)
		default:
			return focused, false
		}
		return f, true
	case models.Series:
		switch c := ev.Child.(type) {
		case models.Author:
			f.Authors = patch(f.Authors, c, ev.Action)
		case models.Story:
			f.Stories = patch(f.Stories, c, ev.Action)
		default:
			return focused, false
		}
		return f, true
	case models.Story:
		switch c := ev.Child.(type) {
		case models.Author:
			f.Authors = patch(f.Authors, c, ev.Action)
		case models.Series:
			f.Series = patch(f.Series, c, ev.Action)
		case models.Volume:
			f.Volumes = patch(f.Volumes, c, ev.Action)
		default:
			return focused, false
		}
		return f, true
	case models.Volume:
		switch c := ev.Child.(type) {
		case models.Author:
			f.Authors = patch(f.Authors, c, ev.Action)
		case models.Story:
			f.Stories = patch(f.Stories, c, ev.Action)
		default:
			return focused, false
		}
		return f, true
	}
	return focused, false
}

// patch never writes through list; the result is a new slice (nil when empty).
func patch[T models.Entity](list []T, child T, action Action) []T {
	idx := slices.IndexFunc(list, func(e T) bool { return e.EntityID() == child.EntityID() })

	switch action {
	case Include:
		if idx >= 0 {
			return list
		}
		out := make([]T, len(list), len(list)+1)
		copy(out, list)
		return append(out, child)
	case Exclude:
		if idx < 0 {
			return list
		}
		out := make([]T, 0, len(list)-1)
		out = append(out, list[:idx]...)
		out = append(out, list[idx+1:]...)
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return list
}
