package models

import (
	"cmp"
	"slices"
	"strings"
)

func compact[T any](list []T) []T {
	if len(list) == 0 {
		return nil
	}
	return list
}

func fold(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// SortAuthors orders by library, last name, first name. The input is not modified.
func SortAuthors(list []Author) []Author {
	return sorted(list, func(a, b Author) int {
		return cmp.Or(
			cmp.Compare(a.LibraryID, b.LibraryID),
			fold(a.LastName, b.LastName),
			fold(a.FirstName, b.FirstName),
		)
	})
}

// SortLibraries orders by name.
func SortLibraries(list []Library) []Library {
	return sorted(list, func(a, b Library) int {
		return fold(a.Name, b.Name)
	})
}

// SortSeries orders by library, name.
func SortSeries(list []Series) []Series {
	return sorted(list, func(a, b Series) int {
		return cmp.Or(cmp.Compare(a.LibraryID, b.LibraryID), fold(a.Name, b.Name))
	})
}

// SortStories orders by library, name.
func SortStories(list []Story) []Story {
	return sorted(list, func(a, b Story) int {
		return cmp.Or(cmp.Compare(a.LibraryID, b.LibraryID), fold(a.Name, b.Name))
	})
}

// SortStoriesByOrdinal orders by ordinal then name; Stories without an ordinal go last.
func SortStoriesByOrdinal(list []Story) []Story {
	return sorted(list, func(a, b Story) int {
		switch {
		case a.Ordinal == nil && b.Ordinal != nil:
			return 1
		case a.Ordinal != nil && b.Ordinal == nil:
			return -1
		case a.Ordinal != nil && b.Ordinal != nil && *a.Ordinal != *b.Ordinal:
			return cmp.Compare(*a.Ordinal, *b.Ordinal)
		}
		return fold(a.Name, b.Name)
	})
}

// SortVolumes orders by library, name.
func SortVolumes(list []Volume) []Volume {
	return sorted(list, func(a, b Volume) int {
		return cmp.Or(cmp.Compare(a.LibraryID, b.LibraryID), fold(a.Name, b.Name))
	})
}

// SortUsers orders by username.
func SortUsers(list []User) []User {
	return sorted(list, func(a, b User) int {
		return fold(a.Username, b.Username)
	})
}

func sorted[T any](list []T, less func(a, b T) int) []T {
	if len(list) == 0 {
		return list
	}
	out := slices.Clone(list)
	slices.SortStableFunc(out, less)
	return out
}
