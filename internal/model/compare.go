package model

import (
	"cmp"
	"slices"
)

// CompareFields orders bands by number of participants, then albums count,
// then name. Identity (ID) is ignored, so a fresh band can be compared with
// stored ones.
func CompareFields(a, b Band) int {
	if c := cmp.Compare(a.NumberOfParticipants, b.NumberOfParticipants); c != 0 {
		return c
	}
	if c := cmp.Compare(a.AlbumsCount, b.AlbumsCount); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

// Compare is CompareFields with ties broken by ID, a total order over stored bands.
func Compare(a, b Band) int {
	if c := CompareFields(a, b); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Less reports whether a orders strictly before b.
func Less(a, b Band) bool {
	return Compare(a, b) < 0
}

// SortAscending sorts bands in place by Compare.
func SortAscending(bands []Band) {
	slices.SortStableFunc(bands, Compare)
}

// Max returns the greatest band by Compare, or false for an empty slice.
func Max(bands []Band) (Band, bool) {
	if len(bands) == 0 {
		return Band{}, false
	}
	return slices.MaxFunc(bands, Compare), true
}
