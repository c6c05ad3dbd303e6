// Package query implements the list primitives shared by every paginated
// endpoint: field lookup, stable null-last sorting, date-range filtering and
// page slicing. None of the functions modify their input slice.
package query

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a sort_order value.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts exactly "asc" or "desc".
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case Asc, Desc:
		return Direction(s), true
	}
	return "", false
}

// Fields maps a sort field name to its accessor. The key set is the allow-list
// for sort_by.
type Fields[T any] map[string]func(T) Value

// Has reports whether name is an allowed sort field.
func (f Fields[T]) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Names returns the field names in sorted order.
func (f Fields[T]) Names() []string {
	names := make([]string, 0, len(f))
	for n := range f {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

type keyed[T any] struct {
	row T
	key Value
}

// Sort returns a stably sorted copy of rows. Null values go last in both
// directions.
func Sort[T any](rows []T, key func(T) Value, dir Direction) []T {
	ks := make([]keyed[T], len(rows))
	for i, r := range rows {
		ks[i] = keyed[T]{row: r, key: key(r)}
	}
	// collate.Collator keeps internal buffers, one per call.
	c := collate.New(language.English)
	slices.SortStableFunc(ks, func(a, b keyed[T]) int {
		an, bn := a.key.IsNull(), b.key.IsNull()
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		r := compare(c, a.key, b.key)
		if dir == Desc {
			r = -r
		}
		return r
	})
	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.row
	}
	return out
}

// Filter returns the rows matching keep. The result is never nil.
func Filter[T any](rows []T, keep func(T) bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// DateRange drops rows whose date string is lexically before start or after
// end. Empty bounds are ignored.
func DateRange[T any](rows []T, date func(T) string, start, end string) []T {
	if start == "" && end == "" {
		return slices.Clone(rows)
	}
	return Filter(rows, func(r T) bool {
		d := date(r)
		if start != "" && d < start {
			return false
		}
		if end != "" && d > end {
			return false
		}
		return true
	})
}
