package project

import (
	"sort"

	"github.com/clerkbill/clerk/internal/event"
)

// historyEntry pairs a value with the date it takes effect.
type historyEntry[T any] struct {
	Effective event.Date
	Value     T
}

// historical is an effective-dated value: an ordered history of changes,
// queried by "value in force as of date D". At most one entry exists per
// effective date; setting the same date again replaces the earlier value,
// which is how a correcting event wins over the one it corrects.
type historical[T any] struct {
	entries []historyEntry[T]
}

// set inserts or replaces the entry for the given effective date, keeping
// entries ordered by date.
func (h *historical[T]) set(effective event.Date, value T) {
	idx := sort.Search(len(h.entries), func(i int) bool {
		return !h.entries[i].Effective.Before(effective)
	})
	if idx < len(h.entries) && h.entries[idx].Effective.Equal(effective) {
		h.entries[idx].Value = value
		return
	}
	h.entries = append(h.entries, historyEntry[T]{})
	copy(h.entries[idx+1:], h.entries[idx:])
	h.entries[idx] = historyEntry[T]{Effective: effective, Value: value}
}

// asOf resolves the entry with the greatest effective date ≤ d. The second
// return is false when no entry is in force yet.
func (h *historical[T]) asOf(d event.Date) (T, bool) {
	idx := sort.Search(len(h.entries), func(i int) bool {
		return h.entries[i].Effective.After(d)
	})
	if idx == 0 {
		var zero T
		return zero, false
	}
	return h.entries[idx-1].Value, true
}

// all returns the ordered history.
func (h *historical[T]) all() []historyEntry[T] {
	out := make([]historyEntry[T], len(h.entries))
	copy(out, h.entries)
	return out
}
