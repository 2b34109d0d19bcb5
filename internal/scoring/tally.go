package scoring

import "fmt"

// Entry is one category of a distribution with its count.
type Entry[C comparable] struct {
	Category C   `json:"category"`
	Count    int `json:"count"`
}

// Distribution counts occurrences over a closed universe. It always holds
// exactly one entry per universe category.
type Distribution[C comparable] struct {
	universe []C
	counts   map[C]int
	total    int
}

// Tally counts items against universe. Items outside the universe are
// rejected with ErrUnknownCategory rather than ignored.
func Tally[C comparable](items, universe []C) (Distribution[C], error) {
	if len(universe) == 0 {
		return Distribution[C]{}, fmt.Errorf("%w: empty universe", ErrInvalidConfiguration)
	}

	counts := make(map[C]int, len(universe))
	for _, c := range universe {
		if _, dup := counts[c]; dup {
			return Distribution[C]{}, fmt.Errorf("%w: duplicate category %v in universe", ErrInvalidConfiguration, c)
		}
		counts[c] = 0
	}

	for i, item := range items {
		if _, ok := counts[item]; !ok {
			return Distribution[C]{}, fmt.Errorf("%w: %v at position %d", ErrUnknownCategory, item, i)
		}
		counts[item]++
	}

	u := make([]C, len(universe))
	copy(u, universe)
	return Distribution[C]{universe: u, counts: counts, total: len(items)}, nil
}

// Dominant returns the category with the highest count; ties go to the
// category declared first in the universe.
func Dominant[C comparable](dist Distribution[C]) C {
	return dist.Dominant()
}

// Dominant returns the category with the highest count; ties go to the
// category declared first in the universe. The zero value is returned for
// a zero Distribution.
func (d Distribution[C]) Dominant() C {
	return Strongest(d.universe, d.counts)
}

// Strongest returns the category of order with the highest value in values;
// ties go to the category listed first. Categories missing from values count
// as zero. The zero value is returned for an empty order.
func Strongest[C comparable](order []C, values map[C]int) C {
	var best C
	for i, c := range order {
		if i == 0 || values[c] > values[best] {
			best = c
		}
	}
	return best
}

// Count returns the occurrences of c (zero for categories outside the universe).
func (d Distribution[C]) Count(c C) int {
	return d.counts[c]
}

// Total returns the number of tallied items.
func (d Distribution[C]) Total() int {
	return d.total
}

// Universe returns the categories in declaration order.
func (d Distribution[C]) Universe() []C {
	u := make([]C, len(d.universe))
	copy(u, d.universe)
	return u
}

// Entries returns one entry per category in universe order.
func (d Distribution[C]) Entries() []Entry[C] {
	entries := make([]Entry[C], len(d.universe))
	for i, c := range d.universe {
		entries[i] = Entry[C]{Category: c, Count: d.counts[c]}
	}
	return entries
}

// Counts returns a copy of the category counts.
func (d Distribution[C]) Counts() map[C]int {
	out := make(map[C]int, len(d.counts))
	for k, v := range d.counts {
		out[k] = v
	}
	return out
}
