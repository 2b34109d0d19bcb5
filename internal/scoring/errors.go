// Package scoring provides the bounded scoring primitives shared by every
// resonance calculation: weighted aggregation, distance normalization,
// ordered tier classification and closed-universe frequency tallies.
package scoring

import "errors"

var (
	// ErrInvalidConfiguration reports a malformed static table or constant.
	// It is returned at setup time, never per scoring call.
	ErrInvalidConfiguration = errors.New("invalid scoring configuration")

	// ErrTableIncomplete reports a tier table whose last rule is not an
	// unconditional default. It matches ErrInvalidConfiguration as well.
	ErrTableIncomplete = &tableIncompleteError{}

	// ErrUnknownCategory reports an item outside a closed enumeration on a
	// reject-on-ingest path.
	ErrUnknownCategory = errors.New("unknown category")
)

type tableIncompleteError struct{}

func (*tableIncompleteError) Error() string {
	return "tier table incomplete: last rule must be an unconditional default"
}

func (*tableIncompleteError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
