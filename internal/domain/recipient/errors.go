package recipient

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup is returned when a drawn value has no entry in a lookup table.
	ErrLookup = errors.New("lookup table has no entry")

	// ErrUnknownShape is returned by ParseShape for names it does not know.
	ErrUnknownShape = errors.New("unknown record shape")
)

// LookupError reports a key missing from one of the catalog tables. It
// indicates inconsistent static data rather than bad user input.
type LookupError struct {
	Table string
	Key   string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: key %q not found in %s", ErrLookup, e.Key, e.Table)
}

func (e *LookupError) Unwrap() error { return ErrLookup }
