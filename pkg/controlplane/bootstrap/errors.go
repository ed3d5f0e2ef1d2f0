package bootstrap

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable is matched by every StoreUnavailableError.
var ErrStoreUnavailable = errors.New("backing store unavailable")

// StoreUnavailableError reports a store failure during a bootstrap step.
type StoreUnavailableError struct {
	Step string

	// Collection is the offending collection, or the folder path for the
	// folder step.
	Collection string
	Err        error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("bootstrap step %s failed on %s: %v", e.Step, e.Collection, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func (e *StoreUnavailableError) Is(target error) bool {
	return target == ErrStoreUnavailable
}
