package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnresolved is matched by every ResolutionError.
var ErrUnresolved = errors.New("container could not be resolved")

// ResolutionError reports a qualifying name that could not be mapped to a
// container.
type ResolutionError struct {
	QualName string
	Err      error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to resolve container %s: %v", e.QualName, e.Err)
	}
	return fmt.Sprintf("failed to resolve container %s", e.QualName)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

// NormalizeFilters makes every filter end in "." so that a filter only
// matches whole name segments: "pkg.sub" must not select "pkg.subother.X".
// Empty filters are dropped.
func NormalizeFilters(filters []string) []string {
	out := make([]string, 0, len(filters))
	for _, f := range filters {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !strings.HasSuffix(f, ".") {
			f += "."
		}
		out = append(out, f)
	}
	return out
}

// InScope reports whether qualName falls under at least one normalized
// filter. With no filters everything is in scope.
func InScope(qualName string, normalized []string) bool {
	if len(normalized) == 0 {
		return true
	}
	for _, f := range normalized {
		if strings.HasPrefix(qualName, f) {
			return true
		}
	}
	return false
}

// Resolve selects the containers of src whose qualifying name starts with
// one of filters and resolves each through lookup. Discovery order is kept
// and nothing is deduplicated. The first name that cannot be resolved
// aborts with a *ResolutionError.
func Resolve(src Source, lookup Resolver, filters []string) ([]Descriptor, error) {
	normalized := NormalizeFilters(filters)

	var descs []Descriptor
	for _, name := range src.Names() {
		if !InScope(name, normalized) {
			continue
		}
		desc, err := lookup.Lookup(name)
		if err != nil {
			return nil, &ResolutionError{QualName: name, Err: err}
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// ResolveNames resolves an explicit list of qualifying names, in the given
// order.
func ResolveNames(lookup Resolver, names []string) ([]Descriptor, error) {
	descs := make([]Descriptor, 0, len(names))
	for _, name := range names {
		desc, err := lookup.Lookup(name)
		if err != nil {
			return nil, &ResolutionError{QualName: name, Err: err}
		}
		descs = append(descs, desc)
	}
	return descs, nil
}
