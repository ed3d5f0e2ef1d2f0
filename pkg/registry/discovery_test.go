package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qualNames(descs []Descriptor) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.QualName
	}
	return names
}

func TestNormalizeFilters(t *testing.T) {
	assert.Equal(t, []string{"pkg.sub.", "pkg.other."}, NormalizeFilters([]string{"pkg.sub", "pkg.other."}))
	assert.Empty(t, NormalizeFilters([]string{"", "  "}))
	assert.Empty(t, NormalizeFilters(nil))
}

func TestResolve(t *testing.T) {
	reg := New()
	reg.MustRegister(
		stub("pkg.sub.A", "/a"),
		stub("pkg.subother.B", "/b"),
		stub("pkg.sub.deep.C", "/c"),
		stub("other.D", "/d"),
	)

	tests := []struct {
		name    string
		filters []string
		want    []string
	}{
		{"no filters selects everything", nil, []string{"pkg.sub.A", "pkg.subother.B", "pkg.sub.deep.C", "other.D"}},
		{"segment prefix only", []string{"pkg.sub"}, []string{"pkg.sub.A", "pkg.sub.deep.C"}},
		{"trailing dot is accepted", []string{"pkg.sub."}, []string{"pkg.sub.A", "pkg.sub.deep.C"}},
		{"several filters keep discovery order", []string{"other", "pkg.subother"}, []string{"pkg.subother.B", "other.D"}},
		{"no match", []string{"nothing"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descs, err := Resolve(reg, reg, tt.filters)
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, descs)
				return
			}
			assert.Equal(t, tt.want, qualNames(descs))
		})
	}
}

type listSource []string

func (s listSource) Names() []string { return s }

func TestResolve_UnresolvableName(t *testing.T) {
	reg := New()
	reg.MustRegister(stub("pkg.sub.A", "/a"))

	_, err := Resolve(listSource{"pkg.sub.A", "pkg.sub.Missing"}, reg, []string{"pkg.sub"})
	require.Error(t, err)

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "pkg.sub.Missing", resErr.QualName)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Contains(t, err.Error(), "pkg.sub.Missing")
}

func TestResolve_NoDeduplication(t *testing.T) {
	reg := New()
	reg.MustRegister(stub("pkg.sub.A", "/a"))

	descs, err := Resolve(listSource{"pkg.sub.A", "pkg.sub.A"}, reg, nil)
	require.NoError(t, err)
	assert.Len(t, descs, 2)
}

func TestResolveNames(t *testing.T) {
	reg := New()
	reg.MustRegister(stub("pkg.a.A", "/a"), stub("pkg.b.B", "/b"))

	descs, err := ResolveNames(reg, []string{"pkg.b.B", "pkg.a.A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pkg.b.B", "pkg.a.A"}, qualNames(descs))

	_, err = ResolveNames(reg, []string{"pkg.x.X"})
	assert.ErrorIs(t, err, ErrUnresolved)
}
