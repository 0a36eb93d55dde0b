package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Comcast/shapes/core"
	"github.com/Comcast/shapes/storage"

	"github.com/stretchr/testify/require"
)

func TestImpl(t *testing.T) {
	// Just confirm that this code compiles.
	var _ storage.Storage = &Storage{}
}

func TestBasics(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "storage.db")

	s, err := NewStorage(filename)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, s.Open(ctx))
	defer func() {
		require.NoError(t, s.Close(ctx))
	}()

	spec := &core.CaseSpec{
		Name:    "likes",
		Version: "1",
		Clauses: []*core.ClauseSpec{
			{
				Pattern: map[string]interface{}{"var": "x"},
				Result:  "tacos",
			},
		},
		Else: &core.ClauseSpec{Result: "chips"},
	}
	require.NoError(t, s.PutCase(ctx, spec))
	require.NoError(t, s.PutCase(ctx, &core.CaseSpec{Name: "another"}))
	require.ErrorIs(t, s.PutCase(ctx, &core.CaseSpec{}), storage.ErrNoName)

	got, err := s.GetCase(ctx, "likes")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "1", got.Version)
	require.Len(t, got.Clauses, 1)
	require.Equal(t, map[string]interface{}{"var": "x"}, got.Clauses[0].Pattern)
	require.Equal(t, "chips", got.Else.Result)

	names, err := s.ListCases(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"another", "likes"}, names)

	require.NoError(t, s.RemCase(ctx, "likes"))
	got, err = s.GetCase(ctx, "likes")
	require.NoError(t, err)
	require.Nil(t, got)

	// Removing what isn't there is fine.
	require.NoError(t, s.RemCase(ctx, "likes"))
}
