package idgen

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AllKinds(t *testing.T) {
	for _, kind := range []string{KindULID, KindKSUID, KindSnowflake, KindUUID, KindNanoID, KindCUID2} {
		t.Run(kind, func(t *testing.T) {
			gen, err := New(kind, 1)
			require.NoError(t, err)

			seen := make(map[string]struct{})
			for i := 0; i < 100; i++ {
				id, err := gen.Generate()
				require.NoError(t, err)
				require.NotEmpty(t, id)
				seen[id] = struct{}{}
			}
			assert.Len(t, seen, 100)
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("sequential", 0)
	assert.Error(t, err)
}

func TestSnowflake_InvalidMachineID(t *testing.T) {
	_, err := NewSnowflakeGenerator(1024, DefaultEpoch)
	assert.Error(t, err)
}

func TestSortableGeneratorsAreMonotonic(t *testing.T) {
	for _, kind := range []string{KindULID, KindSnowflake} {
		t.Run(kind, func(t *testing.T) {
			gen, err := New(kind, 7)
			require.NoError(t, err)

			ids := make([]string, 0, 1000)
			for i := 0; i < 1000; i++ {
				id, err := gen.Generate()
				require.NoError(t, err)
				ids = append(ids, id)
			}
			assert.True(t, sort.StringsAreSorted(ids))
		})
	}
}

func TestNanoID_Length(t *testing.T) {
	gen, err := NewNanoIDGenerator(DefaultNanoIDSize, DefaultNanoIDAlphabet)
	require.NoError(t, err)

	id, err := gen.Generate()
	require.NoError(t, err)
	assert.Len(t, id, DefaultNanoIDSize)
}
