package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	subhalos := New("subhalos")
	subhalos.SetCount(5)
	subhalos.SetColumn("a", NewColumn([]float64{1, 2, 3, 4, 5}))

	sparse := New("extra")
	sparse.SetIDs([]int64{1, 3})
	sparse.SetColumn("b", NewColumn([]float64{10, 30}))
	require.NoError(t, MatchSubfind([]*Catalog{sparse}, 5))

	arr, err := Merge(subhalos, []*Catalog{sparse})
	require.NoError(t, err)

	assert.Equal(t, 5, arr.Len())
	assert.Equal(t, []string{"a", "b"}, arr.Names())

	a, ok := arr.Field("a")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, a)

	b, ok := arr.Field("b")
	require.True(t, ok)
	assert.Equal(t, 10.0, b[1])
	assert.Equal(t, 30.0, b[3])
	for _, i := range []int{0, 2, 4} {
		assert.True(t, math.IsNaN(b[i]), "position %d should be NaN", i)
	}
}

func TestMergeMissingCount(t *testing.T) {
	subhalos := New("subhalos")
	subhalos.SetColumn("a", NewColumn([]float64{1, 2}))

	_, err := Merge(subhalos, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record count")
}

func TestMergeConsumesCount(t *testing.T) {
	subhalos := New("subhalos")
	subhalos.SetCount(2)
	subhalos.SetColumn("a", NewColumn([]float64{1, 2}))

	_, err := Merge(subhalos, nil)
	require.NoError(t, err)

	_, err = Merge(subhalos, nil)
	assert.Error(t, err, "the count is consumed by the first merge")
}

func TestMergeLengthMismatch(t *testing.T) {
	subhalos := New("subhalos")
	subhalos.SetCount(3)
	subhalos.SetColumn("a", NewColumn([]float64{1, 2, 3}))

	bad := New("bad")
	bad.SetColumn("b", NewColumn([]float64{1, 2}))

	_, err := Merge(subhalos, []*Catalog{bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
}

func TestMergePackedField(t *testing.T) {
	subhalos := New("subhalos")
	subhalos.SetCount(2)
	col, err := NewMatrixColumn([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	subhalos.SetColumn("a", col)

	_, err = Merge(subhalos, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unpacked before merging")
}

func TestMergeFieldCollision(t *testing.T) {
	subhalos := New("subhalos")
	subhalos.SetCount(2)
	subhalos.SetColumn("x", NewColumn([]float64{1, 2}))

	later := New("later")
	later.SetColumn("x", NewColumn([]float64{8, 9}))

	arr, err := Merge(subhalos, []*Catalog{later})
	require.NoError(t, err)

	x, _ := arr.Field("x")
	assert.Equal(t, []float64{8, 9}, x, "later catalog overwrites the field")
	assert.Equal(t, []string{"x"}, arr.Names())
}
