package catalog

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galquench/galquench/logging"
)

// Runs the full chain on a fixed synthetic snapshot the way the driver
// does: unpack, match, merge, rescale, select.
func TestPipelineRoundTrip(t *testing.T) {
	subhalos := New("subhalos")
	subhalos.SetCount(6)
	packed, err := NewMatrixColumn([]float64{
		0.1, 1, 0.2, 2,
		0.1, 2, 0.2, 4,
		0.1, 3, 0.2, 6,
		0.1, 4, 0.2, 8,
		0.1, 5, 0.2, 10,
		0.1, 6, 0.2, 12,
	}, 4)
	require.NoError(t, err)
	subhalos.SetColumn("SubhaloMassType", packed)

	// Overlaps sfr2 at subhalo 2, covers 0 alone.
	sfr1 := New("sfr1")
	sfr1.SetIDs([]int64{0, 2})
	sfr1.SetColumn("SFR", NewColumn([]float64{1, 2}))

	// Covers 2 (overwriting nothing; it has its own field) and 4.
	hih2 := New("hih2")
	hih2.SetIDs([]int64{2, 4})
	hih2.SetColumn("m_neutral_H", NewColumn([]float64{7, 8}))

	mapping := ColumnMapping{"SubhaloMassType": {1, 3}}
	for _, c := range []*Catalog{subhalos, sfr1, hih2} {
		_, err := UnpackColumns(c, mapping)
		require.NoError(t, err)
	}

	require.NoError(t, MatchSubfind([]*Catalog{sfr1, hih2}, subhalos.Count()))

	arr, err := Merge(subhalos, []*Catalog{sfr1, hih2})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"SubhaloMassType_1", "SubhaloMassType_3", "SFR", "m_neutral_H",
	}, arr.Names())

	diag := logging.NewDiagnostics(nil)
	ApplyUnits(arr, []UnitScaling{{Match: "Mass", Factor: 10}}, diag)
	require.Len(t, diag.Messages(), 2, "both unpacked mass fields rescale")

	out, err := ApplySelection(arr, []Bound{
		{Field: "SubhaloMassType_1", Lower: 15, Upper: 55},
	}, false, diag)
	require.NoError(t, err)

	// Masses 10..60 after rescaling; the bound keeps subhalos 1, 2, 3, 4.
	require.Equal(t, 4, out.Len())
	m1, _ := out.Field("SubhaloMassType_1")
	assert.Equal(t, []float64{20, 30, 40, 50}, m1)

	sfr, _ := out.Field("SFR")
	assert.Equal(t, 2.0, sfr[1])
	for _, i := range []int{0, 2, 3} {
		assert.True(t, math.IsNaN(sfr[i]))
	}

	h, _ := out.Field("m_neutral_H")
	assert.Equal(t, 7.0, h[1])
	assert.Equal(t, 8.0, h[3])

	// Re-running with only_finite keeps just subhalo 2, the one record
	// every catalog covers.
	arr2, err := Merge(rebuildSubhalos(t), []*Catalog{sfr1, hih2})
	require.NoError(t, err)
	fin, err := ApplySelection(arr2, nil, true, nil)
	require.NoError(t, err)
	require.Equal(t, 1, fin.Len())
	sfrFin, _ := fin.Field("SFR")
	assert.Equal(t, []float64{2}, sfrFin)
}

func rebuildSubhalos(t *testing.T) *Catalog {
	t.Helper()

	c := New("subhalos")
	c.SetCount(6)
	c.SetColumn("SubhaloMassType_1", NewColumn([]float64{1, 2, 3, 4, 5, 6}))
	return c
}
