package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galquench/galquench/logging"
)

func unitFixture(t *testing.T) *RecordArray {
	t.Helper()

	arr := NewRecordArray(3)
	require.NoError(t, arr.SetField("SubhaloMass", []float64{1, 2, 3}))
	require.NoError(t, arr.SetField("SubhaloSFR", []float64{4, 5, 6}))
	return arr
}

func TestApplyUnits(t *testing.T) {
	arr := unitFixture(t)
	diag := logging.NewDiagnostics(nil)

	ApplyUnits(arr, []UnitScaling{{Match: "Mass", Factor: 10}}, diag)

	mass, _ := arr.Field("SubhaloMass")
	assert.Equal(t, []float64{10, 20, 30}, mass)

	sfr, _ := arr.Field("SubhaloSFR")
	assert.Equal(t, []float64{4, 5, 6}, sfr, "non-matching fields untouched")

	require.Len(t, diag.Messages(), 1)
	assert.Contains(t, diag.Messages()[0], "SubhaloMass")
	assert.Contains(t, diag.Messages()[0], "10")
}

func TestApplyUnitsCaseInsensitive(t *testing.T) {
	arr := unitFixture(t)

	ApplyUnits(arr, []UnitScaling{{Match: "mass", Factor: 2}}, nil)

	mass, _ := arr.Field("SubhaloMass")
	assert.Equal(t, []float64{2, 4, 6}, mass)
}

func TestApplyUnitsStacked(t *testing.T) {
	arr := unitFixture(t)

	// Both entries match SubhaloMass, so both factors apply in order.
	ApplyUnits(arr, []UnitScaling{
		{Match: "Subhalo", Factor: 10},
		{Match: "Mass", Factor: 0.5},
	}, nil)

	mass, _ := arr.Field("SubhaloMass")
	assert.Equal(t, []float64{5, 10, 15}, mass)

	sfr, _ := arr.Field("SubhaloSFR")
	assert.Equal(t, []float64{40, 50, 60}, sfr)
}
