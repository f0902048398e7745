package catalog

import (
	"strings"

	"github.com/galquench/galquench/logging"
)

// UnitScaling multiplies every field whose name contains Match
// (case-insensitive) by Factor. The TNG group catalogs store masses in
// 1e10 Msun/h, so a typical table is {"Mass": 1e10}.
type UnitScaling struct {
	Match  string
	Factor float64
}

// ApplyUnits rescales matching fields of the record array in place.
// Fields are visited in record-array order and scalings in declaration
// order, so a field matching several entries is multiplied by each factor
// in turn. Every application is reported through diag.
func ApplyUnits(arr *RecordArray, units []UnitScaling, diag *logging.Diagnostics) {
	for _, name := range arr.Names() {
		for _, u := range units {
			if !strings.Contains(
				strings.ToLower(name), strings.ToLower(u.Match),
			) {
				continue
			}
			diag.Warnf("Multiplying `%s` by %g.", name, u.Factor)
			vals, _ := arr.Field(name)
			for i := range vals {
				vals[i] *= u.Factor
			}
		}
	}
}
