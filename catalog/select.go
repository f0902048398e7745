package catalog

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring"

	"github.com/galquench/galquench/logging"
)

// Bound keeps the records whose value in Field lies strictly between Lower
// and Upper. Records equal to either limit are dropped, as are NaNs.
type Bound struct {
	Field        string
	Lower, Upper float64
}

// ApplySelection filters the record array down to the records satisfying
// every bound and, if onlyFinite is set, carrying no NaN in any field. At
// least one criterion is required; a bound naming an unknown field is a
// configuration error. The count and percentage of removed records is
// reported through diag. The result is a fresh record array and may be
// empty.
func ApplySelection(
	arr *RecordArray, bounds []Bound, onlyFinite bool,
	diag *logging.Diagnostics,
) (*RecordArray, error) {
	if len(bounds) == 0 && !onlyFinite {
		return nil, fmt.Errorf(
			"no selection criteria: provide at least one bound or request " +
				"only finite records",
		)
	}

	masks := make([]*roaring.Bitmap, 0, len(bounds))
	for _, b := range bounds {
		vals, ok := arr.Field(b.Field)
		if !ok {
			return nil, fmt.Errorf(
				"selection bound on unknown field `%s`", b.Field,
			)
		}
		m := roaring.New()
		for i, v := range vals {
			// NaNs fail both comparisons and drop out here too.
			if b.Lower < v && v < b.Upper {
				m.Add(uint32(i))
			}
		}
		masks = append(masks, m)
	}

	if onlyFinite {
		for _, name := range arr.Names() {
			vals, _ := arr.Field(name)
			m := roaring.New()
			for i, v := range vals {
				if !math.IsNaN(v) {
					m.Add(uint32(i))
				}
			}
			masks = append(masks, m)
		}
	}

	if len(masks) == 0 {
		return nil, fmt.Errorf("the record array has no fields to select on")
	}
	keep := masks[0]
	for _, m := range masks[1:] {
		keep.And(m)
	}

	n := arr.Len()
	kept := int(keep.GetCardinality())
	if n > 0 {
		removed := n - kept
		diag.Warnf(
			"Removing %d (%.2f%%) objects.",
			removed, float64(removed)/float64(n)*100,
		)
	}

	out := NewRecordArray(kept)
	buf := make([]float64, 0, kept)
	for _, name := range arr.Names() {
		src, _ := arr.Field(name)
		buf = buf[:0]
		it := keep.Iterator()
		for it.HasNext() {
			buf = append(buf, src[it.Next()])
		}
		if err := out.SetField(name, buf); err != nil {
			return nil, err
		}
	}
	return out, nil
}
