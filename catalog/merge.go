package catalog

import "fmt"

// Merge combines the dense subhalo catalog with the aligned supplementary
// catalogs into a single record array. Fields are taken catalog by catalog
// in the given order; if two catalogs carry the same field name, the
// catalog processed later overwrites the earlier contents. The subhalo
// catalog must still hold its canonical record count, which Merge
// consumes. Every field must be 1-D with exactly that many rows.
func Merge(subhalos *Catalog, supplementary []*Catalog) (*RecordArray, error) {
	n, ok := subhalos.takeCount()
	if !ok {
		return nil, fmt.Errorf(
			"subhalo catalog `%s` must carry a record count", subhalos.Name(),
		)
	}

	arr := NewRecordArray(n)
	all := append([]*Catalog{subhalos}, supplementary...)
	for _, c := range all {
		for _, field := range c.Names() {
			col, _ := c.Column(field)
			if col.Width() != 1 {
				return nil, fmt.Errorf(
					"field `%s` of catalog `%s` has %d columns and must be "+
						"unpacked before merging", field, c.Name(), col.Width(),
				)
			}
			if col.Len() != n {
				return nil, fmt.Errorf(
					"field `%s` of catalog `%s` has %d rows, but the subhalo "+
						"table holds %d records", field, c.Name(), col.Len(), n,
				)
			}
			if err := arr.SetField(field, col.Values()); err != nil {
				return nil, err
			}
		}
	}
	return arr, nil
}
