package catalog

import "fmt"

// ColumnMapping names, for each multi-column field, the sub-columns worth
// extracting. What the sub-columns of a packed field mean is caller
// knowledge (e.g. SubhaloMassType_1 is the dark matter component), so it
// cannot be inferred here.
type ColumnMapping map[string][]int

// UnpackColumns splits every multi-column field of the catalog into 1-D
// fields named {field}_{column}, one per entry in the mapping, and removes
// the packed original. 1-D fields pass through untouched. A multi-column
// field with no mapping entry is a configuration error, as is a mapped
// column index outside the field's width. The catalog is modified in place
// and returned.
func UnpackColumns(c *Catalog, mapping ColumnMapping) (*Catalog, error) {
	for _, field := range c.Names() {
		col, _ := c.Column(field)
		if col.Width() == 1 {
			continue
		}

		columns, ok := mapping[field]
		if !ok {
			return nil, fmt.Errorf(
				"column information for field `%s` required", field,
			)
		}

		c.Drop(field)
		for _, j := range columns {
			if j < 0 || j >= col.Width() {
				return nil, fmt.Errorf(
					"field `%s` has %d columns, so column %d cannot be "+
						"extracted", field, col.Width(), j,
				)
			}
			c.SetColumn(fmt.Sprintf("%s_%d", field, j), col.Extract(j))
		}
	}
	return c, nil
}
