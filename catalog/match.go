package catalog

import (
	"fmt"
	"math"
)

// MatchSubfind aligns sparse supplementary catalogs to the canonical
// subfind index space. Every field of every catalog is replaced by a
// length-n column with its values scattered to their subfind positions and
// NaN everywhere else. Rows sharing a subfind ID overwrite each other in
// input order, so the last row wins. Once a catalog is aligned its subfind
// IDs carry no information and are dropped.
func MatchSubfind(catalogs []*Catalog, n int) error {
	for _, c := range catalogs {
		ids := c.IDs()
		if ids == nil {
			return fmt.Errorf(
				"catalog `%s` carries no subfind IDs to match by", c.Name(),
			)
		}
		for _, id := range ids {
			if id < 0 || id >= int64(n) {
				return fmt.Errorf(
					"catalog `%s` has subfind ID %d outside of [0, %d)",
					c.Name(), id, n,
				)
			}
		}

		for _, field := range c.Names() {
			col, _ := c.Column(field)
			if col.Width() != 1 {
				return fmt.Errorf(
					"field `%s` of catalog `%s` has %d columns and must be "+
						"unpacked before matching", field, c.Name(), col.Width(),
				)
			}
			vals := col.Values()
			if len(vals) != len(ids) {
				return fmt.Errorf(
					"field `%s` of catalog `%s` has %d rows, but the catalog "+
						"has %d subfind IDs", field, c.Name(), len(vals), len(ids),
				)
			}

			full := make([]float64, n)
			nan := math.NaN()
			for i := range full {
				full[i] = nan
			}
			for i, id := range ids {
				full[id] = vals[i]
			}
			c.SetColumn(field, NewColumn(full))
		}

		c.SetIDs(nil)
	}
	return nil
}
