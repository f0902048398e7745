/*Package catalog contains the in-memory data model and the merging logic
for subhalo catalogs: ordered collections of named numeric columns, the
subfind-ID alignment of sparse supplementary catalogs onto the canonical
subhalo index space, and the merged record array the pipeline produces.*/
package catalog

import (
	"fmt"
	"math"
)

// Column is a single numeric catalog field. Values are stored flat in
// row-major order: a column of width 1 is a plain 1-D field, a column of
// width w > 1 carries w values per row and must be unpacked into 1-D
// fields before alignment or merging. Everything is float64 so that NaN
// can always mark a missing entry.
type Column struct {
	data  []float64
	width int
}

// NewColumn wraps a 1-D field. The slice is not copied.
func NewColumn(data []float64) *Column {
	return &Column{data: data, width: 1}
}

// NewMatrixColumn wraps a width-w field stored row-major.
func NewMatrixColumn(data []float64, width int) (*Column, error) {
	if width < 1 {
		return nil, fmt.Errorf("column width must be positive, not %d", width)
	}
	if len(data)%width != 0 {
		return nil, fmt.Errorf(
			"column holds %d values, which cannot be split into rows "+
				"of width %d", len(data), width,
		)
	}
	return &Column{data: data, width: width}, nil
}

// Len returns the number of rows.
func (c *Column) Len() int { return len(c.data) / c.width }

// Width returns the number of values per row.
func (c *Column) Width() int { return c.width }

// At returns the value in row i, sub-column j.
func (c *Column) At(i, j int) float64 { return c.data[i*c.width+j] }

// Values returns the backing slice of a 1-D column.
func (c *Column) Values() []float64 {
	if c.width != 1 {
		panic(fmt.Sprintf("Values() called on a column of width %d.", c.width))
	}
	return c.data
}

// RowMajor returns the backing row-major slice, regardless of width.
func (c *Column) RowMajor() []float64 { return c.data }

// Extract copies sub-column j out into a new 1-D column.
func (c *Column) Extract(j int) *Column {
	out := make([]float64, c.Len())
	for i := range out {
		out[i] = c.data[i*c.width+j]
	}
	return NewColumn(out)
}

// Catalog is an insertion-ordered mapping from field name to column. A
// sparse supplementary catalog additionally carries the subfind IDs tying
// its rows to canonical subhalo positions; the dense primary catalog
// carries no IDs but knows the canonical record count instead.
type Catalog struct {
	name  string
	names []string
	cols  map[string]*Column
	ids   []int64
	count int
}

// New creates an empty catalog. The name only shows up in error messages
// and is usually the file the catalog was read from.
func New(name string) *Catalog {
	return &Catalog{name: name, cols: map[string]*Column{}}
}

func (c *Catalog) Name() string { return c.name }

// SetColumn adds a field or replaces an existing one. A replaced field
// keeps its position in the field order.
func (c *Catalog) SetColumn(name string, col *Column) {
	if _, ok := c.cols[name]; !ok {
		c.names = append(c.names, name)
	}
	c.cols[name] = col
}

// Column returns the named field, if present.
func (c *Catalog) Column(name string) (*Column, bool) {
	col, ok := c.cols[name]
	return col, ok
}

// Drop removes the named field. Dropping an absent field is a no-op.
func (c *Catalog) Drop(name string) {
	if _, ok := c.cols[name]; !ok {
		return
	}
	delete(c.cols, name)
	for i := range c.names {
		if c.names[i] == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

// Names returns the field names in insertion order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// SetIDs attaches the subfind-ID column of a sparse catalog.
func (c *Catalog) SetIDs(ids []int64) { c.ids = ids }

// IDs returns the subfind IDs, or nil once alignment has consumed them.
func (c *Catalog) IDs() []int64 { return c.ids }

// SetCount records the canonical record count of the primary catalog.
func (c *Catalog) SetCount(n int) { c.count = n }

// Count returns the canonical record count, or 0 if unset.
func (c *Catalog) Count() int { return c.count }

// takeCount consumes the record count so it cannot be merged twice.
func (c *Catalog) takeCount() (int, bool) {
	n := c.count
	c.count = 0
	return n, n > 0
}

// RecordArray is the merged pipeline output: n homogeneous records holding
// the union of all catalog fields, with NaN wherever a sparse catalog had
// no entry for a record.
type RecordArray struct {
	names []string
	cols  map[string][]float64
	n     int
}

// NewRecordArray creates an empty record array over n records.
func NewRecordArray(n int) *RecordArray {
	return &RecordArray{cols: map[string][]float64{}, n: n}
}

// Len returns the number of records.
func (a *RecordArray) Len() int { return a.n }

// Names returns the field names in insertion order.
func (a *RecordArray) Names() []string {
	out := make([]string, len(a.names))
	copy(out, a.names)
	return out
}

// Field returns the backing slice of the named field, if present.
func (a *RecordArray) Field(name string) ([]float64, bool) {
	vals, ok := a.cols[name]
	return vals, ok
}

// SetField copies vals into the named field, creating it if needed. A
// repeated name overwrites the previous contents but keeps its position in
// the field order.
func (a *RecordArray) SetField(name string, vals []float64) error {
	if len(vals) != a.n {
		return fmt.Errorf(
			"field `%s` has length %d, but the record array holds %d records",
			name, len(vals), a.n,
		)
	}
	dst, ok := a.cols[name]
	if !ok {
		dst = nanFilled(a.n)
		a.names = append(a.names, name)
		a.cols[name] = dst
	}
	copy(dst, vals)
	return nil
}

func nanFilled(n int) []float64 {
	out := make([]float64, n)
	nan := math.NaN()
	for i := range out {
		out[i] = nan
	}
	return out
}
