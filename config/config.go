/*Package config reads the HCL file describing a pipeline run: which
catalog files to load, which fields to keep, how to unpack multi-column
fields, and the unit and selection tables. Block order in the file is
meaningful and preserved: units apply in declaration order.*/
package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"github.com/galquench/galquench/catalog"
	gio "github.com/galquench/galquench/io"
)

type Config struct {
	// Output is the path the merged .npy record array is written to.
	Output     string `hcl:"output"`
	OnlyFinite bool   `hcl:"only_finite,optional"`

	Subhalos      *Subhalos       `hcl:"subhalos,block"`
	Supplementary []Supplementary `hcl:"supplementary,block"`
	Columns       []Columns       `hcl:"columns,block"`
	Units         []Unit          `hcl:"units,block"`
	Select        []Select        `hcl:"select,block"`
}

// Subhalos names the dense primary catalog.
type Subhalos struct {
	File     string   `hcl:"file"`
	Snapshot *int     `hcl:"snapshot,optional"`
	Fields   []string `hcl:"fields,optional"`
}

// Supplementary names one sparse measurement catalog and the key carrying
// its subfind IDs.
type Supplementary struct {
	File      string   `hcl:"file"`
	SubfindID string   `hcl:"subfind_id"`
	Snapshot  *int     `hcl:"snapshot,optional"`
	Keys      []string `hcl:"keys,optional"`
	SkipKeys  []string `hcl:"skip_keys,optional"`
}

// Columns maps a packed multi-column field onto the sub-columns to keep.
type Columns struct {
	Field string `hcl:"field,label"`
	Take  []int  `hcl:"take"`
}

// Unit rescales every field whose name contains the label.
type Unit struct {
	Match  string  `hcl:"match,label"`
	Factor float64 `hcl:"factor"`
}

// Select keeps records with min < value < max in the labeled field.
type Select struct {
	Field string  `hcl:"field,label"`
	Min   float64 `hcl:"min"`
	Max   float64 `hcl:"max"`
}

// Load reads and validates a pipeline configuration file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a configuration held in memory. The filename only steers
// hclsimple's format detection and error messages.
func Parse(filename string, data []byte) (*Config, error) {
	cfg := &Config{}
	if err := hclsimple.Decode(filename, data, nil, cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Subhalos == nil {
		return fmt.Errorf("a subhalos block is required")
	}
	for i := range c.Supplementary {
		if c.Supplementary[i].SubfindID == "" {
			return fmt.Errorf(
				"supplementary block for `%s` needs a subfind_id",
				c.Supplementary[i].File,
			)
		}
	}
	for i := range c.Columns {
		if len(c.Columns[i].Take) == 0 {
			return fmt.Errorf(
				"columns block `%s` takes no columns", c.Columns[i].Field,
			)
		}
	}
	if len(c.Select) == 0 && !c.OnlyFinite {
		return fmt.Errorf(
			"at least one select block is required, or set only_finite",
		)
	}
	return nil
}

// ColumnMapping converts the columns blocks to the unpacker's table.
func (c *Config) ColumnMapping() catalog.ColumnMapping {
	mapping := catalog.ColumnMapping{}
	for _, col := range c.Columns {
		mapping[col.Field] = col.Take
	}
	return mapping
}

// UnitScalings converts the units blocks, preserving declaration order.
func (c *Config) UnitScalings() []catalog.UnitScaling {
	units := make([]catalog.UnitScaling, len(c.Units))
	for i, u := range c.Units {
		units[i] = catalog.UnitScaling{Match: u.Match, Factor: u.Factor}
	}
	return units
}

// Bounds converts the select blocks, preserving declaration order.
func (c *Config) Bounds() []catalog.Bound {
	bounds := make([]catalog.Bound, len(c.Select))
	for i, s := range c.Select {
		bounds[i] = catalog.Bound{Field: s.Field, Lower: s.Min, Upper: s.Max}
	}
	return bounds
}

// SnapshotNumber returns the requested snapshot, or io.NoSnapshot.
func (s *Subhalos) SnapshotNumber() int {
	if s.Snapshot == nil {
		return gio.NoSnapshot
	}
	return *s.Snapshot
}

// SnapshotNumber returns the requested snapshot, or io.NoSnapshot.
func (s *Supplementary) SnapshotNumber() int {
	if s.Snapshot == nil {
		return gio.NoSnapshot
	}
	return *s.Snapshot
}

// Example is a complete configuration mirroring a typical TNG run. It is
// printed by `galquench example`.
const Example = `# galquench pipeline configuration.

# Where the merged record array is written (.npy).
output = "data/test.npy"

# Reject records carrying a NaN in any field.
only_finite = false

# The dense subhalo table. Leaving fields unset loads every dataset.
subhalos {
  file   = "data/groupcats.gqb"
  fields = ["SubhaloMassType", "SubhaloStellarPhotometricsRad"]
}

# One block per sparse supplementary catalog. subfind_id names the dataset
# holding the subhalo IDs. snapshot selects a Snapshot_{n} group and must
# be set exactly when the file has such groups.
supplementary {
  file       = "data/star_formation_rates.gqb"
  subfind_id = "SubfindID"
  snapshot   = 99
  keys       = ["SFR_MsunPerYrs_in_all_1000Myrs"]
}

supplementary {
  file       = "data/hih2_galaxy_099.sqlite"
  subfind_id = "id_subhalo"
  keys       = ["m_neutral_H"]
}

# Multi-column fields must say which sub-columns to keep. Column 1 of
# SubhaloMassType is dark matter, column 4 is stars.
columns "SubhaloMassType" {
  take = [1, 4]
}

# Multiply every field whose name contains the label (case-insensitive).
# Blocks apply in order.
units "SubhaloMass" {
  factor = 1e10
}

# Keep records with min < value < max. Both bounds are strict.
select "SubhaloMassType_1" {
  min = 0
  max = 1e12
}

select "SubhaloMassType_4" {
  min = 0
  max = 1e12
}
`
