/*The io package contains code for reading subhalo and supplementary
catalogs from disk. It provides an abstract interface (Source) over
hierarchical key -> array files so that the rest of the pipeline can read
every catalog format in the same way.

Adding a new format means implementing the five Source methods for it and
teaching the CLI's source dispatch about the file extension. MapSource is
the smallest example and GQBSource is a full on-disk one.*/
package io

import (
	"fmt"
	"strings"

	"github.com/galquench/galquench/catalog"
)

// Source is one open catalog file, or a group within one. Keys lists the
// datasets and subgroups at the current level. Not threadsafe, obviously.
type Source interface {
	// Name identifies the source in error messages.
	Name() string
	Keys() ([]string, error)
	IsGroup(key string) (bool, error)
	Group(key string) (Source, error)
	// Dataset reads the named numeric dataset in full. Asking for a group
	// or an absent key is an error.
	Dataset(key string) (*catalog.Column, error)
}

// NoSnapshot marks a source that is not split into snapshot subgroups.
const NoSnapshot = -1

// Options restricts which keys a reader loads.
type Options struct {
	// Keys to load. Empty means every dataset at the selected level.
	Keys []string
	// SkipKeys are removed from the loaded set.
	SkipKeys []string
	// Snapshot selects the Snapshot_{n} subgroup, or NoSnapshot if the
	// source is already cut to a single snapshot.
	Snapshot int
}

// ReadSupplementary reads a sparse measurement catalog keyed by subfind
// IDs. idKey names the identifier dataset; it is coerced to integers and
// never loaded as a data field.
func ReadSupplementary(
	src Source, idKey string, opts Options,
) (*catalog.Catalog, error) {
	level, err := descend(src, opts.Snapshot)
	if err != nil {
		return nil, err
	}
	keys, err := level.Keys()
	if err != nil {
		return nil, err
	}

	if !contains(keys, idKey) {
		var suggestions []string
		for _, k := range keys {
			if strings.Contains(strings.ToLower(k), "id") {
				suggestions = append(suggestions, k)
			}
		}
		return nil, fmt.Errorf(
			"subfind ID key `%s` is not in `%s`, possibly one of %v",
			idKey, src.Name(), suggestions,
		)
	}

	load, err := selectKeys(level, keys, opts)
	if err != nil {
		return nil, err
	}
	load = remove(load, idKey)

	idCol, err := level.Dataset(idKey)
	if err != nil {
		return nil, err
	}
	ids, err := toIDs(idCol)
	if err != nil {
		return nil, fmt.Errorf(
			"subfind ID key `%s` in `%s`: %s", idKey, src.Name(), err.Error(),
		)
	}

	out := catalog.New(src.Name())
	out.SetIDs(ids)
	for _, k := range load {
		col, err := level.Dataset(k)
		if err != nil {
			return nil, err
		}
		out.SetColumn(k, col)
	}
	return out, nil
}

// ReadSubhalos reads the dense primary subhalo table and records its row
// count as the canonical record count. All selected fields must have the
// same number of rows.
func ReadSubhalos(src Source, opts Options) (*catalog.Catalog, error) {
	level, err := descend(src, opts.Snapshot)
	if err != nil {
		return nil, err
	}
	keys, err := level.Keys()
	if err != nil {
		return nil, err
	}

	load, err := selectKeys(level, keys, opts)
	if err != nil {
		return nil, err
	}

	out := catalog.New(src.Name())
	n := -1
	for _, k := range load {
		col, err := level.Dataset(k)
		if err != nil {
			return nil, err
		}
		if n == -1 {
			n = col.Len()
		} else if col.Len() != n {
			return nil, fmt.Errorf(
				"field `%s` in `%s` has %d rows, but earlier fields have %d",
				k, src.Name(), col.Len(), n,
			)
		}
		out.SetColumn(k, col)
	}
	if n == -1 {
		return nil, fmt.Errorf("no datasets selected from `%s`", src.Name())
	}
	out.SetCount(n)
	return out, nil
}

// descend resolves the snapshot group. Asking for no snapshot on a file
// that has Snapshot_ groups is ambiguous and a configuration error.
func descend(src Source, snapshot int) (Source, error) {
	keys, err := src.Keys()
	if err != nil {
		return nil, err
	}

	if snapshot != NoSnapshot {
		name := fmt.Sprintf("Snapshot_%d", snapshot)
		if !contains(keys, name) {
			return nil, fmt.Errorf(
				"invalid snapshot number `%d` for `%s`", snapshot, src.Name(),
			)
		}
		return src.Group(name)
	}

	for _, k := range keys {
		if strings.Contains(k, "Snapshot_") {
			return nil, fmt.Errorf(
				"`%s` appears to be a file with snapshots, specify a "+
					"snapshot number", src.Name(),
			)
		}
	}
	return src, nil
}

// selectKeys validates an explicit key list, or defaults to every dataset
// at the level, and applies the skip list.
func selectKeys(level Source, keys []string, opts Options) ([]string, error) {
	var load []string
	if len(opts.Keys) > 0 {
		for _, k := range opts.Keys {
			if !contains(keys, k) {
				return nil, fmt.Errorf(
					"invalid key `%s` in `%s`", k, level.Name(),
				)
			}
		}
		load = append(load, opts.Keys...)
	} else {
		for _, k := range keys {
			isGroup, err := level.IsGroup(k)
			if err != nil {
				return nil, err
			}
			if isGroup {
				continue
			}
			load = append(load, k)
		}
	}

	for _, skip := range opts.SkipKeys {
		load = remove(load, skip)
	}
	return load, nil
}

// toIDs coerces a 1-D identifier column to integers.
func toIDs(col *catalog.Column) ([]int64, error) {
	if col.Width() != 1 {
		return nil, fmt.Errorf("identifier has %d columns", col.Width())
	}
	vals := col.Values()
	ids := make([]int64, len(vals))
	for i, v := range vals {
		ids[i] = int64(v)
	}
	return ids, nil
}

func contains(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func remove(keys []string, key string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}
