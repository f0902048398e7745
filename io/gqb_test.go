package io

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galquench/galquench/catalog"
)

func TestGQBRoundTrip(t *testing.T) {
	fs := memfs.New()

	src := NewMapSource("star_formation_rates.gqb")
	snap := src.AddGroup("Snapshot_99")
	snap.AddDataset("SubfindID", catalog.NewColumn([]float64{3, 1, 4}))
	snap.AddDataset("SFR", catalog.NewColumn([]float64{0.25, 0.5, 0.75}))
	packed, err := catalog.NewMatrixColumn([]float64{1, 2, 3, 4, 5, 6}, 2)
	require.NoError(t, err)
	snap.AddDataset("Packed", packed)

	require.NoError(t, WriteGQB(fs, "star_formation_rates.gqb", src))

	back, err := OpenGQB(fs, "star_formation_rates.gqb")
	require.NoError(t, err)

	keys, err := back.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Snapshot_99"}, keys)

	isGroup, err := back.IsGroup("Snapshot_99")
	require.NoError(t, err)
	assert.True(t, isGroup)

	g, err := back.Group("Snapshot_99")
	require.NoError(t, err)

	gKeys, err := g.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"SubfindID", "SFR", "Packed"}, gKeys)

	sfr, err := g.Dataset("SFR")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75}, sfr.Values())

	p, err := g.Dataset("Packed")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Width())
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 4.0, p.At(1, 1))
}

func TestGQBThroughReaders(t *testing.T) {
	fs := memfs.New()

	src := NewMapSource("sfr.gqb")
	snap := src.AddGroup("Snapshot_99")
	snap.AddDataset("SubfindID", catalog.NewColumn([]float64{0, 2}))
	snap.AddDataset("SFR", catalog.NewColumn([]float64{1.5, 2.5}))
	require.NoError(t, WriteGQB(fs, "sfr.gqb", src))

	back, err := OpenGQB(fs, "sfr.gqb")
	require.NoError(t, err)

	c, err := ReadSupplementary(back, "SubfindID", Options{Snapshot: 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 2}, c.IDs())
	col, _ := c.Column("SFR")
	assert.Equal(t, []float64{1.5, 2.5}, col.Values())
}

func TestOpenGQBBadMagic(t *testing.T) {
	fs := memfs.New()
	f, err := fs.Create("not_a_catalog.gqb")
	require.NoError(t, err)
	_, err = f.Write([]byte("definitely not a GQB file"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = OpenGQB(fs, "not_a_catalog.gqb")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a GQB file")
}

func TestOpenGQBMissingFile(t *testing.T) {
	fs := memfs.New()
	_, err := OpenGQB(fs, "missing.gqb")
	assert.Error(t, err)
}
