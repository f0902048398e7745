package io

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestDB(t *testing.T, ddl ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range ddl {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestSQLiteSnapshotTables(t *testing.T) {
	path := writeTestDB(t,
		`CREATE TABLE "Snapshot_99" ("SubfindID" INTEGER, "SFR" REAL)`,
		`INSERT INTO "Snapshot_99" VALUES (2, 0.5), (0, 1.5)`,
	)

	src, err := OpenSQLite(path)
	require.NoError(t, err)
	defer src.Close()

	keys, err := src.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Snapshot_99"}, keys)

	c, err := ReadSupplementary(src, "SubfindID", Options{Snapshot: 99})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 0}, c.IDs())
	col, ok := c.Column("SFR")
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 1.5}, col.Values())
}

func TestSQLiteRootTable(t *testing.T) {
	path := writeTestDB(t,
		`CREATE TABLE "catalog" ("SubhaloMass" REAL, "SubhaloSFR" REAL)`,
		`INSERT INTO "catalog" VALUES (1, 4), (2, 5), (3, NULL)`,
	)

	src, err := OpenSQLite(path)
	require.NoError(t, err)
	defer src.Close()

	c, err := ReadSubhalos(src, Options{Snapshot: NoSnapshot})
	require.NoError(t, err)
	assert.Equal(t, 3, c.Count())

	sfr, ok := c.Column("SubhaloSFR")
	require.True(t, ok)
	assert.Equal(t, 4.0, sfr.Values()[0])
	assert.True(t, math.IsNaN(sfr.Values()[2]), "NULL reads as NaN")
}

func TestSQLiteAmbiguousSnapshot(t *testing.T) {
	path := writeTestDB(t,
		`CREATE TABLE "Snapshot_99" ("SubfindID" INTEGER)`,
	)

	src, err := OpenSQLite(path)
	require.NoError(t, err)
	defer src.Close()

	_, err = ReadSupplementary(src, "SubfindID", Options{Snapshot: NoSnapshot})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "specify a snapshot number")
}

func TestSQLiteDatasetErrors(t *testing.T) {
	path := writeTestDB(t,
		`CREATE TABLE "Snapshot_99" ("SubfindID" INTEGER)`,
	)

	src, err := OpenSQLite(path)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Dataset("Snapshot_99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group, not a dataset")

	g, err := src.Group("Snapshot_99")
	require.NoError(t, err)
	_, err = g.Dataset("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}
