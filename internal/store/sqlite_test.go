package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mso-gis/redist-cli/internal/blocks"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testBlockTable() *blocks.Table {
	t := blocks.New("GEOID10", "Ward_Numbe", "Name", "EstTotPop14", "NewPop2015")
	t.Append(blocks.Row{
		"GEOID10":     blocks.Str("300630001001000"),
		"Ward_Numbe":  blocks.Num(1),
		"Name":        blocks.Str("Northside"),
		"EstTotPop14": blocks.Num(120),
		"NewPop2015":  blocks.Num(4),
	})
	t.Append(blocks.Row{
		"GEOID10":     blocks.Str("300630001001001"),
		"EstTotPop14": blocks.Num(30),
		// ward, NC, permit fields null
	})
	return t
}

func TestSQLite_SaveAndLoadTable(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	src := testBlockTable()
	geoms := map[string][]byte{"300630001001000": {0x01, 0x02}}
	require.NoError(t, st.SaveTable(ctx, "blocks", "GEOID10", src, geoms))

	got, err := st.LoadTable(ctx, "blocks")
	require.NoError(t, err)

	assert.Equal(t, src.Fields, got.Fields)
	require.Equal(t, 2, got.Len())

	// Rows come back ordered by geoid.
	first := got.Rows[0]
	assert.Equal(t, blocks.Str("300630001001000"), first["GEOID10"])
	assert.Equal(t, blocks.Num(1), first["Ward_Numbe"])
	assert.Equal(t, blocks.Num(120), first["EstTotPop14"])

	second := got.Rows[1]
	assert.True(t, second["Ward_Numbe"].IsNull())
	assert.True(t, second["NewPop2015"].IsNull())
}

func TestSQLite_SaveTableReplaces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveTable(ctx, "blocks", "GEOID10", testBlockTable(), nil))

	smaller := blocks.New("GEOID10", "EstTotPop14")
	smaller.Append(blocks.Row{"GEOID10": blocks.Str("x"), "EstTotPop14": blocks.Num(1)})
	require.NoError(t, st.SaveTable(ctx, "blocks", "GEOID10", smaller, nil))

	got, err := st.LoadTable(ctx, "blocks")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
	assert.Equal(t, []string{"GEOID10", "EstTotPop14"}, got.Fields)
}

func TestSQLite_LoadTableMissing(t *testing.T) {
	st := newTestSQLiteStore(t)
	_, err := st.LoadTable(context.Background(), "nope")
	assert.Error(t, err)
}

func TestSQLite_SaveTableBadKeyField(t *testing.T) {
	st := newTestSQLiteStore(t)
	err := st.SaveTable(context.Background(), "blocks", "missing", testBlockTable(), nil)
	assert.Error(t, err)
}

func TestSQLite_SaveTableNullKey(t *testing.T) {
	st := newTestSQLiteStore(t)

	tbl := blocks.New("GEOID10", "pop")
	tbl.Append(blocks.Row{"pop": blocks.Num(5)})
	err := st.SaveTable(context.Background(), "blocks", "GEOID10", tbl, nil)
	assert.Error(t, err)
}

func TestSQLite_ImportLog(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	first, err := st.RecordImport(ctx, "data/cleaned_blks.shp", "blocks", 4200)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = st.RecordImport(ctx, "data/bp16.csv", "blocks", 312)
	require.NoError(t, err)

	recs, err := st.ListImports(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.Equal(t, "blocks", rec.TableName)
		assert.False(t, rec.LoadedAt.IsZero())
	}
}

func TestSQLite_ImportLogEmpty(t *testing.T) {
	st := newTestSQLiteStore(t)
	recs, err := st.ListImports(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}
