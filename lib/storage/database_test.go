package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarback/BlakeBot-sub002/lib/storage"
	"github.com/tmarback/BlakeBot-sub002/lib/storage/engines/memory"
	"github.com/tmarback/BlakeBot-sub002/lib/translate"
)

func newLoaded(t *testing.T) *storage.Database {
	t.Helper()
	db := storage.New(memory.NewEngine(), nil)
	require.NoError(t, db.Load(nil))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestViews(t *testing.T) {
	db := newLoaded(t)

	assert.Empty(t, db.Views())

	_, err := storage.GetMap(db, "zebra", translate.NewString(), translate.NewString())
	require.NoError(t, err)
	_, err = storage.GetTree(db, "apple", translate.NewString(), translate.NewString())
	require.NoError(t, err)
	_, err = storage.GetMap(db, "mango", translate.NewInt(), translate.NewBool())
	require.NoError(t, err)

	// rebinding does not duplicate the entry
	_, err = storage.GetMap(db, "zebra", translate.NewString(), translate.NewString())
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "mango", "zebra"}, db.Views())
}

func TestOptionsValidation(t *testing.T) {
	assert.Equal(t, 100, storage.DefaultOptions().CacheSize)

	// nil options fall back to the defaults
	db := storage.New(memory.NewEngine(), nil)
	require.NoError(t, db.Load(nil))
	defer db.Close()

	m, err := storage.GetMap(db, "m", translate.NewString(), translate.NewString())
	require.NoError(t, err)
	_, _, err = m.Put("k", "v")
	require.NoError(t, err)
}

func TestViewsShareBackingTable(t *testing.T) {
	db := newLoaded(t)

	m1, err := storage.GetMap(db, "shared", translate.NewString(), translate.NewInt())
	require.NoError(t, err)
	m2, err := storage.GetMap(db, "shared", translate.NewString(), translate.NewInt())
	require.NoError(t, err)

	_, _, err = m1.Put("k", 7)
	require.NoError(t, err)
	v, ok, err := m2.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), v)
}

func TestDistinctViewsAreIsolated(t *testing.T) {
	db := newLoaded(t)

	a, err := storage.GetMap(db, "a", translate.NewString(), translate.NewString())
	require.NoError(t, err)
	b, err := storage.GetMap(db, "b", translate.NewString(), translate.NewString())
	require.NoError(t, err)

	_, _, err = a.Put("k", "va")
	require.NoError(t, err)

	_, ok, err := b.Get("k")
	require.NoError(t, err)
	assert.False(t, ok, "views with distinct names must not share data")
}

func TestTranslationFailureNotCached(t *testing.T) {
	// two databases over one engine simulate representation drift: the
	// table holds strings, a second handle reads it as ints
	engine := memory.NewEngine()
	db1 := storage.New(engine, nil)
	require.NoError(t, db1.Load(nil))
	defer db1.Close()
	db2 := storage.New(engine, nil)
	require.NoError(t, db2.Load(nil))
	defer db2.Close()

	raw, err := storage.GetMap(db1, "mixed", translate.NewString(), translate.NewString())
	require.NoError(t, err)
	_, _, err = raw.Put("k", "not-a-number")
	require.NoError(t, err)

	ints, err := storage.GetMap(db2, "mixed", translate.NewString(), translate.NewInt())
	require.NoError(t, err)

	_, _, err = ints.Get("k")
	require.Error(t, err)
	assert.Equal(t, storage.RetCTranslation, storage.CodeOf(err))

	// the failure was not cached, a second read fails the same way with
	// another cache miss instead of serving a poisoned entry
	_, _, err = ints.Get("k")
	require.Error(t, err)
	assert.Equal(t, storage.RetCTranslation, storage.CodeOf(err))
	stats := ints.CacheStats()
	assert.Equal(t, uint64(0), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
}

func TestMetadataAfterClose(t *testing.T) {
	db := newLoaded(t)
	_, err := storage.GetMap(db, "m", translate.NewString(), translate.NewString())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// metadata accessors stay answerable; only views and data operations
	// are invalidated by the close
	assert.Equal(t, storage.ImplMemory, db.Type())
	assert.Empty(t, db.LoadParams())
	assert.Equal(t, storage.StateClosed, db.State())
	assert.Empty(t, db.Views())
}

func TestPreviousValueDecodeFailure(t *testing.T) {
	// a drifted table holds string values; an int view writes over them
	engine := memory.NewEngine()
	db1 := storage.New(engine, nil)
	require.NoError(t, db1.Load(nil))
	defer db1.Close()
	db2 := storage.New(engine, nil)
	require.NoError(t, db2.Load(nil))
	defer db2.Close()

	raw, err := storage.GetMap(db1, "drift", translate.NewString(), translate.NewString())
	require.NoError(t, err)
	_, _, err = raw.Put("k", "legacy")
	require.NoError(t, err)
	_, _, err = raw.Put("r", "legacy")
	require.NoError(t, err)

	ints, err := storage.GetMap(db2, "drift", translate.NewString(), translate.NewInt())
	require.NoError(t, err)

	// the write applies even though the replaced value cannot be decoded;
	// the error carries the translation failure, the boolean the existence
	_, existed, err := ints.Put("k", 7)
	require.Error(t, err)
	assert.Equal(t, storage.RetCTranslation, storage.CodeOf(err))
	assert.True(t, existed)
	v, ok, err := ints.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(7), v)

	// same contract for removes
	_, existed, err = ints.Remove("r")
	require.Error(t, err)
	assert.Equal(t, storage.RetCTranslation, storage.CodeOf(err))
	assert.True(t, existed)
	_, ok, err = ints.Get("r")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRetCodes(t *testing.T) {
	err := storage.NewError(storage.RetCTranslation, "boom")
	assert.Equal(t, storage.RetCTranslation, storage.CodeOf(err))
	assert.Contains(t, err.Error(), "boom")

	// foreign errors carry no code
	assert.Equal(t, storage.RetCStorage, storage.CodeOf(assert.AnError))
	assert.Equal(t, storage.RetCSuccess, storage.CodeOf(nil))
}
