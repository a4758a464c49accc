package testing

import (
	"fmt"
	"testing"

	"github.com/tmarback/BlakeBot-sub002/lib/storage"
	"github.com/tmarback/BlakeBot-sub002/lib/translate"
)

// DatabaseFactory creates a fresh, unloaded engine together with the
// parameters that load it. Every call must yield an independent backing
// store (for file engines: a new file), since some tests drive two
// databases at once.
type DatabaseFactory func(t *testing.T) (storage.Engine, map[string]string)

// RunDatabaseTests runs the conformance suite for a storage engine. It
// exercises the whole Database contract on top of the engine: lifecycle,
// map and tree semantics, translator compatibility, closed-state guarding,
// cache behavior and bulk copy.
func RunDatabaseTests(t *testing.T, name string, factory DatabaseFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Lifecycle", func(t *testing.T) {
			testLifecycle(t, factory)
		})
		t.Run("LoadParams", func(t *testing.T) {
			testLoadParams(t, factory)
		})
		t.Run("MapPutGet", func(t *testing.T) {
			testMapPutGet(t, factory)
		})
		t.Run("MapAddRemove", func(t *testing.T) {
			testMapAddRemove(t, factory)
		})
		t.Run("MapClearForEach", func(t *testing.T) {
			testMapClearForEach(t, factory)
		})
		t.Run("TreePaths", func(t *testing.T) {
			testTreePaths(t, factory)
		})
		t.Run("TreeGetAll", func(t *testing.T) {
			testTreeGetAll(t, factory)
		})
		t.Run("TranslatorCompatibility", func(t *testing.T) {
			testTranslatorCompatibility(t, factory)
		})
		t.Run("CacheBehavior", func(t *testing.T) {
			testCacheBehavior(t, factory)
		})
		t.Run("ClosedGuard", func(t *testing.T) {
			testClosedGuard(t, factory)
		})
		t.Run("CopyFrom", func(t *testing.T) {
			testCopyFrom(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// mustLoad builds and loads a database, registering cleanup.
func mustLoad(t *testing.T, factory DatabaseFactory) *storage.Database {
	t.Helper()
	engine, params := factory(t)
	db := storage.New(engine, nil)
	if err := db.Load(params); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func wantCode(t *testing.T, err error, code storage.RetCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if got := storage.CodeOf(err); got != code {
		t.Fatalf("expected error code %s, got %s (%v)", code, got, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testLifecycle(t *testing.T, factory DatabaseFactory) {
	engine, params := factory(t)
	db := storage.New(engine, nil)

	if db.State() != storage.StateUnloaded {
		t.Errorf("expected fresh database to be unloaded, got %s", db.State())
	}

	// views are only issued once loaded
	_, err := storage.GetMap(db, "early", translate.NewString(), translate.NewString())
	wantCode(t, err, storage.RetCInvalidState)

	if err := db.Load(params); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if db.State() != storage.StateLoaded {
		t.Errorf("expected database to be loaded, got %s", db.State())
	}

	// loading twice is a usage error
	wantCode(t, db.Load(params), storage.RetCInvalidState)

	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if db.State() != storage.StateClosed {
		t.Errorf("expected database to be closed, got %s", db.State())
	}

	// a second close is a no-op, not an error
	if err := db.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// a closed database cannot be reloaded
	wantCode(t, db.Load(params), storage.RetCInvalidState)
}

func testLoadParams(t *testing.T, factory DatabaseFactory) {
	engine, params := factory(t)
	db := storage.New(engine, nil)

	bogus := map[string]string{"no-such-parameter": "x"}
	for k, v := range params {
		bogus[k] = v
	}
	wantCode(t, db.Load(bogus), storage.RetCInvalidArgument)

	// declared parameters must carry names for configuration discovery
	for i, p := range db.LoadParams() {
		if p.Name == "" {
			t.Errorf("load parameter %d has no name", i)
		}
	}
}

func testMapPutGet(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	m, err := storage.GetMap(db, "settings", translate.NewString(), translate.NewString())
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}

	if _, ok, err := m.Get("greeting"); err != nil || ok {
		t.Fatalf("expected fresh map to be empty, got ok=%v err=%v", ok, err)
	}

	if _, existed, err := m.Put("greeting", "hello"); err != nil || existed {
		t.Fatalf("expected first Put to find nothing, got existed=%v err=%v", existed, err)
	}

	v, ok, err := m.Get("greeting")
	if err != nil || !ok || v != "hello" {
		t.Fatalf("Get returned (%q, %v, %v), want (hello, true, nil)", v, ok, err)
	}

	prev, existed, err := m.Put("greeting", "howdy")
	if err != nil || !existed || prev != "hello" {
		t.Fatalf("Put returned (%q, %v, %v), want (hello, true, nil)", prev, existed, err)
	}

	if v, _, _ := m.Get("greeting"); v != "howdy" {
		t.Errorf("expected updated value howdy, got %q", v)
	}
}

func testMapAddRemove(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	m, err := storage.GetMap(db, "scores", translate.NewString(), translate.NewInt())
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}

	if ok, err := m.Add("alpha", 1); err != nil || !ok {
		t.Fatalf("expected Add on vacant key to succeed, got ok=%v err=%v", ok, err)
	}
	if ok, err := m.Add("alpha", 2); err != nil || ok {
		t.Fatalf("expected Add on occupied key to report false, got ok=%v err=%v", ok, err)
	}
	if v, _, _ := m.Get("alpha"); v != 1 {
		t.Errorf("Add on occupied key must not overwrite, got %d", v)
	}

	if ok, err := m.Has("alpha"); err != nil || !ok {
		t.Fatalf("Has returned (%v, %v), want (true, nil)", ok, err)
	}

	prev, existed, err := m.Remove("alpha")
	if err != nil || !existed || prev != 1 {
		t.Fatalf("Remove returned (%d, %v, %v), want (1, true, nil)", prev, existed, err)
	}
	if ok, _ := m.Has("alpha"); ok {
		t.Error("expected key to be gone after Remove")
	}
	if _, existed, _ := m.Remove("alpha"); existed {
		t.Error("expected Remove on vacant key to report false")
	}
}

func testMapClearForEach(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	m, err := storage.GetMap(db, "inventory", translate.NewString(), translate.NewInt())
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}

	want := map[string]int64{"swords": 2, "shields": 1, "potions": 7}
	for k, v := range want {
		if _, _, err := m.Put(k, v); err != nil {
			t.Fatalf("Put(%q) failed: %v", k, err)
		}
	}

	if n, err := m.Len(); err != nil || n != len(want) {
		t.Fatalf("Len returned (%d, %v), want (%d, nil)", n, err, len(want))
	}

	got := map[string]int64{}
	err = m.ForEach(func(k string, v int64) bool {
		got[k] = v
		return true
	})
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ForEach missed entry %q=%d, got %d", k, v, got[k])
		}
	}

	if err := m.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := m.Len(); n != 0 {
		t.Errorf("expected empty map after Clear, got %d entries", n)
	}
	if _, ok, _ := m.Get("swords"); ok {
		t.Error("expected Get after Clear to miss, cache must have been flushed")
	}
}

func testTreePaths(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	tree, err := storage.GetTree(db, "guilds", translate.NewString(), translate.NewString())
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}

	// the empty path addresses the root value
	if _, existed, err := tree.Set("root-value"); err != nil || existed {
		t.Fatalf("expected root Set to find nothing, got existed=%v err=%v", existed, err)
	}
	if v, ok, err := tree.Get(); err != nil || !ok || v != "root-value" {
		t.Fatalf("root Get returned (%q, %v, %v), want (root-value, true, nil)", v, ok, err)
	}

	if _, _, err := tree.Set("general", "guild-1", "channels", "c-100"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok, _ := tree.Get("guild-1", "channels", "c-100"); !ok || v != "general" {
		t.Fatalf("Get returned (%q, %v), want (general, true)", v, ok)
	}

	// sibling and prefix paths are distinct keys
	if _, ok, _ := tree.Get("guild-1", "channels"); ok {
		t.Error("expected prefix path to be vacant")
	}

	if ok, err := tree.Add("taken", "guild-1", "channels", "c-100"); err != nil || ok {
		t.Fatalf("expected Add on occupied path to report false, got ok=%v err=%v", ok, err)
	}

	prev, existed, err := tree.Remove("guild-1", "channels", "c-100")
	if err != nil || !existed || prev != "general" {
		t.Fatalf("Remove returned (%q, %v, %v), want (general, true, nil)", prev, existed, err)
	}
	if _, ok, _ := tree.Get("guild-1", "channels", "c-100"); ok {
		t.Error("expected path to be gone after Remove")
	}
}

func testTreeGetAll(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	tree, err := storage.GetTree(db, "prefs", translate.NewString(), translate.NewInt())
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}

	// root and two of the four prefixes of the query path are mapped
	if _, _, err := tree.Set(1); err != nil {
		t.Fatalf("Set root failed: %v", err)
	}
	if _, _, err := tree.Set(2, "a"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, _, err := tree.Set(4, "a", "b", "c"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	values, err := tree.GetAll("a", "b", "c")
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	// root-to-leaf order, absent prefix ("a","b") skipped
	want := []int64{1, 2, 4}
	if len(values) != len(want) {
		t.Fatalf("GetAll returned %v, want %v", values, want)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Fatalf("GetAll returned %v, want %v", values, want)
		}
	}
}

func testTranslatorCompatibility(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	m1, err := storage.GetMap(db, "users", translate.NewString(), translate.NewInt())
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	if _, _, err := m1.Put("u-1", 42); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// a fresh instance of the same translator is compatible and yields the
	// original view
	m2, err := storage.GetMap(db, "users", translate.NewString(), translate.NewInt())
	if err != nil {
		t.Fatalf("GetMap with fresh translators failed: %v", err)
	}
	if v, ok, _ := m2.Get("u-1"); !ok || v != 42 {
		t.Errorf("expected rebound view to serve existing data, got (%d, %v)", v, ok)
	}

	// a translator with a different tag is representation drift
	_, err = storage.GetMap(db, "users", translate.NewString(), translate.NewString())
	wantCode(t, err, storage.RetCInvalidArgument)
	_, err = storage.GetMap(db, "users", translate.NewInt(), translate.NewInt())
	wantCode(t, err, storage.RetCInvalidArgument)

	// trees and maps share one namespace
	_, err = storage.GetTree(db, "users", translate.NewString(), translate.NewInt())
	wantCode(t, err, storage.RetCInvalidArgument)

	// empty names and nil translators are rejected outright
	_, err = storage.GetMap(db, "", translate.NewString(), translate.NewInt())
	wantCode(t, err, storage.RetCInvalidArgument)
	_, err = storage.GetMap[string, int64](db, "users", nil, nil)
	wantCode(t, err, storage.RetCInvalidArgument)
}

func testCacheBehavior(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	m, err := storage.GetMap(db, "sessions", translate.NewString(), translate.NewString())
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}

	if _, _, err := m.Put("k", "v1"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// a write does not populate the cache; the first read misses and the
	// second is served from the cache
	before := m.CacheStats()
	if v, ok, _ := m.Get("k"); !ok || v != "v1" {
		t.Fatalf("Get returned (%q, %v), want (v1, true)", v, ok)
	}
	mid := m.CacheStats()
	if mid.Misses != before.Misses+1 {
		t.Errorf("expected a cache miss on first Get, stats %+v -> %+v", before, mid)
	}
	if v, ok, _ := m.Get("k"); !ok || v != "v1" {
		t.Fatalf("second Get returned (%q, %v), want (v1, true)", v, ok)
	}
	after := m.CacheStats()
	if after.Hits != mid.Hits+1 {
		t.Errorf("expected a cache hit on second Get, stats %+v -> %+v", mid, after)
	}

	// a removed key misses again instead of serving a stale cached value
	if _, _, err := m.Remove("k"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok, err := m.Get("k"); err != nil || ok {
		t.Fatalf("expected Get after Remove to miss, got ok=%v err=%v", ok, err)
	}
	final := m.CacheStats()
	if final.Misses != after.Misses+1 {
		t.Errorf("expected a cache miss after Remove, stats %+v -> %+v", after, final)
	}
}

func testClosedGuard(t *testing.T, factory DatabaseFactory) {
	db := mustLoad(t, factory)

	m, err := storage.GetMap(db, "posts", translate.NewString(), translate.NewString())
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	tree, err := storage.GetTree(db, "threads", translate.NewString(), translate.NewString())
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	if _, _, err := m.Put("p", "body"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := db.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// every operation on the database and its outstanding views fails fast
	_, err = storage.GetMap(db, "posts", translate.NewString(), translate.NewString())
	wantCode(t, err, storage.RetCInvalidState)

	_, _, err = m.Get("p")
	wantCode(t, err, storage.RetCInvalidState)
	_, _, err = m.Put("p", "other")
	wantCode(t, err, storage.RetCInvalidState)
	_, err = m.Add("p2", "x")
	wantCode(t, err, storage.RetCInvalidState)
	_, _, err = m.Remove("p")
	wantCode(t, err, storage.RetCInvalidState)
	_, err = m.Has("p")
	wantCode(t, err, storage.RetCInvalidState)
	_, err = m.Len()
	wantCode(t, err, storage.RetCInvalidState)
	wantCode(t, m.Clear(), storage.RetCInvalidState)
	wantCode(t, m.ForEach(func(string, string) bool { return true }), storage.RetCInvalidState)

	_, _, err = tree.Get("a")
	wantCode(t, err, storage.RetCInvalidState)
	_, err = tree.GetAll("a", "b")
	wantCode(t, err, storage.RetCInvalidState)
	_, _, err = tree.Set("v", "a")
	wantCode(t, err, storage.RetCInvalidState)
}

func testCopyFrom(t *testing.T, factory DatabaseFactory) {
	src := mustLoad(t, factory)
	dst := mustLoad(t, factory)

	users, err := storage.GetMap(src, "users", translate.NewString(), translate.NewInt())
	if err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	tree, err := storage.GetTree(src, "prefs", translate.NewString(), translate.NewString())
	if err != nil {
		t.Fatalf("GetTree failed: %v", err)
	}
	for i := int64(0); i < 10; i++ {
		if _, _, err := users.Put(fmt.Sprintf("u-%d", i), i); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}
	if _, _, err := tree.Set("dark", "u-1", "theme"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom failed: %v", err)
	}

	// the destination serves the copied data under the original typed views
	dstUsers, err := storage.GetMap(dst, "users", translate.NewString(), translate.NewInt())
	if err != nil {
		t.Fatalf("GetMap on destination failed: %v", err)
	}
	for i := int64(0); i < 10; i++ {
		v, ok, err := dstUsers.Get(fmt.Sprintf("u-%d", i))
		if err != nil || !ok || v != i {
			t.Fatalf("copied Get(u-%d) returned (%d, %v, %v), want (%d, true, nil)", i, v, ok, err, i)
		}
	}
	dstTree, err := storage.GetTree(dst, "prefs", translate.NewString(), translate.NewString())
	if err != nil {
		t.Fatalf("GetTree on destination failed: %v", err)
	}
	if v, ok, _ := dstTree.Get("u-1", "theme"); !ok || v != "dark" {
		t.Errorf("copied tree Get returned (%q, %v), want (dark, true)", v, ok)
	}

	// a destination with views checked out fails fast
	other := mustLoad(t, factory)
	if _, err := storage.GetMap(other, "busy", translate.NewString(), translate.NewString()); err != nil {
		t.Fatalf("GetMap failed: %v", err)
	}
	wantCode(t, other.CopyFrom(src), storage.RetCInvalidState)
}
