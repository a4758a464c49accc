package storage

import (
	"fmt"

	"github.com/tmarback/BlakeBot-sub002/lib/cache"
	"github.com/tmarback/BlakeBot-sub002/lib/data"
	"github.com/tmarback/BlakeBot-sub002/lib/translate"
)

// --------------------------------------------------------------------------
// Shared View Core
// --------------------------------------------------------------------------

// tableCore is the cache-aware, closed-guarded plumbing shared by map and
// tree views. It operates on already-encoded string keys; the flavors on top
// only differ in how they produce those keys.
type tableCore[V any] struct {
	db     *Database
	name   string
	table  Table
	valueT translate.Translator[V]
	cache  *cache.Cache[string, V]
}

func newTableCore[V any](db *Database, name string, table Table, valueT translate.Translator[V]) tableCore[V] {
	return tableCore[V]{
		db:     db,
		name:   name,
		table:  table,
		valueT: valueT,
		cache:  newViewCache[V](db, name),
	}
}

// guard fails fast once the owning database is closed. Every view operation
// goes through here first.
func (c *tableCore[V]) guard() error {
	if c.db.closed.Load() {
		return NewError(RetCInvalidState, fmt.Sprintf("database owning view %q is closed", c.name))
	}
	return nil
}

func (c *tableCore[V]) translationError(msg string, cause error) error {
	return WrapError(RetCTranslation, fmt.Sprintf("view %q: %s", c.name, msg), cause)
}

// getKey serves a read: cache first, then the backing table, decoding the
// stored Data through the value translator and caching the success. Failed
// fetches are never cached, so the next call retries the backing store.
func (c *tableCore[V]) getKey(key string) (V, bool, error) {
	var zero V
	if err := c.guard(); err != nil {
		return zero, false, err
	}
	if v, ok := c.cache.Get(key); ok {
		return v, true, nil
	}
	d, ok, err := c.table.Get(key)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	v, err := c.valueT.FromData(d)
	if err != nil {
		return zero, false, c.translationError("decode stored value", err)
	}
	c.cache.Put(key, v)
	return v, true, nil
}

// putKey writes through to the backing table and updates a cached entry in
// place, deliberately leaving the recency order of other entries untouched.
func (c *tableCore[V]) putKey(key string, value V) (V, bool, error) {
	var zero V
	if err := c.guard(); err != nil {
		return zero, false, err
	}
	d, err := c.valueT.ToData(value)
	if err != nil {
		return zero, false, c.translationError("encode value", err)
	}
	prevData, existed, err := c.table.Put(key, d)
	if err != nil {
		return zero, false, err
	}
	c.cache.Update(key, value)
	if !existed {
		return zero, false, nil
	}
	prev, err := c.valueT.FromData(prevData)
	if err != nil {
		// the write is already applied; the boolean tells the caller a
		// previous value existed even though it could not be decoded
		return zero, true, c.translationError("decode previous value", err)
	}
	return prev, true, nil
}

// addKey inserts only when the key is vacant; an occupied key is reported
// through the boolean, not as an error.
func (c *tableCore[V]) addKey(key string, value V) (bool, error) {
	if err := c.guard(); err != nil {
		return false, err
	}
	d, err := c.valueT.ToData(value)
	if err != nil {
		return false, c.translationError("encode value", err)
	}
	return c.table.PutIfAbsent(key, d)
}

// removeKey evicts the cache entry first, then deletes from the backing
// table, so a failed delete cannot leave a stale cached value behind.
func (c *tableCore[V]) removeKey(key string) (V, bool, error) {
	var zero V
	if err := c.guard(); err != nil {
		return zero, false, err
	}
	c.cache.Remove(key)
	prevData, existed, err := c.table.Delete(key)
	if err != nil {
		return zero, false, err
	}
	if !existed {
		return zero, false, nil
	}
	prev, err := c.valueT.FromData(prevData)
	if err != nil {
		// the delete is already applied, same contract as putKey
		return zero, true, c.translationError("decode previous value", err)
	}
	return prev, true, nil
}

// hasKey checks presence without decoding. A cached entry answers
// immediately; otherwise the backing table is consulted and nothing is
// cached.
func (c *tableCore[V]) hasKey(key string) (bool, error) {
	if err := c.guard(); err != nil {
		return false, err
	}
	if _, ok := c.cache.Get(key); ok {
		return true, nil
	}
	_, ok, err := c.table.Get(key)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// clear is a bulk-invalidating operation: the whole view cache is flushed
// rather than synchronized entry by entry.
func (c *tableCore[V]) clear() error {
	if err := c.guard(); err != nil {
		return err
	}
	c.cache.Clear()
	return c.table.Clear()
}

func (c *tableCore[V]) flushCache() {
	c.cache.Clear()
}

func (c *tableCore[V]) stats() cache.Stats {
	return c.cache.Stats()
}

// --------------------------------------------------------------------------
// Map View
// --------------------------------------------------------------------------

// mapView implements Map by encoding each key through the key translator and
// delegating to the shared core.
type mapView[K comparable, V any] struct {
	core tableCore[V]
	keyT translate.Translator[K]
}

func (m *mapView[K, V]) flushCache() {
	m.core.flushCache()
}

func (m *mapView[K, V]) encodeKey(key K) (string, error) {
	ks, err := m.keyT.Encode(key)
	if err != nil {
		return "", m.core.translationError("encode key", err)
	}
	return ks, nil
}

func (m *mapView[K, V]) Get(key K) (V, bool, error) {
	ks, err := m.encodeKey(key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return m.core.getKey(ks)
}

func (m *mapView[K, V]) Put(key K, value V) (V, bool, error) {
	ks, err := m.encodeKey(key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return m.core.putKey(ks, value)
}

func (m *mapView[K, V]) Add(key K, value V) (bool, error) {
	ks, err := m.encodeKey(key)
	if err != nil {
		return false, err
	}
	return m.core.addKey(ks, value)
}

func (m *mapView[K, V]) Remove(key K) (V, bool, error) {
	ks, err := m.encodeKey(key)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return m.core.removeKey(ks)
}

func (m *mapView[K, V]) Has(key K) (bool, error) {
	ks, err := m.encodeKey(key)
	if err != nil {
		return false, err
	}
	return m.core.hasKey(ks)
}

func (m *mapView[K, V]) Len() (int, error) {
	if err := m.core.guard(); err != nil {
		return 0, err
	}
	return m.core.table.Len()
}

func (m *mapView[K, V]) Clear() error {
	return m.core.clear()
}

func (m *mapView[K, V]) ForEach(fn func(key K, value V) bool) error {
	if err := m.core.guard(); err != nil {
		return err
	}
	var iterErr error
	err := m.core.table.Range(func(ks string, d data.Data) bool {
		key, kerr := m.keyT.Decode(ks)
		if kerr != nil {
			iterErr = m.core.translationError("decode stored key", kerr)
			return false
		}
		value, verr := m.core.valueT.FromData(d)
		if verr != nil {
			iterErr = m.core.translationError("decode stored value", verr)
			return false
		}
		return fn(key, value)
	})
	if err != nil {
		return err
	}
	return iterErr
}

func (m *mapView[K, V]) CacheStats() cache.Stats {
	return m.core.stats()
}
