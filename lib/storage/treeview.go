package storage

import (
	"github.com/tmarback/BlakeBot-sub002/lib/cache"
	"github.com/tmarback/BlakeBot-sub002/lib/translate"
)

// --------------------------------------------------------------------------
// Tree View
// --------------------------------------------------------------------------

// treeView implements Tree over a flat table by flattening each path of
// typed keys into one composite string key with the list translator derived
// from the key translator. The empty path encodes to the empty composite
// key, which addresses the root value.
type treeView[K comparable, V any] struct {
	core  tableCore[V]
	pathT translate.Translator[[]K]
}

func (t *treeView[K, V]) flushCache() {
	t.core.flushCache()
}

func (t *treeView[K, V]) encodePath(path []K) (string, error) {
	ks, err := t.pathT.Encode(path)
	if err != nil {
		return "", t.core.translationError("encode path", err)
	}
	return ks, nil
}

func (t *treeView[K, V]) Get(path ...K) (V, bool, error) {
	ks, err := t.encodePath(path)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return t.core.getKey(ks)
}

func (t *treeView[K, V]) GetAll(path ...K) ([]V, error) {
	if err := t.core.guard(); err != nil {
		return nil, err
	}
	// prefixes of path from root (empty) to leaf (full path), inclusive
	values := make([]V, 0, len(path)+1)
	for i := 0; i <= len(path); i++ {
		ks, err := t.encodePath(path[:i])
		if err != nil {
			return nil, err
		}
		v, ok, err := t.core.getKey(ks)
		if err != nil {
			return nil, err
		}
		if ok {
			values = append(values, v)
		}
	}
	return values, nil
}

func (t *treeView[K, V]) Set(value V, path ...K) (V, bool, error) {
	ks, err := t.encodePath(path)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return t.core.putKey(ks, value)
}

func (t *treeView[K, V]) Add(value V, path ...K) (bool, error) {
	ks, err := t.encodePath(path)
	if err != nil {
		return false, err
	}
	return t.core.addKey(ks, value)
}

func (t *treeView[K, V]) Remove(path ...K) (V, bool, error) {
	ks, err := t.encodePath(path)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return t.core.removeKey(ks)
}

func (t *treeView[K, V]) Clear() error {
	return t.core.clear()
}

func (t *treeView[K, V]) CacheStats() cache.Stats {
	return t.core.stats()
}
