package bolt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
	"github.com/tmarback/BlakeBot-sub002/lib/storage"
)

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

// openTimeout bounds how long Connect waits on the file lock held by
// another process.
const openTimeout = 1 * time.Second

// NewEngine creates a new embedded file engine backed by a bbolt database.
// Each table is one bucket; values are stored as the JSON encoding of their
// Data representation.
func NewEngine() storage.Engine {
	return &engineImpl{}
}

type engineImpl struct {
	db *bbolt.DB
}

func (e *engineImpl) Type() storage.Implementation {
	return storage.ImplBolt
}

func (e *engineImpl) LoadParams() []storage.Parameter {
	return []storage.Parameter{
		{
			Name:        "path",
			Description: "Path of the database file. Created if it does not exist.",
		},
	}
}

func (e *engineImpl) Connect(params map[string]string) error {
	db, err := bbolt.Open(params["path"], 0o600, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return storage.WrapError(storage.RetCStorage,
			fmt.Sprintf("bolt: open %q", params["path"]), err)
	}
	e.db = db
	return nil
}

func (e *engineImpl) OpenTable(name string) (storage.Table, error) {
	err := e.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, storage.WrapError(storage.RetCStorage,
			fmt.Sprintf("bolt: create bucket %q", name), err)
	}
	return &boltTable{db: e.db, name: name}, nil
}

func (e *engineImpl) Close() error {
	if err := e.db.Close(); err != nil {
		return storage.WrapError(storage.RetCStorage, "bolt: close", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

// keyPrefix is prepended to every stored key. bbolt rejects empty keys, and
// the empty composite key (a tree's root path) must stay representable.
const keyPrefix = "k#"

// boltTable is one bucket of the backing file. Bucket handles are only valid
// for the lifetime of a transaction, so every operation re-fetches its
// bucket by name.
type boltTable struct {
	db   *bbolt.DB
	name string
}

func (t *boltTable) Name() string {
	return t.name
}

func storedKey(key string) []byte {
	return []byte(keyPrefix + key)
}

func (t *boltTable) bucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	b := tx.Bucket([]byte(t.name))
	if b == nil {
		return nil, fmt.Errorf("bucket %q is missing", t.name)
	}
	return b, nil
}

func (t *boltTable) storageError(op string, cause error) error {
	// errors from nested helpers are already classified
	if e, ok := cause.(*storage.Error); ok {
		return e
	}
	return storage.WrapError(storage.RetCStorage,
		fmt.Sprintf("bolt: %s in table %q", op, t.name), cause)
}

func (t *boltTable) decode(raw []byte) (data.Data, error) {
	var d data.Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return data.Data{}, t.storageError("decode stored value", err)
	}
	return d, nil
}

func (t *boltTable) Get(key string) (data.Data, bool, error) {
	var (
		value data.Data
		found bool
	)
	err := t.db.View(func(tx *bbolt.Tx) error {
		b, err := t.bucket(tx)
		if err != nil {
			return err
		}
		raw := b.Get(storedKey(key))
		if raw == nil {
			return nil
		}
		value, err = t.decode(raw)
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return data.Data{}, false, t.storageError("get", err)
	}
	return value, found, nil
}

func (t *boltTable) Put(key string, value data.Data) (data.Data, bool, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return data.Data{}, false, storage.WrapError(storage.RetCTranslation,
			fmt.Sprintf("bolt: encode value for table %q", t.name), err)
	}
	var (
		prev    data.Data
		existed bool
	)
	err = t.db.Update(func(tx *bbolt.Tx) error {
		b, err := t.bucket(tx)
		if err != nil {
			return err
		}
		if raw := b.Get(storedKey(key)); raw != nil {
			prev, err = t.decode(raw)
			if err != nil {
				return err
			}
			existed = true
		}
		return b.Put(storedKey(key), encoded)
	})
	if err != nil {
		return data.Data{}, false, t.storageError("put", err)
	}
	return prev, existed, nil
}

func (t *boltTable) PutIfAbsent(key string, value data.Data) (bool, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return false, storage.WrapError(storage.RetCTranslation,
			fmt.Sprintf("bolt: encode value for table %q", t.name), err)
	}
	inserted := false
	err = t.db.Update(func(tx *bbolt.Tx) error {
		b, err := t.bucket(tx)
		if err != nil {
			return err
		}
		if b.Get(storedKey(key)) != nil {
			return nil
		}
		inserted = true
		return b.Put(storedKey(key), encoded)
	})
	if err != nil {
		return false, t.storageError("put if absent", err)
	}
	return inserted, nil
}

func (t *boltTable) Delete(key string) (data.Data, bool, error) {
	var (
		prev    data.Data
		existed bool
	)
	err := t.db.Update(func(tx *bbolt.Tx) error {
		b, err := t.bucket(tx)
		if err != nil {
			return err
		}
		raw := b.Get(storedKey(key))
		if raw == nil {
			return nil
		}
		prev, err = t.decode(raw)
		if err != nil {
			return err
		}
		existed = true
		return b.Delete(storedKey(key))
	})
	if err != nil {
		return data.Data{}, false, t.storageError("delete", err)
	}
	return prev, existed, nil
}

func (t *boltTable) Range(fn func(key string, value data.Data) bool) error {
	err := t.db.View(func(tx *bbolt.Tx) error {
		b, err := t.bucket(tx)
		if err != nil {
			return err
		}
		c := b.Cursor()
		for k, raw := c.First(); k != nil; k, raw = c.Next() {
			value, err := t.decode(raw)
			if err != nil {
				return err
			}
			if !fn(strings.TrimPrefix(string(k), keyPrefix), value) {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return t.storageError("range", err)
	}
	return nil
}

func (t *boltTable) Len() (int, error) {
	count := 0
	err := t.db.View(func(tx *bbolt.Tx) error {
		b, err := t.bucket(tx)
		if err != nil {
			return err
		}
		count = b.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, t.storageError("len", err)
	}
	return count, nil
}

func (t *boltTable) Clear() error {
	err := t.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(t.name)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(t.name))
		return err
	})
	if err != nil {
		return t.storageError("clear", err)
	}
	return nil
}
