package memory

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
	"github.com/tmarback/BlakeBot-sub002/lib/storage"
)

// --------------------------------------------------------------------------
// Engine
// --------------------------------------------------------------------------

// NewEngine creates a new in-process engine. It takes no load parameters and
// keeps all tables in concurrent maps; nothing survives a process restart.
func NewEngine() storage.Engine {
	return &engineImpl{
		tables: xsync.NewMapOf[string, *memTable](),
	}
}

type engineImpl struct {
	tables *xsync.MapOf[string, *memTable]
}

func (e *engineImpl) Type() storage.Implementation {
	return storage.ImplMemory
}

func (e *engineImpl) LoadParams() []storage.Parameter {
	return nil
}

func (e *engineImpl) Connect(_ map[string]string) error {
	return nil
}

func (e *engineImpl) OpenTable(name string) (storage.Table, error) {
	table, _ := e.tables.LoadOrCompute(name, func() *memTable {
		return &memTable{
			name:    name,
			entries: xsync.NewMapOf[string, data.Data](),
		}
	})
	return table, nil
}

func (e *engineImpl) Close() error {
	e.tables.Clear()
	return nil
}

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

// memTable is one flat table backed by a concurrent map. Data values are
// immutable, so entries can be shared with callers without copying.
type memTable struct {
	name    string
	entries *xsync.MapOf[string, data.Data]
}

func (t *memTable) Name() string {
	return t.name
}

func (t *memTable) Get(key string) (data.Data, bool, error) {
	v, ok := t.entries.Load(key)
	return v, ok, nil
}

func (t *memTable) Put(key string, value data.Data) (data.Data, bool, error) {
	prev, existed := t.entries.LoadAndStore(key, value)
	return prev, existed, nil
}

func (t *memTable) PutIfAbsent(key string, value data.Data) (bool, error) {
	_, occupied := t.entries.LoadOrStore(key, value)
	return !occupied, nil
}

func (t *memTable) Delete(key string) (data.Data, bool, error) {
	prev, existed := t.entries.LoadAndDelete(key)
	return prev, existed, nil
}

func (t *memTable) Range(fn func(key string, value data.Data) bool) error {
	t.entries.Range(fn)
	return nil
}

func (t *memTable) Len() (int, error) {
	return t.entries.Size(), nil
}

func (t *memTable) Clear() error {
	t.entries.Clear()
	return nil
}
