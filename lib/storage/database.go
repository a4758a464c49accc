package storage

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tmarback/BlakeBot-sub002/lib/cache"
	"github.com/tmarback/BlakeBot-sub002/lib/translate"
)

// --------------------------------------------------------------------------
// Lifecycle State
// --------------------------------------------------------------------------

// State is the lifecycle state of a Database. The only legal progression is
// StateUnloaded → StateLoaded → StateClosed; a closed database cannot be
// reused.
type State uint8

const (
	StateUnloaded State = iota
	StateLoaded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Options
// --------------------------------------------------------------------------

// Options configures a Database.
type Options struct {
	// CacheSize is the capacity of the private LRU cache wrapped around each
	// view issued by the database.
	CacheSize int
}

// DefaultOptions returns the default Database options.
func DefaultOptions() *Options {
	return &Options{
		CacheSize: 100,
	}
}

// --------------------------------------------------------------------------
// Database
// --------------------------------------------------------------------------

// viewKind distinguishes the two view flavors sharing the name namespace.
type viewKind uint8

const (
	viewKindMap viewKind = iota
	viewKindTree
)

func (k viewKind) String() string {
	if k == viewKindTree {
		return "tree"
	}
	return "map"
}

// viewRecord tracks one checked-out view: its name, flavor, the translator
// tags it was bound with, the backing table, the typed handle, and a hook to
// flush its cache on close.
type viewRecord struct {
	name     string
	kind     viewKind
	keyTag   string
	valueTag string
	table    Table
	handle   interface{}
	flush    func()
}

// Database issues named, translator-typed Map and Tree views over a backing
// Engine. Names are unique across the whole database; trees and maps share
// one namespace. Once a name is bound to a pair of translator tags, later
// lookups must present the same tags (fresh instances of the same translator
// are fine), which lets a logical dataset be reopened across restarts while
// preventing representation drift within one run.
//
// View creation is serialized by a single mutex so the name→view registry
// stays consistent under concurrent first access; once a view exists, its
// operations proceed independently except for the shared closed flag.
type Database struct {
	engine Engine
	opts   Options

	mu     sync.Mutex // guards state and views
	state  State
	views  map[string]*viewRecord
	closed atomic.Bool // fast-path closed check for view operations
}

// New creates a Database over the given engine. Options may be nil, in which
// case DefaultOptions apply.
func New(engine Engine, opts *Options) *Database {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Database{
		engine: engine,
		opts:   *opts,
		state:  StateUnloaded,
		views:  make(map[string]*viewRecord),
	}
}

// Type returns the implementation identifier of the backing engine. It is
// static metadata and stays answerable in every lifecycle state, including
// after Close.
func (db *Database) Type() Implementation {
	return db.engine.Type()
}

// LoadParams returns the named, ordered parameters Load expects, for
// operator-facing configuration discovery. Like Type, it is static metadata
// and stays answerable in every lifecycle state.
func (db *Database) LoadParams() []Parameter {
	return db.engine.LoadParams()
}

// State returns the current lifecycle state.
func (db *Database) State() State {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Load validates params against the engine's declared parameters and
// establishes the backing connection. Loading twice is a usage error, as is
// loading after Close.
func (db *Database) Load(params map[string]string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	switch db.state {
	case StateLoaded:
		return NewError(RetCInvalidState, "database is already loaded")
	case StateClosed:
		return NewError(RetCInvalidState, "database is closed")
	}

	resolved, err := resolveParams(db.engine.LoadParams(), params)
	if err != nil {
		return err
	}
	if err := db.engine.Connect(resolved); err != nil {
		return err
	}
	db.state = StateLoaded
	return nil
}

// Close invalidates all outstanding views, flushes their caches and releases
// the backing connection. Closing an already-closed database is a no-op; the
// database cannot be reused afterwards.
func (db *Database) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.state == StateClosed {
		return nil
	}
	loaded := db.state == StateLoaded
	db.state = StateClosed
	db.closed.Store(true)

	for _, rec := range db.views {
		rec.flush()
	}
	db.views = nil

	if loaded {
		return db.engine.Close()
	}
	return nil
}

// Views returns the names of all currently-checked-out views, sorted. Close
// invalidates every view, so a closed database reports none; only view
// creation and data operations fail fast once closed, the metadata accessors
// (Type, LoadParams, State, Views) stay callable.
func (db *Database) Views() []string {
	db.mu.Lock()
	defer db.mu.Unlock()

	names := make([]string, 0, len(db.views))
	for name := range db.views {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveParams validates the provided parameters against the declared ones:
// unknown names are rejected, defaults are filled in, required parameters
// must be present, and choice-constrained values must match a choice.
func resolveParams(declared []Parameter, params map[string]string) (map[string]string, error) {
	byName := make(map[string]Parameter, len(declared))
	for _, p := range declared {
		byName[p.Name] = p
	}
	for name := range params {
		if _, ok := byName[name]; !ok {
			return nil, NewError(RetCInvalidArgument, fmt.Sprintf("unknown load parameter %q", name))
		}
	}

	resolved := make(map[string]string, len(declared))
	for _, p := range declared {
		value, ok := params[p.Name]
		if !ok {
			if p.Default != "" {
				resolved[p.Name] = p.Default
				continue
			}
			if p.Optional {
				continue
			}
			return nil, NewError(RetCInvalidArgument, fmt.Sprintf("missing load parameter %q", p.Name))
		}
		if len(p.Choices) > 0 {
			legal := false
			for _, c := range p.Choices {
				if value == c {
					legal = true
					break
				}
			}
			if !legal {
				return nil, NewError(RetCInvalidArgument,
					fmt.Sprintf("load parameter %q must be one of %v, got %q", p.Name, p.Choices, value))
			}
		}
		resolved[p.Name] = value
	}
	return resolved, nil
}

// --------------------------------------------------------------------------
// View Creation
// --------------------------------------------------------------------------

// GetMap returns the map view bound to name, creating it on first request.
// Repeated lookups must present translators with the tags used originally
// and must request a map, not a tree; a mismatch is a usage error.
func GetMap[K comparable, V any](db *Database, name string, keyT translate.Translator[K], valueT translate.Translator[V]) (Map[K, V], error) {
	rec, err := bind(db, name, viewKindMap, keyT, valueT, func(table Table) interface{} {
		return &mapView[K, V]{
			core: newTableCore(db, name, table, valueT),
			keyT: keyT,
		}
	})
	if err != nil {
		return nil, err
	}
	handle, ok := rec.handle.(Map[K, V])
	if !ok {
		return nil, NewError(RetCInvalidArgument,
			fmt.Sprintf("view %q was bound with matching translator tags but different value types", name))
	}
	return handle, nil
}

// GetTree returns the tree view bound to name, creating it on first request.
// The same compatibility rules as GetMap apply; tree paths are flattened
// into composite string keys by composing the key translator with the list
// translator.
func GetTree[K comparable, V any](db *Database, name string, keyT translate.Translator[K], valueT translate.Translator[V]) (Tree[K, V], error) {
	rec, err := bind(db, name, viewKindTree, keyT, valueT, func(table Table) interface{} {
		return &treeView[K, V]{
			core:  newTableCore(db, name, table, valueT),
			pathT: translate.NewList(keyT),
		}
	})
	if err != nil {
		return nil, err
	}
	handle, ok := rec.handle.(Tree[K, V])
	if !ok {
		return nil, NewError(RetCInvalidArgument,
			fmt.Sprintf("view %q was bound with matching translator tags but different value types", name))
	}
	return handle, nil
}

// bind is the shared bind-or-validate step behind GetMap and GetTree: under
// the database mutex it either returns the existing record for name after
// checking flavor and translator-tag compatibility, or opens the backing
// table and records a new view built by construct.
func bind[K comparable, V any](db *Database, name string, kind viewKind, keyT translate.Translator[K], valueT translate.Translator[V], construct func(Table) interface{}) (*viewRecord, error) {
	if name == "" {
		return nil, NewError(RetCInvalidArgument, "view name must not be empty")
	}
	if keyT == nil || valueT == nil {
		return nil, NewError(RetCInvalidArgument, "translators must not be nil")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	switch db.state {
	case StateUnloaded:
		return nil, NewError(RetCInvalidState, "database is not loaded")
	case StateClosed:
		return nil, NewError(RetCInvalidState, "database is closed")
	}

	if rec, ok := db.views[name]; ok {
		if rec.kind != kind {
			return nil, NewError(RetCInvalidArgument,
				fmt.Sprintf("view %q is a %s, requested as %s", name, rec.kind, kind))
		}
		if rec.keyTag != keyT.Tag() || rec.valueTag != valueT.Tag() {
			return nil, NewError(RetCInvalidArgument,
				fmt.Sprintf("view %q is bound to translators (%s, %s), requested with (%s, %s)",
					name, rec.keyTag, rec.valueTag, keyT.Tag(), valueT.Tag()))
		}
		return rec, nil
	}

	table, err := db.engine.OpenTable(name)
	if err != nil {
		return nil, err
	}

	handle := construct(table)
	rec := &viewRecord{
		name:     name,
		kind:     kind,
		keyTag:   keyT.Tag(),
		valueTag: valueT.Tag(),
		table:    table,
		handle:   handle,
		flush:    handle.(flusher).flushCache,
	}
	db.views[name] = rec
	return rec, nil
}

// flusher is implemented by both view flavors so Close can drop their caches
// without knowing the type parameters.
type flusher interface {
	flushCache()
}

// newViewCache builds the per-view LRU cache, labeled engine/view for the
// exported metrics.
func newViewCache[V any](db *Database, name string) *cache.Cache[string, V] {
	return cache.New[string, V](fmt.Sprintf("%s/%s", db.engine.Type(), name), db.opts.CacheSize)
}
