package storage

import (
	"errors"
	"fmt"

	"github.com/tmarback/BlakeBot-sub002/lib/cache"
	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// Implementation identifies a storage engine.
type Implementation string

const (
	ImplMemory Implementation = "memory"
	ImplBolt   Implementation = "bolt"
	ImplDynamo Implementation = "dynamo"
)

// Parameter describes one named, ordered load parameter of an engine, used
// by operator-facing configuration to discover what a given engine needs
// before Load is called.
type Parameter struct {
	// Name is the parameter key expected in the Load parameter map.
	Name string
	// Description is a human-readable explanation of the parameter.
	Description string
	// Choices, when non-empty, constrains the value to one of its entries.
	Choices []string
	// Default is the value used when the parameter is omitted. Parameters
	// without a default are required.
	Default string
	// Optional marks a parameter that may be omitted even without a default.
	Optional bool
}

// --------------------------------------------------------------------------
// Engine and Table Interfaces
// --------------------------------------------------------------------------

// Engine is the contract a concrete backing store implements. An engine
// exposes flat key→Data tables; the Database layer derives typed maps and
// trees, per-view caching and lifecycle guarding on top of it.
//
// Engines are responsible for mapping the data.Data intermediate
// representation to and from their store's native encoding, for creating
// tables on first use, and for surfacing store-level failures as *Error
// values with code RetCStorage.
type Engine interface {
	// Type returns the engine's implementation identifier.
	Type() Implementation
	// LoadParams returns the named, ordered parameters Connect expects.
	LoadParams() []Parameter
	// Connect establishes the backing connection. It is called exactly once,
	// by Database.Load, with a parameter map already validated against
	// LoadParams.
	Connect(params map[string]string) error
	// OpenTable returns the named table, creating it on first use.
	OpenTable(name string) (Table, error)
	// Close releases the backing connection.
	Close() error
}

// Table is a flat string-keyed table of Data values in a backing store.
// A missing key is a legitimate outcome, reported through the boolean
// return, never as an error. Implementations must be safe for concurrent
// callers.
type Table interface {
	// Name returns the table name.
	Name() string
	// Get returns the value for key.
	Get(key string) (data.Data, bool, error)
	// Put inserts or replaces the value for key, returning the previous
	// value if one existed.
	Put(key string, value data.Data) (data.Data, bool, error)
	// PutIfAbsent inserts the value for key only when the key is vacant.
	// Returns false when the key was already occupied.
	PutIfAbsent(key string, value data.Data) (bool, error)
	// Delete removes the entry for key, returning the removed value if one
	// existed.
	Delete(key string) (data.Data, bool, error)
	// Range calls fn for every entry until fn returns false. The iteration
	// order is unspecified.
	Range(fn func(key string, value data.Data) bool) error
	// Len returns the number of entries.
	Len() (int, error)
	// Clear removes every entry.
	Clear() error
}

// --------------------------------------------------------------------------
// View Interfaces
// --------------------------------------------------------------------------

// Map is a named, translator-typed key-value view issued by a Database.
// Reads are served through a private LRU cache; writes go through to the
// backing table. Every operation fails fast once the owning database is
// closed.
type Map[K comparable, V any] interface {
	// Get returns the value for key, consulting the cache first.
	Get(key K) (V, bool, error)
	// Put inserts or replaces the value for key, returning the previous
	// value if one existed. A cached entry is updated in place, preserving
	// the cache's recency order. When the write succeeds but the previous
	// value fails to decode, the error reports the translation failure and
	// the boolean still reports that a previous value existed.
	Put(key K, value V) (V, bool, error)
	// Add inserts the value for key only when the key is vacant. Returns
	// false when the key was already occupied.
	Add(key K, value V) (bool, error)
	// Remove evicts the key from the cache and deletes it from the backing
	// table, returning the removed value if one existed. When the delete
	// succeeds but the removed value fails to decode, the error reports the
	// translation failure and the boolean still reports existence.
	Remove(key K) (V, bool, error)
	// Has reports whether key is present, without decoding the value.
	Has(key K) (bool, error)
	// Len returns the number of entries in the backing table.
	Len() (int, error)
	// Clear removes every entry and flushes the whole view cache.
	Clear() error
	// ForEach calls fn for every entry until fn returns false, reading the
	// backing table directly. The iteration order is unspecified.
	ForEach(fn func(key K, value V) bool) error
	// CacheStats returns a snapshot of the view cache's counters.
	CacheStats() cache.Stats
}

// Tree is a named, translator-typed hierarchical view issued by a Database.
// It maps paths of typed keys to values; the value at the empty path is the
// root value. Trees are realized over a flat table by encoding each path
// into a single composite string key, trading structural traversal for
// encode cost, which suits flat key-value backing stores.
type Tree[K comparable, V any] interface {
	// Get returns the value at path.
	Get(path ...K) (V, bool, error)
	// GetAll returns the values at each prefix of path, in root-to-leaf
	// order, skipping prefixes with no mapping.
	GetAll(path ...K) ([]V, error)
	// Set inserts or replaces the value at path, returning the previous
	// value if one existed. The previous-value decode contract of Map.Put
	// applies.
	Set(value V, path ...K) (V, bool, error)
	// Add inserts the value at path only when the path is vacant. Returns
	// false when the path was already occupied.
	Add(value V, path ...K) (bool, error)
	// Remove deletes the value at path, returning it if one existed.
	Remove(path ...K) (V, bool, error)
	// Clear removes every entry and flushes the whole view cache.
	Clear() error
	// CacheStats returns a snapshot of the view cache's counters.
	CacheStats() cache.Stats
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// RetCode classifies storage-layer failures.
type RetCode uint64

const (
	RetCSuccess         RetCode = iota // 0: operation executed successfully
	RetCInvalidArgument                // 1: usage error, a documented precondition on arguments was violated
	RetCInvalidState                   // 2: usage error, operation invoked in the wrong lifecycle state
	RetCTranslation                    // 3: value could not be represented in the target encoding
	RetCStorage                        // 4: the backing store rejected or failed an operation
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInvalidArgument:
		return "InvalidArgument"
	case RetCInvalidState:
		return "InvalidState"
	case RetCTranslation:
		return "Translation"
	case RetCStorage:
		return "Storage"
	default:
		return "Unknown"
	}
}

// Error is the storage-layer error type. It carries a return code and, for
// translation and storage failures, the underlying cause. Usage errors
// (invalid arguments, wrong lifecycle state) indicate a violated
// precondition and are never retried.
type Error struct {
	Code  RetCode // the return code
	Msg   string  // the error message
	Cause error   // underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("StorageError (code %s): %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("StorageError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a new Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// WrapError creates a new Error with the given code and message, wrapping
// the underlying cause.
func WrapError(code RetCode, msg string, cause error) *Error {
	return &Error{Code: code, Msg: msg, Cause: cause}
}

// CodeOf returns the return code carried by err, RetCSuccess for nil, or
// RetCStorage for errors that did not originate in this layer.
func CodeOf(err error) RetCode {
	if err == nil {
		return RetCSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return RetCStorage
}
