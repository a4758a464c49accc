package storage

import (
	"fmt"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

// --------------------------------------------------------------------------
// Bulk Copy
// --------------------------------------------------------------------------

// CopyFrom bulk-imports every view currently checked out of the source
// database into same-named tables of this one, intended for one-shot
// cross-backend migration. Entries are copied at the Data level through the
// Table contract, so no typed translator is needed and no representation
// fidelity is lost.
//
// Preconditions, violated ones fail fast as usage errors: both databases are
// loaded, the destination has zero views checked out, and source and
// destination are distinct.
func (db *Database) CopyFrom(other *Database) error {
	if other == nil {
		return NewError(RetCInvalidArgument, "source database must not be nil")
	}
	if other == db {
		return NewError(RetCInvalidArgument, "cannot copy a database into itself")
	}

	db.mu.Lock()
	if db.state != StateLoaded {
		db.mu.Unlock()
		return NewError(RetCInvalidState, fmt.Sprintf("destination database is %s", db.state))
	}
	if len(db.views) != 0 {
		db.mu.Unlock()
		return NewError(RetCInvalidState,
			fmt.Sprintf("destination database has %d views checked out, want none", len(db.views)))
	}
	db.mu.Unlock()

	other.mu.Lock()
	if other.state != StateLoaded {
		other.mu.Unlock()
		return NewError(RetCInvalidState, fmt.Sprintf("source database is %s", other.state))
	}
	sources := make([]Table, 0, len(other.views))
	for _, rec := range other.views {
		sources = append(sources, rec.table)
	}
	other.mu.Unlock()

	for _, src := range sources {
		dst, err := db.engine.OpenTable(src.Name())
		if err != nil {
			return err
		}
		var putErr error
		err = src.Range(func(key string, value data.Data) bool {
			if _, _, putErr = dst.Put(key, value); putErr != nil {
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		if putErr != nil {
			return putErr
		}
	}
	return nil
}
