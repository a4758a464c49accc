// Package bolt implements the storage.Engine contract on top of a bbolt
// file. One bucket per table, one JSON-encoded Data value per entry, so the
// on-disk representation stays inspectable with standard bbolt tooling.
//
// The single load parameter is "path", the database file to open or create.
// bbolt serializes writers internally; the engine adds no locking of its
// own.
package bolt
