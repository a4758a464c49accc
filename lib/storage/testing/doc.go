// Package testing provides a reusable conformance suite for storage
// engines.
//
// Engine packages call RunDatabaseTests from their own tests, passing a
// factory that produces a fresh engine and its load parameters. The suite
// then exercises the full Database contract through that engine, so every
// backend is held to the same semantics without duplicating test code.
//
// The package is meant to be imported under an alias to avoid clashing
// with the standard library:
//
//	import storagetesting "github.com/tmarback/BlakeBot-sub002/lib/storage/testing"
package testing
