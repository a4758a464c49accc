// Package memory implements the storage.Engine contract with in-process
// concurrent maps. It is the zero-configuration engine: no load parameters,
// no persistence, no network.
//
// Suitable for ephemeral runtime state, for local experiments, and as the
// reference engine for the conformance suite in lib/storage/testing.
package memory
