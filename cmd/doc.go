// Package cmd implements the command-line interface for the blakestore
// storage layer. It provides a hierarchical command structure with operations
// for inspecting and manipulating the configured storage backend.
//
// The package is organized into several subpackages:
//
//   - store: Commands for map operations (get, set, delete, etc.) and
//     backend inspection
//   - migrate: Commands for bulk-copying data between storage backends
//   - util: Shared utilities for command-line processing and configuration
//     (internal use)
//
// See blakestore -help for a list of all commands.
package cmd
