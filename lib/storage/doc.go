// Package storage provides the database abstraction of the storage core: a
// Database issues named, translator-typed Map and Tree views over any
// backing Engine, adding per-view LRU caching, lifecycle guarding and
// bulk-copy migration on top of a flat key→Data table contract.
//
// Architecture:
//
//   - Engine/Table (this package, interfaces): what a concrete backing store
//     implements. An engine only has to expose flat string-keyed tables of
//     data.Data values; everything else is derived here. Engines live in
//     the engines/ subpackages (memory, bolt, dynamo).
//
//   - Database: the abstract contract. Views are created lazily on first
//     request through GetMap/GetTree and tracked in a name→view registry;
//     trees and maps share one namespace, and a name, once bound to a pair
//     of translator tags, can only be reopened with the same tags. The
//     lifecycle is unloaded → loaded → closed: Load validates the engine's
//     declared parameters and connects, Close invalidates every view, and a
//     closed database cannot be reused.
//
//   - Views: every view wraps a private LRU cache sized by Options.CacheSize.
//     Reads consult the cache first and record only successes; writes go
//     through to the table and update a cached entry in place so the
//     recency order of unrelated entries is not disturbed; removes evict
//     before deleting; bulk operations flush the whole view cache instead of
//     synchronizing entry by entry. Every operation fails fast once the
//     owning database is closed. Trees are realized over the same tables by
//     flattening key paths into composite string keys.
//
// Error handling follows a fixed taxonomy (see RetCode): usage errors for
// violated preconditions, translation errors wrapping the codec-level cause,
// and storage errors wrapping the store-level cause. "Not found" is never an
// error; it is reported through boolean returns. Nothing in this package
// retries: a failed fetch is reported once, and because failures are never
// cached, the next call reaches the backing store again.
package storage
