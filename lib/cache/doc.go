// Package cache implements the bounded LRU cache that fronts every database
// view. It guarantees at most one cached representation per key and O(1)
// get/put/update/remove with least-recently-used eviction.
//
// The cache has no failure modes beyond programmer misuse: it never produces
// domain errors, and absence is always signaled by the boolean return, so a
// miss is unambiguous. Errors from backing stores pass through the caching
// layer untouched, and only successful fetches are ever recorded.
//
// Hit, miss and eviction counts are tracked per instance (Stats) and
// exported through VictoriaMetrics counters labeled with the cache name.
package cache
