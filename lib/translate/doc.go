// Package translate provides bidirectional codecs between typed application
// values and the canonical representations used by the storage layer: flat
// strings (for keys and migration) and data.Data values (for persisted
// values).
//
// Translators are pure and stateless. Their identity is carried by an
// explicit tag rather than by the concrete Go type, so a named database view
// can be reopened across restarts with a fresh translator instance of the
// same tag, while reopening it under a translator with a different tag is
// rejected as representation drift.
//
// The package ships translators for strings, booleans, 64-bit integers,
// 64-bit floats and raw data.Data values, plus NewList, which derives a
// slice translator from any element translator. The storage layer composes
// NewList with a key translator to flatten tree paths into single composite
// string keys.
package translate
