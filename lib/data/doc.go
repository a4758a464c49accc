// Package data defines the canonical intermediate value model used by the
// storage layer. A Data value is an immutable tagged union holding exactly
// one of: a string, a number, a boolean, null, an ordered list of Data, or a
// string-keyed map of Data.
//
// The model is independent of any backing store's native types: translators
// (github.com/tmarback/BlakeBot-sub002/lib/translate) convert application
// values into Data, and storage engines convert Data into whatever their
// store speaks natively (JSON documents, DynamoDB attribute values, ...).
//
// Numbers:
//
// Numbers carry their canonical decimal literal rather than a binary
// representation. Whether a number is a float is derived from the literal
// (presence of a '.' or a NaN/Infinity token) and is part of the value's
// identity, so Int(42) and Float(42.0) are distinct values that compare
// unequal even though they are numerically the same. This keeps the
// integer/float distinction stable across every encoding that preserves the
// literal, including JSON and DynamoDB's numeric strings.
//
// Equality:
//
// Equal performs a structural comparison: two lists are equal when their
// elements are pairwise equal, two maps when they hold equal values under
// the same keys. Container identity never matters.
package data
