package data

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Kind Type
// --------------------------------------------------------------------------

// Kind identifies the variant populated in a Data value.
type Kind uint8

const (
	KindInvalid Kind = iota // zero value, never a legal variant
	KindNull
	KindString
	KindNumber
	KindBoolean
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "invalid"
	}
}

// --------------------------------------------------------------------------
// Data Type
// --------------------------------------------------------------------------

// Data is an immutable tagged-union value used as the universal intermediate
// representation for persisted values. Exactly one variant is populated per
// instance; the variant is fixed at construction time. The zero value has
// KindInvalid and is rejected by all constructors that take Data arguments.
//
// Numbers are stored as their canonical decimal text. Whether a number is a
// floating-point value is derived from the text (presence of a '.' or of a
// NaN/Infinity token) and is part of the value's identity: Number("42") and
// Number("42.0") are not equal.
type Data struct {
	kind    Kind
	text    string // KindString: the string; KindNumber: the literal
	boolean bool
	list    []Data
	entries map[string]Data
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// Null returns the null value.
func Null() Data {
	return Data{kind: KindNull}
}

// String returns a string value.
func String(s string) Data {
	return Data{kind: KindString, text: s}
}

// Boolean returns a boolean value.
func Boolean(b bool) Data {
	return Data{kind: KindBoolean, boolean: b}
}

// Int returns an integer-valued number. The canonical literal carries no
// decimal point, so the result is never a float.
func Int(i int64) Data {
	return Data{kind: KindNumber, text: strconv.FormatInt(i, 10)}
}

// Float returns a float-valued number. The canonical literal always carries
// a '.' or a NaN/Infinity token, so the result is always a float.
func Float(f float64) Data {
	var text string
	switch {
	case math.IsNaN(f):
		text = "NaN"
	case math.IsInf(f, 1):
		text = "Infinity"
	case math.IsInf(f, -1):
		text = "-Infinity"
	default:
		text = strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
	}
	return Data{kind: KindNumber, text: text}
}

// Number returns a number value holding the given decimal literal verbatim.
// The literal must be a legal floating-point literal (NaN and Infinity
// tokens included); anything else is rejected.
func Number(text string) (Data, error) {
	if text == "" {
		return Data{}, fmt.Errorf("data: empty number literal")
	}
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return Data{}, fmt.Errorf("data: invalid number literal %q: %w", text, err)
	}
	return Data{kind: KindNumber, text: text}, nil
}

// List returns a list value holding the given elements in order. Elements of
// KindInvalid (zero values) are rejected. The elements are copied.
func List(elems ...Data) (Data, error) {
	list := make([]Data, len(elems))
	for i, e := range elems {
		if e.kind == KindInvalid {
			return Data{}, fmt.Errorf("data: list element %d is not a valid value", i)
		}
		list[i] = e
	}
	return Data{kind: KindList, list: list}, nil
}

// Map returns a map value holding the given entries. Values of KindInvalid
// (zero values) are rejected. The entries are copied.
func Map(entries map[string]Data) (Data, error) {
	m := make(map[string]Data, len(entries))
	for k, v := range entries {
		if v.kind == KindInvalid {
			return Data{}, fmt.Errorf("data: map entry %q is not a valid value", k)
		}
		m[k] = v
	}
	return Data{kind: KindMap, entries: m}, nil
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Kind returns the populated variant.
func (d Data) Kind() Kind {
	return d.kind
}

// IsNull reports whether the value is null.
func (d Data) IsNull() bool {
	return d.kind == KindNull
}

// Text returns the string value.
func (d Data) Text() (string, error) {
	if d.kind != KindString {
		return "", d.kindError(KindString)
	}
	return d.text, nil
}

// NumberText returns the canonical decimal literal of a number value.
func (d Data) NumberText() (string, error) {
	if d.kind != KindNumber {
		return "", d.kindError(KindNumber)
	}
	return d.text, nil
}

// Int returns the number value as an int64. Float-valued numbers are
// rejected even when their numeric value is integral.
func (d Data) Int() (int64, error) {
	if d.kind != KindNumber {
		return 0, d.kindError(KindNumber)
	}
	if d.IsFloat() {
		return 0, fmt.Errorf("data: number %q is a float", d.text)
	}
	i, err := strconv.ParseInt(d.text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("data: number %q does not fit in int64: %w", d.text, err)
	}
	return i, nil
}

// Float returns the number value as a float64.
func (d Data) Float() (float64, error) {
	if d.kind != KindNumber {
		return 0, d.kindError(KindNumber)
	}
	f, err := strconv.ParseFloat(d.text, 64)
	if err != nil {
		return 0, fmt.Errorf("data: number %q does not fit in float64: %w", d.text, err)
	}
	return f, nil
}

// Bool returns the boolean value.
func (d Data) Bool() (bool, error) {
	if d.kind != KindBoolean {
		return false, d.kindError(KindBoolean)
	}
	return d.boolean, nil
}

// Items returns a copy of the list elements.
func (d Data) Items() ([]Data, error) {
	if d.kind != KindList {
		return nil, d.kindError(KindList)
	}
	items := make([]Data, len(d.list))
	copy(items, d.list)
	return items, nil
}

// Entries returns a copy of the map entries.
func (d Data) Entries() (map[string]Data, error) {
	if d.kind != KindMap {
		return nil, d.kindError(KindMap)
	}
	entries := make(map[string]Data, len(d.entries))
	for k, v := range d.entries {
		entries[k] = v
	}
	return entries, nil
}

// IsFloat reports whether a number value is a float. Float-ness is derived
// from the canonical literal, not stored: a literal is a float if it contains
// a '.', a NaN token or an Infinity token. Non-number values are never floats.
func (d Data) IsFloat() bool {
	if d.kind != KindNumber {
		return false
	}
	if strings.Contains(d.text, ".") {
		return true
	}
	lower := strings.ToLower(d.text)
	return strings.Contains(lower, "nan") || strings.Contains(lower, "inf")
}

func (d Data) kindError(want Kind) error {
	return fmt.Errorf("data: value is a %s, not a %s", d.kind, want)
}

// --------------------------------------------------------------------------
// Equality
// --------------------------------------------------------------------------

// Equal reports structural equality. Two values are equal when they hold the
// same variant with equal content; numbers compare by canonical literal, so
// integer and float renditions of the same numeric value are not equal.
func (d Data) Equal(o Data) bool {
	if d.kind != o.kind {
		return false
	}
	switch d.kind {
	case KindNull:
		return true
	case KindString, KindNumber:
		return d.text == o.text
	case KindBoolean:
		return d.boolean == o.boolean
	case KindList:
		if len(d.list) != len(o.list) {
			return false
		}
		for i := range d.list {
			if !d.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(d.entries) != len(o.entries) {
			return false
		}
		for k, v := range d.entries {
			ov, ok := o.entries[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns a debug representation. It is not the persisted encoding;
// use the JSON codec for that.
func (d Data) String() string {
	switch d.kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(d.text)
	case KindNumber:
		return d.text
	case KindBoolean:
		return strconv.FormatBool(d.boolean)
	case KindList:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range d.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	case KindMap:
		var sb strings.Builder
		sb.WriteByte('{')
		first := true
		for k, v := range d.entries {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			sb.WriteString(v.String())
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return "<invalid>"
	}
}
