package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// --------------------------------------------------------------------------
// JSON Codec
// --------------------------------------------------------------------------

// The persisted text encoding of a Data value is JSON: strings, booleans and
// null map directly, lists become arrays, maps become objects, and numbers
// are emitted as their canonical literal so the integer/float distinction
// survives a round trip. NaN and Infinity literals have no JSON rendition
// and fail to encode.

// MarshalJSON implements json.Marshaler.
func (d Data) MarshalJSON() ([]byte, error) {
	switch d.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(d.text)
	case KindBoolean:
		return json.Marshal(d.boolean)
	case KindNumber:
		if !json.Valid([]byte(d.text)) {
			return nil, fmt.Errorf("data: number %q has no JSON representation", d.text)
		}
		return []byte(d.text), nil
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range d.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindMap:
		// deterministic output, keyed maps have no natural order
		keys := make([]string, 0, len(d.entries))
		for k := range d.entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := d.entries[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("data: cannot encode an invalid value")
	}
}

// UnmarshalJSON implements json.Unmarshaler. Number literals are preserved
// exactly as they appear in the input.
func (d *Data) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("data: invalid JSON: %w", err)
	}

	decoded, err := fromJSONValue(raw)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

// fromJSONValue converts the generic decoding of encoding/json (with
// UseNumber enabled) into a Data value.
func fromJSONValue(raw interface{}) (Data, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(v), nil
	case bool:
		return Boolean(v), nil
	case json.Number:
		return Number(v.String())
	case []interface{}:
		elems := make([]Data, len(v))
		for i, e := range v {
			elem, err := fromJSONValue(e)
			if err != nil {
				return Data{}, err
			}
			elems[i] = elem
		}
		return List(elems...)
	case map[string]interface{}:
		entries := make(map[string]Data, len(v))
		for k, e := range v {
			entry, err := fromJSONValue(e)
			if err != nil {
				return Data{}, err
			}
			entries[k] = entry
		}
		return Map(entries)
	default:
		return Data{}, fmt.Errorf("data: unsupported JSON value %T", raw)
	}
}
