package translate

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

// --------------------------------------------------------------------------
// String Translator
// --------------------------------------------------------------------------

// NewString returns the translator for plain strings. Its string encoding is
// the identity; its Data encoding is a string value.
func NewString() Translator[string] {
	return stringTranslator{}
}

type stringTranslator struct{}

func (stringTranslator) Tag() string { return "string" }

func (stringTranslator) Encode(value string) (string, error) { return value, nil }

func (stringTranslator) Decode(encoded string) (string, error) { return encoded, nil }

func (stringTranslator) ToData(value string) (data.Data, error) {
	return data.String(value), nil
}

func (stringTranslator) FromData(d data.Data) (string, error) {
	s, err := d.Text()
	if err != nil {
		return "", NewError("value is not a string", err)
	}
	return s, nil
}

// --------------------------------------------------------------------------
// Bool Translator
// --------------------------------------------------------------------------

// NewBool returns the translator for booleans.
func NewBool() Translator[bool] {
	return boolTranslator{}
}

type boolTranslator struct{}

func (boolTranslator) Tag() string { return "bool" }

func (boolTranslator) Encode(value bool) (string, error) {
	return strconv.FormatBool(value), nil
}

func (boolTranslator) Decode(encoded string) (bool, error) {
	b, err := strconv.ParseBool(encoded)
	if err != nil {
		return false, NewError(fmt.Sprintf("%q is not a boolean", encoded), err)
	}
	return b, nil
}

func (boolTranslator) ToData(value bool) (data.Data, error) {
	return data.Boolean(value), nil
}

func (boolTranslator) FromData(d data.Data) (bool, error) {
	b, err := d.Bool()
	if err != nil {
		return false, NewError("value is not a boolean", err)
	}
	return b, nil
}

// --------------------------------------------------------------------------
// Int Translator
// --------------------------------------------------------------------------

// NewInt returns the translator for 64-bit integers.
func NewInt() Translator[int64] {
	return intTranslator{}
}

type intTranslator struct{}

func (intTranslator) Tag() string { return "int64" }

func (intTranslator) Encode(value int64) (string, error) {
	return strconv.FormatInt(value, 10), nil
}

func (intTranslator) Decode(encoded string) (int64, error) {
	i, err := strconv.ParseInt(encoded, 10, 64)
	if err != nil {
		return 0, NewError(fmt.Sprintf("%q is not an integer", encoded), err)
	}
	return i, nil
}

func (intTranslator) ToData(value int64) (data.Data, error) {
	return data.Int(value), nil
}

func (intTranslator) FromData(d data.Data) (int64, error) {
	i, err := d.Int()
	if err != nil {
		return 0, NewError("value is not an integer", err)
	}
	return i, nil
}

// --------------------------------------------------------------------------
// Float Translator
// --------------------------------------------------------------------------

// NewFloat returns the translator for 64-bit floats.
func NewFloat() Translator[float64] {
	return floatTranslator{}
}

type floatTranslator struct{}

func (floatTranslator) Tag() string { return "float64" }

func (floatTranslator) Encode(value float64) (string, error) {
	d, err := floatTranslator{}.ToData(value)
	if err != nil {
		return "", err
	}
	return d.NumberText()
}

func (floatTranslator) Decode(encoded string) (float64, error) {
	f, err := strconv.ParseFloat(encoded, 64)
	if err != nil {
		return 0, NewError(fmt.Sprintf("%q is not a float", encoded), err)
	}
	return f, nil
}

func (floatTranslator) ToData(value float64) (data.Data, error) {
	return data.Float(value), nil
}

func (floatTranslator) FromData(d data.Data) (float64, error) {
	f, err := d.Float()
	if err != nil {
		return 0, NewError("value is not a float", err)
	}
	return f, nil
}

// --------------------------------------------------------------------------
// Data Translator
// --------------------------------------------------------------------------

// NewData returns the identity translator for data.Data values. The string
// encoding is the JSON rendition of the value.
func NewData() Translator[data.Data] {
	return dataTranslator{}
}

type dataTranslator struct{}

func (dataTranslator) Tag() string { return "data" }

func (dataTranslator) Encode(value data.Data) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", NewError("value has no JSON representation", err)
	}
	return string(b), nil
}

func (dataTranslator) Decode(encoded string) (data.Data, error) {
	var d data.Data
	if err := json.Unmarshal([]byte(encoded), &d); err != nil {
		return data.Data{}, NewError("encoded value is not valid JSON", err)
	}
	return d, nil
}

func (dataTranslator) ToData(value data.Data) (data.Data, error) {
	if value.Kind() == data.KindInvalid {
		return data.Data{}, NewError("value is not a valid Data value", nil)
	}
	return value, nil
}

func (dataTranslator) FromData(d data.Data) (data.Data, error) {
	if d.Kind() == data.KindInvalid {
		return data.Data{}, NewError("value is not a valid Data value", nil)
	}
	return d, nil
}
