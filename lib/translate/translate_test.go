package translate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

func TestTags(t *testing.T) {
	assert.Equal(t, "string", NewString().Tag())
	assert.Equal(t, "bool", NewBool().Tag())
	assert.Equal(t, "int64", NewInt().Tag())
	assert.Equal(t, "float64", NewFloat().Tag())
	assert.Equal(t, "data", NewData().Tag())
	assert.Equal(t, "list(string)", NewList(NewString()).Tag())
	assert.Equal(t, "list(list(int64))", NewList(NewList(NewInt())).Tag())
}

func TestStringTranslator(t *testing.T) {
	tr := NewString()

	encoded, err := tr.Encode("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", encoded)

	d, err := tr.ToData("hello")
	require.NoError(t, err)
	v, err := tr.FromData(d)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	_, err = tr.FromData(data.Int(1))
	assert.Error(t, err)
}

func TestBoolTranslator(t *testing.T) {
	tr := NewBool()

	for _, b := range []bool{true, false} {
		encoded, err := tr.Encode(b)
		require.NoError(t, err)
		decoded, err := tr.Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, b, decoded)
	}

	_, err := tr.Decode("maybe")
	assert.Error(t, err)
	_, err = tr.FromData(data.String("true"))
	assert.Error(t, err)
}

func TestIntTranslator(t *testing.T) {
	tr := NewInt()

	encoded, err := tr.Encode(-42)
	require.NoError(t, err)
	assert.Equal(t, "-42", encoded)

	decoded, err := tr.Decode("-42")
	require.NoError(t, err)
	assert.Equal(t, int64(-42), decoded)

	_, err = tr.Decode("4.5")
	assert.Error(t, err)

	// a float-valued number is not an int, even when integral
	_, err = tr.FromData(data.Float(42))
	assert.Error(t, err)

	v, err := tr.FromData(data.Int(42))
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

func TestFloatTranslator(t *testing.T) {
	tr := NewFloat()

	d, err := tr.ToData(42)
	require.NoError(t, err)
	assert.True(t, d.IsFloat())

	v, err := tr.FromData(data.Int(3))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestDataTranslator(t *testing.T) {
	tr := NewData()

	value, err := data.Map(map[string]data.Data{
		"n": data.Int(1),
		"l": mustList(t, data.String("a"), data.Null()),
	})
	require.NoError(t, err)

	encoded, err := tr.Encode(value)
	require.NoError(t, err)
	decoded, err := tr.Decode(encoded)
	require.NoError(t, err)
	assert.True(t, value.Equal(decoded))

	// ToData is the identity, no re-encoding happens
	d, err := tr.ToData(value)
	require.NoError(t, err)
	assert.True(t, value.Equal(d))

	_, err = tr.Decode("{broken")
	assert.Error(t, err)
}

func TestListRoundTrip(t *testing.T) {
	tr := NewList(NewString())

	cases := [][]string{
		nil,
		{""},
		{"a", "b", "c"},
		{"with,comma", "with\\escape", ",", "\\"},
		{"", "", ""},
	}
	for _, values := range cases {
		encoded, err := tr.Encode(values)
		require.NoError(t, err, "encode %q", values)
		decoded, err := tr.Decode(encoded)
		require.NoError(t, err, "decode %q", encoded)
		assert.Equal(t, values, decoded, "through %q", encoded)
	}
}

func TestListEncoding(t *testing.T) {
	tr := NewList(NewString())

	// every element is terminated, so the empty list and the list of one
	// empty string have distinct encodings
	encoded, err := tr.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "", encoded)

	encoded, err = tr.Encode([]string{""})
	require.NoError(t, err)
	assert.Equal(t, ",", encoded)

	encoded, err = tr.Encode([]string{"a,b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "a\\,b,c,", encoded)
}

func TestListMalformed(t *testing.T) {
	tr := NewList(NewString())

	// unterminated trailing element
	_, err := tr.Decode("a,b")
	assert.Error(t, err)

	// dangling escape
	_, err = tr.Decode("a\\")
	assert.Error(t, err)
}

func TestListElementErrorWrapped(t *testing.T) {
	tr := NewList(NewInt())

	_, err := tr.Decode("1,oops,3,")
	require.Error(t, err)
	var terr *Error
	assert.True(t, errors.As(err, &terr), "element failures surface as translation errors")

	_, err = tr.FromData(mustList(t, data.Int(1), data.String("x")))
	assert.Error(t, err)
	_, err = tr.FromData(data.String("not a list"))
	assert.Error(t, err)
}

func TestNestedList(t *testing.T) {
	tr := NewList(NewList(NewString()))

	values := [][]string{{"a", "b"}, nil, {"c,d"}}
	encoded, err := tr.Encode(values)
	require.NoError(t, err)
	decoded, err := tr.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, values, decoded)
}

func mustList(t *testing.T, elems ...data.Data) data.Data {
	t.Helper()
	d, err := data.List(elems...)
	require.NoError(t, err)
	return d
}
