package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

func mustList(t *testing.T, elems ...data.Data) data.Data {
	t.Helper()
	d, err := data.List(elems...)
	require.NoError(t, err)
	return d
}

func mustMap(t *testing.T, entries map[string]data.Data) data.Data {
	t.Helper()
	d, err := data.Map(entries)
	require.NoError(t, err)
	return d
}

func TestAttrRoundTrip(t *testing.T) {
	mustNumber := func(text string) data.Data {
		d, err := data.Number(text)
		require.NoError(t, err)
		return d
	}

	values := []data.Data{
		data.Null(),
		data.String(""),
		data.String("hello, world"),
		data.Boolean(true),
		data.Boolean(false),
		data.Int(42),
		data.Int(-7),
		data.Float(42.0),
		mustNumber("3.14"),
		mustList(t),
		mustList(t, data.Int(1), data.String("two"), data.Null()),
		mustMap(t, map[string]data.Data{
			"name":  data.String("blake"),
			"score": data.Float(9.5),
			"tags":  mustList(t, data.String("a"), data.String("b")),
		}),
	}

	for _, want := range values {
		attr, err := encodeAttr(want)
		require.NoError(t, err, "encode %v", want)

		got, err := decodeAttr(attr)
		require.NoError(t, err, "decode %v", want)

		assert.True(t, want.Equal(got), "round trip changed %v to %v", want, got)
	}
}

func TestAttrNumberLiteralPreserved(t *testing.T) {
	// 42 and 42.0 are distinct values and must stay distinct through the
	// attribute encoding
	i := data.Int(42)
	f := data.Float(42)

	ai, err := encodeAttr(i)
	require.NoError(t, err)
	af, err := encodeAttr(f)
	require.NoError(t, err)

	require.NotNil(t, ai.N)
	require.NotNil(t, af.N)
	assert.Equal(t, "42", *ai.N)
	assert.Equal(t, "42.0", *af.N)

	gi, err := decodeAttr(ai)
	require.NoError(t, err)
	gf, err := decodeAttr(af)
	require.NoError(t, err)
	assert.False(t, gi.Equal(gf))
}

func TestAttrRejectsInvalid(t *testing.T) {
	_, err := encodeAttr(data.Data{})
	assert.Error(t, err)

	_, err = decodeAttr(nil)
	assert.Error(t, err)

	// an attribute with no recognized type set is corrupt
	_, err = decodeAttr(&dynamodb.AttributeValue{})
	assert.Error(t, err)
}
