package dynamo

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/pkg/errors"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

// --------------------------------------------------------------------------
// Data <-> AttributeValue
// --------------------------------------------------------------------------

// The Data model maps directly onto DynamoDB's attribute types: S, N, BOOL,
// NULL, L and M. The N type carries the number as text, so the canonical
// literal survives the round trip and the integer/float distinction is
// preserved without an extra tag.

// encodeAttr converts a Data value to its native attribute encoding.
func encodeAttr(d data.Data) (*dynamodb.AttributeValue, error) {
	switch d.Kind() {
	case data.KindNull:
		return &dynamodb.AttributeValue{NULL: aws.Bool(true)}, nil
	case data.KindString:
		s, err := d.Text()
		if err != nil {
			return nil, err
		}
		return &dynamodb.AttributeValue{S: aws.String(s)}, nil
	case data.KindNumber:
		n, err := d.NumberText()
		if err != nil {
			return nil, err
		}
		return &dynamodb.AttributeValue{N: aws.String(n)}, nil
	case data.KindBoolean:
		b, err := d.Bool()
		if err != nil {
			return nil, err
		}
		return &dynamodb.AttributeValue{BOOL: aws.Bool(b)}, nil
	case data.KindList:
		items, err := d.Items()
		if err != nil {
			return nil, err
		}
		list := make([]*dynamodb.AttributeValue, len(items))
		for i, item := range items {
			av, err := encodeAttr(item)
			if err != nil {
				return nil, errors.Wrapf(err, "list element %d", i)
			}
			list[i] = av
		}
		return &dynamodb.AttributeValue{L: list}, nil
	case data.KindMap:
		entries, err := d.Entries()
		if err != nil {
			return nil, err
		}
		m := make(map[string]*dynamodb.AttributeValue, len(entries))
		for k, v := range entries {
			av, err := encodeAttr(v)
			if err != nil {
				return nil, errors.Wrapf(err, "map entry %q", k)
			}
			m[k] = av
		}
		return &dynamodb.AttributeValue{M: m}, nil
	default:
		return nil, errors.New("cannot encode an invalid Data value")
	}
}

// decodeAttr converts a native attribute back to a Data value. An attribute
// with none of the expected type members set is a malformed response.
func decodeAttr(av *dynamodb.AttributeValue) (data.Data, error) {
	switch {
	case av == nil:
		return data.Data{}, errors.New("missing attribute value")
	case av.NULL != nil && *av.NULL:
		return data.Null(), nil
	case av.S != nil:
		return data.String(*av.S), nil
	case av.N != nil:
		d, err := data.Number(*av.N)
		if err != nil {
			return data.Data{}, errors.Wrap(err, "malformed numeric attribute")
		}
		return d, nil
	case av.BOOL != nil:
		return data.Boolean(*av.BOOL), nil
	case av.L != nil:
		items := make([]data.Data, len(av.L))
		for i, item := range av.L {
			d, err := decodeAttr(item)
			if err != nil {
				return data.Data{}, errors.Wrapf(err, "list element %d", i)
			}
			items[i] = d
		}
		return data.List(items...)
	case av.M != nil:
		entries := make(map[string]data.Data, len(av.M))
		for k, v := range av.M {
			d, err := decodeAttr(v)
			if err != nil {
				return data.Data{}, errors.Wrapf(err, "map entry %q", k)
			}
			entries[k] = d
		}
		return data.Map(entries)
	default:
		return data.Data{}, errors.New("attribute value has no supported type member")
	}
}
