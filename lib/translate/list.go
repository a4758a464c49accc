package translate

import (
	"fmt"
	"strings"

	"github.com/tmarback/BlakeBot-sub002/lib/data"
)

// --------------------------------------------------------------------------
// List Translator
// --------------------------------------------------------------------------

// List encoding joins the escaped element encodings with a separator. The
// separator terminates every element instead of sitting between elements, so
// the empty string unambiguously encodes the empty list and a list holding a
// single empty string encodes to a lone separator.
const (
	listSeparator = ','
	listEscape    = '\\'
)

// NewList derives a translator for slices of T from the translator for T.
// The string encoding escape-joins the element encodings; the Data encoding
// is a list of the elements' Data encodings. If any element fails to encode
// or decode, the whole operation fails, wrapping the element-level error.
func NewList[T any](elem Translator[T]) Translator[[]T] {
	return listTranslator[T]{elem: elem}
}

type listTranslator[T any] struct {
	elem Translator[T]
}

func (l listTranslator[T]) Tag() string {
	return fmt.Sprintf("list(%s)", l.elem.Tag())
}

func (l listTranslator[T]) Encode(values []T) (string, error) {
	var sb strings.Builder
	for i, v := range values {
		encoded, err := l.elem.Encode(v)
		if err != nil {
			return "", NewError(fmt.Sprintf("list element %d", i), err)
		}
		for j := 0; j < len(encoded); j++ {
			if encoded[j] == listSeparator || encoded[j] == listEscape {
				sb.WriteByte(listEscape)
			}
			sb.WriteByte(encoded[j])
		}
		sb.WriteByte(listSeparator)
	}
	return sb.String(), nil
}

func (l listTranslator[T]) Decode(encoded string) ([]T, error) {
	elems, err := splitElements(encoded)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, nil
	}
	values := make([]T, len(elems))
	for i, e := range elems {
		v, err := l.elem.Decode(e)
		if err != nil {
			return nil, NewError(fmt.Sprintf("list element %d", i), err)
		}
		values[i] = v
	}
	return values, nil
}

func (l listTranslator[T]) ToData(values []T) (data.Data, error) {
	elems := make([]data.Data, len(values))
	for i, v := range values {
		d, err := l.elem.ToData(v)
		if err != nil {
			return data.Data{}, NewError(fmt.Sprintf("list element %d", i), err)
		}
		elems[i] = d
	}
	d, err := data.List(elems...)
	if err != nil {
		return data.Data{}, NewError("list construction", err)
	}
	return d, nil
}

func (l listTranslator[T]) FromData(d data.Data) ([]T, error) {
	items, err := d.Items()
	if err != nil {
		return nil, NewError("value is not a list", err)
	}
	values := make([]T, len(items))
	for i, item := range items {
		v, err := l.elem.FromData(item)
		if err != nil {
			return nil, NewError(fmt.Sprintf("list element %d", i), err)
		}
		values[i] = v
	}
	return values, nil
}

// splitElements undoes the escape-join of Encode. Every element must be
// terminated by an unescaped separator; trailing unterminated content or a
// dangling escape is malformed input.
func splitElements(encoded string) ([]string, error) {
	if encoded == "" {
		return nil, nil
	}
	var (
		elems   []string
		current strings.Builder
		pending bool // bytes written since the last separator
	)
	for i := 0; i < len(encoded); i++ {
		switch encoded[i] {
		case listEscape:
			if i+1 >= len(encoded) {
				return nil, NewError(fmt.Sprintf("dangling escape at end of %q", encoded), nil)
			}
			i++
			current.WriteByte(encoded[i])
			pending = true
		case listSeparator:
			elems = append(elems, current.String())
			current.Reset()
			pending = false
		default:
			current.WriteByte(encoded[i])
			pending = true
		}
	}
	if pending {
		return nil, NewError(fmt.Sprintf("unterminated list element in %q", encoded), nil)
	}
	return elems, nil
}
