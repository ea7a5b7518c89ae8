package api

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/okian/cricscore/internal/domain/match"
)

type fieldValue struct {
	field match.Field
	value string
}

// decodeFields reads a JSON object of field names to values and keeps the
// key order. Numbers are kept as written; null clears a field.
func decodeFields(r io.Reader) ([]fieldValue, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrBadRequest)
	}

	var out []fieldValue
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		name, _ := tok.(string)
		f, err := match.ParseField(name)
		if err != nil {
			return nil, err
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		var value string
		switch v := raw.(type) {
		case nil:
		case string:
			value = v
		case json.Number:
			value = v.String()
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
		}
		out = append(out, fieldValue{field: f, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return out, nil
}
