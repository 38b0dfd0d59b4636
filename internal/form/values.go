package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/url"
	"strconv"
	"strings"
)

// Values holds raw field input keyed by field name.
type Values map[string]string

// Get returns the trimmed value for key.
func (v Values) Get(key string) string {
	return strings.TrimSpace(v[key])
}

// Set stores value under key.
func (v Values) Set(key, value string) {
	v[key] = value
}

// Has reports whether key carries a non-blank value.
func (v Values) Has(key string) bool {
	return v.Get(key) != ""
}

// Clone returns an independent copy of v.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}

// ValuesFromForm takes the first value of each field of a decoded form body.
func ValuesFromForm(form url.Values) Values {
	out := make(Values, len(form))
	for key, values := range form {
		if len(values) > 0 {
			out[key] = values[0]
		}
	}
	return out
}

// ValuesFromJSON decodes a flat JSON object into Values. Numbers keep their
// literal text and booleans become "true" or "false"; null leaves the field
// unset. Nested objects and arrays are rejected.
func ValuesFromJSON(data []byte) (Values, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("form: decode values: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, errors.New("form: decode values: unexpected data after the object")
	}

	out := make(Values, len(raw))
	for key, value := range raw {
		switch typed := value.(type) {
		case nil:
		case string:
			out[key] = typed
		case json.Number:
			out[key] = typed.String()
		case bool:
			out[key] = strconv.FormatBool(typed)
		default:
			return nil, fmt.Errorf("form: field %q must be a scalar", key)
		}
	}
	return out, nil
}
