package epicmix

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// FieldError is returned when a response does not match the expected shape.
type FieldError struct {
	// Type is the name of the record or envelope being decoded.
	Type string
	// Field is the JSON name of the offending field.
	Field string
	// Err is either [ErrMissingField] or [ErrUnknownField].
	Err error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("decode %s: %v %q", e.Type, e.Err, e.Field)
}

// Unwrap returns the underlying sentinel error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// decodeRecord decodes data into v, failing on missing, null or unexpected fields.
func decodeRecord(data []byte, name string, v any) error {
	return decodeFields(data, name, v, true)
}

// decodeEnvelope decodes data into v, failing on missing or null fields.
// Extra fields are ignored.
func decodeEnvelope(data []byte, name string, v any) error {
	return decodeFields(data, name, v, false)
}

func decodeFields(data []byte, name string, v any, strict bool) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	known := jsonFieldNames(reflect.TypeOf(v).Elem())
	for _, field := range known {
		raw, ok := fields[field]
		if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return &FieldError{Type: name, Field: field, Err: ErrMissingField}
		}
	}

	if strict {
		var unknown []string
		for field := range fields {
			if !slices.Contains(known, field) {
				unknown = append(unknown, field)
			}
		}
		if len(unknown) > 0 {
			slices.Sort(unknown)
			return &FieldError{Type: name, Field: unknown[0], Err: ErrUnknownField}
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	return nil
}

// jsonFieldNames returns the JSON names of the exported fields of struct type t.
func jsonFieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names = append(names, name)
	}

	return names
}
