package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FallbackResult is shown when a result payload cannot be formatted.
const FallbackResult = "Result: Invalid result format."

const (
	fieldSeparator = "<br>"
	rowSeparator   = "<br><br>"
)

// FormatQueryResult renders a query result payload as chat markup, one
// bold-labeled line per field and a blank line between rows.
//
// raw may be JSON text (string), a raw JSON value ([]byte, json.RawMessage;
// a JSON string is parsed again as JSON text), an already decoded value, []Row
// or []map[string]any. Anything that is not a non-empty array yields "".
// Failures never escape: they yield FallbackResult.
func FormatQueryResult(raw any) string {
	out, err := formatQueryResult(raw)
	if err != nil {
		return FallbackResult
	}
	return out
}

func formatQueryResult(raw any) (string, error) {
	value, err := normalize(raw)
	if err != nil {
		return "", err
	}

	rows, ok := value.([]any)
	if !ok || len(rows) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(rows))
	for i, row := range rows {
		entries, err := rowEntries(row)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", i, err)
		}
		fields := make([]string, 0, len(entries))
		for _, f := range entries {
			fields = append(fields, formatField(f))
		}
		lines = append(lines, strings.Join(fields, fieldSeparator))
	}
	return strings.Join(lines, rowSeparator), nil
}

func formatField(f Field) string {
	label := strings.ReplaceAll(f.Key, "_", " ")
	return "<strong>" + label + ":</strong> " + Stringify(f.Value)
}

// normalize turns every accepted input kind into a decoded JSON value.
func normalize(raw any) (any, error) {
	switch t := raw.(type) {
	case string:
		return DecodeJSON([]byte(t))
	case json.RawMessage:
		return normalizeRaw(t)
	case []byte:
		return normalizeRaw(t)
	case []Row:
		rows := make([]any, len(t))
		for i, r := range t {
			rows[i] = r
		}
		return rows, nil
	case []map[string]any:
		rows := make([]any, len(t))
		for i, m := range t {
			rows[i] = objectFromMap(m)
		}
		return rows, nil
	default:
		return raw, nil
	}
}

func normalizeRaw(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	value, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	if text, ok := value.(string); ok {
		return DecodeJSON([]byte(text))
	}
	return value, nil
}

// objectFromMap sorts keys; Go maps carry no insertion order.
func objectFromMap(m map[string]any) Object {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obj := make(Object, 0, len(keys))
	for _, k := range keys {
		obj = append(obj, Field{Key: k, Value: m[k]})
	}
	return obj
}

// rowEntries enumerates a row's fields with browser Object.entries semantics.
func rowEntries(row any) ([]Field, error) {
	switch t := row.(type) {
	case nil:
		return nil, ErrNotObject
	case Object:
		return t.Entries(), nil
	case map[string]any:
		return objectFromMap(t), nil
	case []any:
		fields := make([]Field, len(t))
		for i, v := range t {
			fields[i] = Field{Key: fmt.Sprint(i), Value: v}
		}
		return fields, nil
	case string:
		var fields []Field
		i := 0
		for _, r := range t {
			fields = append(fields, Field{Key: fmt.Sprint(i), Value: string(r)})
			i++
		}
		return fields, nil
	default:
		return nil, nil
	}
}
