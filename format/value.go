package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Decoded JSON values are string, json.Number, bool, nil, []any or Object.
// Object keeps the key order of the payload.

// Field is one key/value pair of an Object.
type Field struct {
	Key   string
	Value any
}

// Object is a JSON object in payload order.
type Object []Field

// Row is one record of a query result.
type Row = Object

type undefined struct{}

// Undefined stands for a property that is absent, as opposed to JSON null.
var Undefined any = undefined{}

// ErrNotObject is returned when a property is read from null.
var ErrNotObject = errors.New("cannot read properties of null")

// Get returns the value stored under key.
func (o Object) Get(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Entries lists the fields the way a browser enumerates object keys:
// array-index keys first in ascending order, then the rest in insertion order.
func (o Object) Entries() []Field {
	var indexed, named []Field
	for _, f := range o {
		if isArrayIndex(f.Key) {
			indexed = append(indexed, f)
		} else {
			named = append(named, f)
		}
	}
	if len(indexed) == 0 {
		return named
	}
	sort.SliceStable(indexed, func(i, j int) bool {
		a, _ := strconv.ParseUint(indexed[i].Key, 10, 32)
		b, _ := strconv.ParseUint(indexed[j].Key, 10, 32)
		return a < b
	})
	return append(indexed, named...)
}

func (o Object) set(key string, value any) Object {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Field{Key: key, Value: value})
}

func isArrayIndex(key string) bool {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	return err == nil && n < math.MaxUint32
}

// DecodeJSON parses one JSON document, preserving object key order.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '[':
		items := []any{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return items, nil
	case '{':
		obj := Object{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not string", keyTok)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj = obj.set(key, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// Property reads key from v with browser semantics: objects yield the stored
// value or Undefined, other values yield Undefined, and null is an error.
func Property(v any, key string) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, ErrNotObject
	case undefined:
		return nil, ErrNotObject
	case Object:
		if value, ok := t.Get(key); ok {
			return value, nil
		}
	}
	return Undefined, nil
}

// Truthy reports whether v would pass a browser `if (v)` check.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil, undefined:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, ok := numberValue(t)
		return ok && f != 0 && !math.IsNaN(f)
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

// Stringify renders v the way a browser template literal interpolates it.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		f, ok := numberValue(t)
		if !ok {
			return t.String()
		}
		return formatNumber(f)
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			if item == nil || item == Undefined {
				continue
			}
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	case Object, map[string]any:
		return "[object Object]"
	default:
		return fmt.Sprint(t)
	}
}

// numberValue parses n as a double. Literals beyond the float64 range become
// ±Infinity, as JSON.parse does.
func numberValue(n json.Number) (float64, bool) {
	f, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
