package mist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var errRecordNotObject = errors.New("record is not a JSON object")

// Record is a JSON object that remembers the order its keys were first seen.
// Guest authorizations are kept as Records because their shape varies
// between sites and firmware releases. Copies share storage; use Clone
// before changing a record someone else holds.
type Record struct {
	fields *orderedmap.OrderedMap[string, any]
}

// NewRecord builds a Record from alternating key/value pairs.
// A trailing key without a value is ignored.
func NewRecord(pairs ...any) Record {
	var r Record
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			key = fmt.Sprint(pairs[i])
		}
		r.Set(key, pairs[i+1])
	}
	return r
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Has reports whether key is present, even with a null value.
func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores v under key. A new key is appended to the key order; an existing
// key keeps its position and only its value changes.
func (r *Record) Set(key string, v any) {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
	r.fields.Set(key, v)
}

// Keys returns the keys in first-seen order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return []string{}
	}
	out := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}

// Clone returns a copy that can be modified without touching r.
// Nested objects and arrays are shared.
func (r Record) Clone() Record {
	out := Record{fields: orderedmap.New[string, any]()}
	if r.fields == nil {
		return out
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out.fields.Set(pair.Key, pair.Value)
	}
	return out
}

// String returns the value under key rendered for tabular output.
// Missing keys and nulls render as "".
func (r Record) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	return FormatValue(v)
}

// FormatValue renders a decoded JSON value as text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case map[string]any, []any, Record:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// UnmarshalJSON decodes a JSON object keeping key order. Numbers are kept as
// json.Number so epoch values are not rounded through float64.
func (r *Record) UnmarshalJSON(data []byte) error {
	*r = Record{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) == 0 || data[0] != '{' {
		return errRecordNotObject
	}

	// The ordered map keeps key order; values are decoded here so that
	// numbers stay json.Number.
	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	r.fields = orderedmap.New[string, any]()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		dec := json.NewDecoder(bytes.NewReader(pair.Value))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("decode %q: %w", pair.Key, err)
		}
		r.fields.Set(pair.Key, v)
	}
	return nil
}

// MarshalJSON encodes the record with keys in first-seen order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}
	return r.fields.MarshalJSON()
}
