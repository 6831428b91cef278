// Package ordered provides a JSON object that remembers insertion order.
// Both pipeline documents are diffed across scraper runs, so every
// map-shaped node must serialize in construction order rather than Go's
// randomized map order.
package ordered

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
)

// Map is an insertion-ordered JSON object.
type Map struct {
	keys   []string
	values map[string]any
}

// New creates an empty Map.
func New() *Map {
	return &Map{values: make(map[string]any)}
}

// Set stores value under key. Setting an existing key replaces its value
// without changing its position.
func (m *Map) Set(key string, value any) {
	if m.values == nil {
		m.values = make(map[string]any)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// Decode unmarshals the value stored under key into out. It only works on
// values that came from UnmarshalJSON (raw JSON).
func (m *Map) Decode(key string, out any) error {
	v, ok := m.values[key]
	if !ok {
		return eris.Errorf("ordered: no value for key %q", key)
	}
	raw, ok := v.(json.RawMessage)
	if !ok {
		return eris.Errorf("ordered: value for key %q is not raw JSON", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return eris.Wrapf(err, "ordered: decode value for key %q", key)
	}
	return nil
}

// MarshalJSON writes the object with keys in insertion order. HTML escaping
// is disabled so heading-path keys like "A -> B" survive verbatim; the
// top-level writer uses the same setting.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := encodeTo(&buf, k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := encodeTo(&buf, m.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object preserving its key order. Values are
// kept as json.RawMessage; use Decode to materialize them.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return eris.Wrap(err, "ordered: read object start")
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return eris.New("ordered: expected a JSON object")
	}

	m.keys = nil
	m.values = make(map[string]any)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "ordered: read key")
		}
		key, ok := keyTok.(string)
		if !ok {
			return eris.New("ordered: object key is not a string")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return eris.Wrapf(err, "ordered: read value for key %q", key)
		}
		m.Set(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "ordered: read object end")
	}
	return nil
}

func encodeTo(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "ordered: encode value")
	}
	// Encode terminates with a newline; drop it to keep the object compact.
	buf.Truncate(buf.Len() - 1)
	return nil
}
