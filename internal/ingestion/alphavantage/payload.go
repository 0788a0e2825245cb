package alphavantage

import (
	"encoding/json"
	"fmt"
)

// Payload is a parsed upstream response, un-interpreted. Domain services
// pick the nested object they expect by key; a missing key means "no data",
// not an error.
type Payload struct {
	raw    []byte
	fields map[string]json.RawMessage
}

// ParsePayload parses raw bytes into a Payload. The upstream API always
// answers with a JSON object, so anything else is malformed.
func ParsePayload(raw []byte) (Payload, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Payload{}, fmt.Errorf("response is not a JSON object: %w", err)
	}
	return Payload{raw: raw, fields: fields}, nil
}

// Has reports whether a top-level key is present.
func (p Payload) Has(key string) bool {
	_, ok := p.fields[key]
	return ok
}

// Get returns the raw value of a top-level key.
func (p Payload) Get(key string) (json.RawMessage, bool) {
	v, ok := p.fields[key]
	return v, ok
}

// Decode unmarshals the whole payload into v. Used for flat responses such
// as the company overview.
func (p Payload) Decode(v interface{}) error {
	return json.Unmarshal(p.raw, v)
}

// DecodeKey unmarshals a top-level key into v. It returns false without an
// error when the key is absent.
func (p Payload) DecodeKey(key string, v interface{}) (bool, error) {
	raw, ok := p.fields[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

// stringField returns a top-level string value, or "" when absent or not a
// string.
func (p Payload) stringField(key string) string {
	raw, ok := p.fields[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
