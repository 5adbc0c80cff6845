package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cast"
)

func Marshal(v interface{}) []byte {
	b, _ := json.Marshal(v)
	return b
}

func Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// UnmarshalNumbers decodes numbers as json.Number instead of float64, so ids past 2^53 keep
// every digit. Used for bodies decoded into maps.
func UnmarshalNumbers(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after json value")
	}
	return nil
}

// FirstString returns the first key of m holding a non-empty scalar, as a string. Numbers are
// formatted without exponent.
func FirstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if _, nested := v.(map[string]any); nested {
			continue
		}
		if n, ok := v.(json.Number); ok {
			return n.String()
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

// Truthy reads loosely typed flags such as "status": true, "status": 1 or "status": "success".
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s != "" && s != "false" && s != "0"
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	default:
		return cast.ToBool(v)
	}
}

func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
