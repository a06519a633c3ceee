package steamapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Segment selects one step of an extraction path: either an object member
// (Key) or an array element (Index).
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key selects the named member of a JSON object.
func Key(name string) Segment { return Segment{key: name} }

// Index selects the i-th element of a JSON array. Against an object it selects
// the member named by the decimal form of i.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// Path builds a path from string keys and int indices. Any other element type panics.
func Path(parts ...any) []Segment {
	out := make([]Segment, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			out = append(out, Key(v))
		case int:
			out = append(out, Index(v))
		case Segment:
			out = append(out, v)
		default:
			panic(fmt.Sprintf("steamapi: unsupported path element %T", p))
		}
	}
	return out
}

// IsIndex reports whether the segment is an index selector.
func (s Segment) IsIndex() bool { return s.isIndex }

func (s Segment) String() string {
	if s.isIndex {
		return fmt.Sprintf("index %d", s.index)
	}
	return fmt.Sprintf("key %q", s.key)
}

// resolve descends one level. Null members count as missing.
func (s Segment) resolve(v any) (any, bool) {
	var next any
	var ok bool
	switch cur := v.(type) {
	case map[string]any:
		name := s.key
		if s.isIndex {
			name = strconv.Itoa(s.index)
		}
		next, ok = cur[name]
	case []any:
		if !s.isIndex || s.index < 0 || s.index >= len(cur) {
			return nil, false
		}
		next, ok = cur[s.index], true
	default:
		return nil, false
	}
	if !ok || next == nil {
		return nil, false
	}
	return next, true
}

// walk applies path left to right and returns the position of the first
// segment that did not resolve, or -1.
func walk(v any, path []Segment) (any, int) {
	cur := v
	for i, seg := range path {
		next, ok := seg.resolve(cur)
		if !ok {
			return nil, i
		}
		cur = next
	}
	return cur, -1
}

// decodeJSON parses exactly one JSON value, keeping numbers as json.Number so
// 64-bit Steam IDs survive.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

// truthy mirrors the loose truthiness Steam's own clients apply to flags such
// as response.success.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0"
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// serviceError returns the message under response.error when it is set and
// response.success is not truthy. Bodies that are not objects never match.
func serviceError(v any) (string, bool) {
	root, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	resp, ok := root["response"].(map[string]any)
	if !ok {
		return "", false
	}
	msg, ok := resp["error"]
	if !ok || msg == nil {
		return "", false
	}
	if truthy(resp["success"]) {
		return "", false
	}
	if s, ok := msg.(string); ok {
		return s, true
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Sprint(msg), true
	}
	return string(raw), true
}
