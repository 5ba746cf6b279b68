package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// fields is a JSON object split into members. Decoders remove the members
// they could read; whatever remains (unknown keys, or known keys holding a
// value of the wrong shape) is written back unchanged on save.
type fields map[string]json.RawMessage

func splitObject(b []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f == nil {
		f = fields{}
	}
	return f, nil
}

// text reads a string member. Numbers and booleans are taken in their JSON
// spelling, so a hand-edited "price": 4500 reads as "4500".
func (f fields) text(key string, dst *string) {
	raw, ok := f[key]
	if !ok {
		return
	}
	if s, ok := scalarText(raw); ok {
		*dst = s
		delete(f, key)
	}
}

// integer reads an integer member given as a number or a numeric string.
func (f fields) integer(key string, dst *int) {
	raw, ok := f[key]
	if !ok {
		return
	}
	s, ok := scalarText(raw)
	if !ok {
		return
	}
	n, err := parseLooseFloat(s)
	if err != nil || n != math.Trunc(n) {
		return
	}
	*dst = int(n)
	delete(f, key)
}

// floats reads an array of numbers; numeric strings are accepted. One
// unreadable element leaves the whole member as it was.
func (f fields) floats(key string, dst *[]float64) {
	raw, ok := f[key]
	if !ok {
		return
	}
	if isNull(raw) {
		delete(f, key)
		return
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return
	}
	out := make([]float64, 0, len(elems))
	for _, e := range elems {
		s, ok := scalarText(e)
		if !ok {
			return
		}
		v, err := parseLooseFloat(s)
		if err != nil {
			return
		}
		out = append(out, v)
	}
	*dst = out
	delete(f, key)
}

// decode reads a member through dst's own decoder and reports whether it worked.
func (f fields) decode(key string, dst any) bool {
	raw, ok := f[key]
	if !ok {
		return true
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false
	}
	delete(f, key)
	return true
}

// require is decode for members a record cannot exist without.
func (f fields) require(key string, dst any) error {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s %s: %w", key, bytes.TrimSpace(raw), err)
	}
	delete(f, key)
	return nil
}

func (f fields) clone() fields {
	if len(f) == 0 {
		return nil
	}
	out := make(fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func scalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case 'n':
		return "", isNull(raw)
	case '{', '[':
		return "", false
	default:
		return string(raw), true
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseLooseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}

// objectWriter emits known members in a fixed order followed by the
// members kept from decoding, sorted by key.
type objectWriter struct {
	buf   bytes.Buffer
	extra fields
	seen  map[string]bool
	err   error
}

func newObjectWriter(extra fields) *objectWriter {
	w := &objectWriter{extra: extra, seen: make(map[string]bool)}
	w.buf.WriteByte('{')
	return w
}

func (w *objectWriter) put(key string, v any) {
	if w.err != nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		w.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	w.raw(key, b)
}

// text writes s unless it is empty. An empty value leaves room for a kept
// member of the same name.
func (w *objectWriter) text(key, s string) {
	if s == "" {
		return
	}
	w.put(key, s)
}

func (w *objectWriter) raw(key string, b []byte) {
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	if w.buf.Len() > 1 {
		w.buf.WriteByte(',')
	}
	k, _ := json.Marshal(key)
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.buf.Write(b)
}

func (w *objectWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	keys := make([]string, 0, len(w.extra))
	for k := range w.extra {
		if !w.seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		w.raw(k, w.extra[k])
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
