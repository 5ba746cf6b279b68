package models

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// legacyLayouts are the date spellings found in documents written by the old admin.
var legacyLayouts = []string{
	time.RFC3339Nano,
	"1/2/2006, 3:04:05 PM",
	"2/1/2006, 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp is a time that survives round trips through older documents.
// Values that cannot be parsed are kept verbatim and written back unchanged.
type Timestamp struct {
	time.Time
	raw json.RawMessage
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t} }

// Raw returns the unparsed source text, if any.
func (t Timestamp) Raw() string {
	if s, ok := scalarText(t.raw); ok {
		return s
	}
	return string(t.raw)
}

// Display renders the timestamp for people, falling back to the raw text.
func (t Timestamp) Display() string {
	if t.IsZero() {
		return t.Raw()
	}
	return t.Format("02 Jan 2006, 15:04")
}

// UnmarshalJSON accepts the legacy string layouts and millisecond epochs,
// fractional ones included. Anything else is kept as raw JSON.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*t = Timestamp{}
	if len(b) == 0 || isNull(b) {
		return nil
	}
	switch c := b[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			for _, layout := range legacyLayouts {
				if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
					*t = Timestamp{Time: parsed}
					return nil
				}
			}
		}
	case c == '-' || (c >= '0' && c <= '9'):
		if ms, err := parseLooseFloat(string(b)); err == nil {
			*t = Timestamp{Time: time.UnixMicro(int64(math.Round(ms * 1000)))}
			return nil
		}
	}
	t.raw = append(json.RawMessage(nil), b...)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		if len(t.raw) > 0 {
			return t.raw, nil
		}
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
