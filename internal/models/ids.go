package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Arisudan/Varshini-Industrries/internal/apperr"
)

// NumericID identifies products, categories and warranty requests.
// Older documents sometimes carry these ids as JSON strings; both forms decode.
type NumericID int64

// ParseNumericID accepts "17", " 17 " and "17.0".
func ParseNumericID(s string) (NumericID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty id: %w", apperr.ErrValidation)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NumericID(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid id %q: %w", s, apperr.ErrValidation)
	}
	return NumericID(int64(f)), nil
}

func (id NumericID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id *NumericID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = 0
		return nil
	}
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	v, err := ParseNumericID(s)
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// NewNumericID returns a millisecond timestamp id that is not already in taken.
func NewNumericID(now time.Time, taken func(NumericID) bool) NumericID {
	id := NumericID(now.UnixMilli())
	for taken(id) {
		id++
	}
	return id
}

// LeadID identifies a lead. New leads get uuid strings; early documents used
// numbers, which Lead writes back as numbers.
type LeadID string

func (id LeadID) String() string { return string(id) }

// Equal compares ids tolerating "17" vs "17.0" style numeric spellings.
func (id LeadID) Equal(other LeadID) bool {
	if id == other {
		return true
	}
	a, errA := ParseNumericID(string(id))
	b, errB := ParseNumericID(string(other))
	return errA == nil && errB == nil && a == b
}

func (id *LeadID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = LeadID(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("lead id: %w", err)
	}
	*id = LeadID(n.String())
	return nil
}
