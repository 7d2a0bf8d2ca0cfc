package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Granularity is the temporal resolution of a record set
type Granularity int

const (
	Monthly Granularity = iota
	Annual
)

// String returns the string representation of the granularity
func (g Granularity) String() string {
	switch g {
	case Monthly:
		return "monthly"
	case Annual:
		return "annual"
	default:
		return "unknown"
	}
}

// Endpoint returns the path suffix the upstream API uses for this granularity
func (g Granularity) Endpoint() string {
	if g == Annual {
		return "yearly"
	}
	return "monthly"
}

// Truncate rounds a timestamp down to the start of its period.
// The result is always UTC with day 1.
func (g Granularity) Truncate(t time.Time) time.Time {
	t = t.UTC()
	if g == Annual {
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Label formats a period timestamp for axis labels and chart titles
func (g Granularity) Label(t time.Time) string {
	if g == Annual {
		return t.Format("2006")
	}
	return t.Format("2006-01")
}

// ParseGranularity parses "monthly" or "annual" ("yearly" is accepted too)
func ParseGranularity(s string) (Granularity, bool) {
	switch s {
	case "monthly", "month", "":
		return Monthly, true
	case "annual", "yearly", "year":
		return Annual, true
	default:
		return Monthly, false
	}
}

// RawRecord is one flat record of the upstream "data" array, kept as decoded
type RawRecord map[string]interface{}

// Value is an optional float. The zero value is missing.
type Value struct {
	v  float64
	ok bool
}

// Some wraps a present value
func Some(v float64) Value {
	return Value{v: v, ok: true}
}

// Missing returns an absent value
func Missing() Value {
	return Value{}
}

// Get returns the value and whether it is present
func (v Value) Get() (float64, bool) {
	return v.v, v.ok
}

// IsMissing reports whether no value is present
func (v Value) IsMissing() bool {
	return !v.ok
}

// Or returns the value, or def when missing
func (v Value) Or(def float64) float64 {
	if !v.ok {
		return def
	}
	return v.v
}

// String renders the value, "missing" when absent
func (v Value) String() string {
	if !v.ok {
		return "missing"
	}
	return strconv.FormatFloat(v.v, 'f', -1, 64)
}

// MarshalJSON encodes a missing value as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON decodes null as missing
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// NormalizedRecord is a canonical (timestamp, category, value) tuple
type NormalizedRecord struct {
	Timestamp time.Time `json:"timestamp"`
	// Known is false when the record's date could not be parsed; such records
	// are not date-indexable.
	Known    bool   `json:"known"`
	Category string `json:"category"`
	Value    Value  `json:"value"`
}
