package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValueSerialization(t *testing.T) {
	type doc struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}

	jsonData, err := json.Marshal(doc{A: Some(1.5), B: Missing()})
	if err != nil {
		t.Fatalf("Failed to marshal values: %v", err)
	}
	if string(jsonData) != `{"a":1.5,"b":null}` {
		t.Errorf("Unexpected JSON: %s", jsonData)
	}

	var decoded doc
	if err := json.Unmarshal(jsonData, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal values: %v", err)
	}
	if decoded.A != Some(1.5) {
		t.Errorf("Expected a=1.5, got %v", decoded.A)
	}
	if !decoded.B.IsMissing() {
		t.Errorf("Expected b to be missing, got %v", decoded.B)
	}
}

func TestValueMissingIsNotZero(t *testing.T) {
	if Some(0) == Missing() {
		t.Error("Expected present zero to differ from missing")
	}
	if Missing().Or(7) != 7 {
		t.Error("Expected Or to return the default for a missing value")
	}
	if Some(0).Or(7) != 0 {
		t.Error("Expected Or to return the present zero")
	}
	if Missing().String() != "missing" {
		t.Errorf("Expected 'missing', got %q", Missing().String())
	}
	var zero Value
	if !zero.IsMissing() {
		t.Error("Expected the zero Value to be missing")
	}
}

func TestGranularity(t *testing.T) {
	ts := time.Date(2024, 7, 19, 13, 45, 0, 0, time.FixedZone("CST", 8*3600))

	if got := Monthly.Truncate(ts); !got.Equal(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected monthly truncation: %s", got)
	}
	if got := Annual.Truncate(ts); !got.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected annual truncation: %s", got)
	}
	if Monthly.Endpoint() != "monthly" || Annual.Endpoint() != "yearly" {
		t.Errorf("Unexpected endpoints: %s, %s", Monthly.Endpoint(), Annual.Endpoint())
	}
	if Monthly.Label(ts) != "2024-07" || Annual.Label(ts) != "2024" {
		t.Errorf("Unexpected labels: %s, %s", Monthly.Label(ts), Annual.Label(ts))
	}

	tests := []struct {
		in   string
		want Granularity
		ok   bool
	}{
		{"monthly", Monthly, true},
		{"", Monthly, true},
		{"annual", Annual, true},
		{"yearly", Annual, true},
		{"weekly", Monthly, false},
	}
	for _, tt := range tests {
		got, ok := ParseGranularity(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseGranularity(%q) = %v, %v; expected %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestErrors(t *testing.T) {
	schemaErr := &SchemaError{Column: "category", Fields: []string{"date", "value"}}
	if !strings.Contains(schemaErr.Error(), "category") || !strings.Contains(schemaErr.Error(), "date, value") {
		t.Errorf("Unexpected schema error message: %s", schemaErr.Error())
	}

	fetchErr := &FetchError{Endpoint: "/v1/electricity-generation/monthly", StatusCode: 401}
	if !strings.Contains(fetchErr.Error(), "401") {
		t.Errorf("Expected status code in message, got %s", fetchErr.Error())
	}

	var target *FetchError
	wrapped := errors.Join(errors.New("section failed"), fetchErr)
	if !errors.As(wrapped, &target) || target.StatusCode != 401 {
		t.Error("Expected FetchError to be recoverable with errors.As")
	}
}

func TestShareDistribution(t *testing.T) {
	dist := ShareDistribution{
		Period: "2024",
		Entries: []ShareEntry{
			{Category: "Coal", Value: 30},
			{Category: "Solar", Value: 10},
		},
	}

	if dist.Total() != 40 {
		t.Errorf("Expected total 40, got %v", dist.Total())
	}
	if p, ok := dist.Percent("Coal"); !ok || p != 75 {
		t.Errorf("Expected Coal 75%%, got %v (ok=%v)", p, ok)
	}
	if _, ok := dist.Percent("Gas"); ok {
		t.Error("Expected no percent for unknown category")
	}
	if (ShareDistribution{}).Total() != 0 {
		t.Error("Expected empty distribution total to be 0")
	}
}
