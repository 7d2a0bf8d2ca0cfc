package models

import (
	"encoding/json"
	"sort"
	"time"
)

// PivotRow is one timestamp of a pivot table
type PivotRow struct {
	Timestamp time.Time
	Values    map[string]Value
}

// Get returns the value of a category; absent categories are missing
func (r PivotRow) Get(category string) Value {
	return r.Values[category]
}

// PivotTable maps strictly increasing timestamps and a set of categories to
// optional values. It is not modified after construction.
type PivotTable struct {
	granularity Granularity
	categories  []string
	rows        []PivotRow
	index       map[int64]int
}

// NewPivotTable builds a table from rows. Rows are sorted by timestamp and
// rows sharing a timestamp are merged, later rows winning per category.
// Categories keep the given order; categories found only in rows are appended.
func NewPivotTable(granularity Granularity, categories []string, rows []PivotRow) *PivotTable {
	t := &PivotTable{
		granularity: granularity,
		index:       make(map[int64]int),
	}

	seen := make(map[string]bool)
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			t.categories = append(t.categories, c)
		}
	}

	sorted := make([]PivotRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	for _, r := range sorted {
		key := r.Timestamp.UnixNano()
		i, ok := t.index[key]
		if !ok {
			i = len(t.rows)
			t.index[key] = i
			t.rows = append(t.rows, PivotRow{
				Timestamp: r.Timestamp.UTC(),
				Values:    make(map[string]Value),
			})
		}
		for c, v := range r.Values {
			t.rows[i].Values[c] = v
			if !seen[c] {
				seen[c] = true
				t.categories = append(t.categories, c)
			}
		}
	}
	return t
}

// Granularity returns the period resolution of the rows
func (t *PivotTable) Granularity() Granularity {
	return t.granularity
}

// Len returns the number of timestamps
func (t *PivotTable) Len() int {
	return len(t.rows)
}

// IsEmpty reports whether the table has no timestamps
func (t *PivotTable) IsEmpty() bool {
	return len(t.rows) == 0
}

// Timestamps returns the row timestamps in ascending order
func (t *PivotTable) Timestamps() []time.Time {
	out := make([]time.Time, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Timestamp
	}
	return out
}

// Categories returns the column names in first-appearance order
func (t *PivotTable) Categories() []string {
	out := make([]string, len(t.categories))
	copy(out, t.categories)
	return out
}

// Value returns the cell for a timestamp and category
func (t *PivotTable) Value(ts time.Time, category string) Value {
	i, ok := t.index[ts.UnixNano()]
	if !ok {
		return Missing()
	}
	return t.rows[i].Values[category]
}

// Row returns a copy of the row at ts
func (t *PivotTable) Row(ts time.Time) (PivotRow, bool) {
	i, ok := t.index[ts.UnixNano()]
	if !ok {
		return PivotRow{}, false
	}
	return t.rows[i].clone(), true
}

// Last returns a copy of the most recent row
func (t *PivotTable) Last() (PivotRow, bool) {
	if len(t.rows) == 0 {
		return PivotRow{}, false
	}
	return t.rows[len(t.rows)-1].clone(), true
}

// Series returns the values of one category aligned with Timestamps
func (t *PivotTable) Series(category string) []Value {
	out := make([]Value, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Values[category]
	}
	return out
}

// Equal reports whether both tables hold the same timestamps, categories and
// values. Category order is ignored.
func (t *PivotTable) Equal(other *PivotTable) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.rows) != len(other.rows) || len(t.categories) != len(other.categories) {
		return false
	}
	for _, c := range t.categories {
		found := false
		for _, oc := range other.categories {
			if c == oc {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i, r := range t.rows {
		or := other.rows[i]
		if !r.Timestamp.Equal(or.Timestamp) {
			return false
		}
		for _, c := range t.categories {
			if r.Values[c] != or.Values[c] {
				return false
			}
		}
	}
	return true
}

func (r PivotRow) clone() PivotRow {
	values := make(map[string]Value, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return PivotRow{Timestamp: r.Timestamp, Values: values}
}

type pivotTableJSON struct {
	Granularity string             `json:"granularity"`
	Categories  []string           `json:"categories"`
	Rows        []pivotTableRowDoc `json:"rows"`
}

type pivotTableRowDoc struct {
	Period string           `json:"period"`
	Values map[string]Value `json:"values"`
}

// MarshalJSON encodes the table with one entry per category in every row;
// missing cells become null
func (t *PivotTable) MarshalJSON() ([]byte, error) {
	doc := pivotTableJSON{
		Granularity: t.granularity.String(),
		Categories:  t.Categories(),
		Rows:        make([]pivotTableRowDoc, 0, len(t.rows)),
	}
	for _, r := range t.rows {
		values := make(map[string]Value, len(t.categories))
		for _, c := range t.categories {
			values[c] = r.Values[c]
		}
		doc.Rows = append(doc.Rows, pivotTableRowDoc{
			Period: t.granularity.Label(r.Timestamp),
			Values: values,
		})
	}
	return json.Marshal(doc)
}
