// Package series reshapes flat upstream records into time-indexed,
// category-keyed tables and derives share distributions from them.
package series

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gridmix/internal/models"

	"github.com/samber/lo"
)

// Field names used to reconstruct record dates
const (
	FieldYear  = "year"
	FieldMonth = "month"
	FieldDate  = "date"
)

// DefaultCategoryFields lists the accepted category columns, highest priority first
var DefaultCategoryFields = []string{"fuel", "source", "series"}

// dateLayouts are tried in order when a record carries a string date
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

type dateSchema int

const (
	dateFromYearMonth dateSchema = iota
	dateFromString
	dateFromYear
)

// Normalizer turns raw records into (timestamp, category, value) tuples
type Normalizer struct {
	valueField     string
	categoryFields []string
	fixedCategory  string
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithValueField sets the numeric field read as the record value
func WithValueField(field string) Option {
	return func(n *Normalizer) {
		n.valueField = field
	}
}

// WithCategoryFields replaces the priority list of category columns
func WithCategoryFields(fields ...string) Option {
	return func(n *Normalizer) {
		n.categoryFields = fields
	}
}

// WithFixedCategory labels every record with name instead of looking up a
// category column. Used for single-series datasets such as carbon intensity.
func WithFixedCategory(name string) Option {
	return func(n *Normalizer) {
		n.fixedCategory = name
	}
}

// NewNormalizer creates a normalizer reading generation_twh by default
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		valueField:     models.FieldGenerationTWh,
		categoryFields: DefaultCategoryFields,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize resolves the date and category columns once for the whole record
// set and converts every record. Records whose date cannot be parsed are kept
// with Known=false; records with a null value are kept with a missing value.
// A record set without any date schema or category column is rejected with a
// *models.SchemaError.
func (n *Normalizer) Normalize(raw []models.RawRecord, granularity models.Granularity) ([]models.NormalizedRecord, error) {
	if len(raw) == 0 {
		return []models.NormalizedRecord{}, nil
	}

	fields := FieldNames(raw)

	schema, ok := detectDateSchema(fields, granularity)
	if !ok {
		return nil, &models.SchemaError{Column: "date", Fields: fields}
	}

	categoryField := ""
	if n.fixedCategory == "" {
		categoryField, ok = FirstPresent(fields, n.categoryFields)
		if !ok {
			return nil, &models.SchemaError{Column: "category", Fields: fields}
		}
	}

	out := make([]models.NormalizedRecord, 0, len(raw))
	for _, rec := range raw {
		category := n.fixedCategory
		if categoryField != "" {
			category = stringValue(rec[categoryField])
			if category == "" {
				// no column to place the value in
				continue
			}
		}

		ts, known := resolveDate(rec, schema)
		if known {
			ts = granularity.Truncate(ts)
		}

		out = append(out, models.NormalizedRecord{
			Timestamp: ts,
			Known:     known,
			Category:  category,
			Value:     numericValue(rec[n.valueField]),
		})
	}
	return out, nil
}

// FieldNames returns the sorted union of keys across all records
func FieldNames(raw []models.RawRecord) []string {
	set := make(map[string]struct{})
	for _, rec := range raw {
		for k := range rec {
			set[k] = struct{}{}
		}
	}
	names := lo.Keys(set)
	sort.Strings(names)
	return names
}

// FirstPresent returns the first candidate contained in fields
func FirstPresent(fields []string, candidates []string) (string, bool) {
	present := lo.SliceToMap(fields, func(f string) (string, struct{}) { return f, struct{}{} })
	return lo.Find(candidates, func(c string) bool {
		_, ok := present[c]
		return ok
	})
}

func detectDateSchema(fields []string, granularity models.Granularity) (dateSchema, bool) {
	_, hasYear := FirstPresent(fields, []string{FieldYear})
	_, hasMonth := FirstPresent(fields, []string{FieldMonth})
	_, hasDate := FirstPresent(fields, []string{FieldDate})

	switch {
	case hasYear && hasMonth:
		return dateFromYearMonth, true
	case hasDate:
		return dateFromString, true
	case hasYear && granularity == models.Annual:
		return dateFromYear, true
	default:
		return 0, false
	}
}

func resolveDate(rec models.RawRecord, schema dateSchema) (time.Time, bool) {
	switch schema {
	case dateFromYearMonth:
		year, ok := intValue(rec[FieldYear])
		if !ok {
			return time.Time{}, false
		}
		month, ok := intValue(rec[FieldMonth])
		if !ok || month < 1 || month > 12 {
			return time.Time{}, false
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), true
	case dateFromYear:
		year, ok := intValue(rec[FieldYear])
		if !ok {
			return time.Time{}, false
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), true
	default:
		return parseDate(rec[FieldDate])
	}
}

// parseDate accepts a date string in one of dateLayouts, or a bare year number
func parseDate(v interface{}) (time.Time, bool) {
	if year, ok := v.(float64); ok {
		if year != math.Trunc(year) || year < 1 {
			return time.Time{}, false
		}
		return time.Date(int(year), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	s := strings.TrimSpace(stringValue(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func stringValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}

func numericValue(v interface{}) models.Value {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return models.Missing()
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return models.Missing()
		}
		f = parsed
	default:
		return models.Missing()
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return models.Missing()
	}
	return models.Some(f)
}

func intValue(v interface{}) (int, bool) {
	f, ok := numericValue(v).Get()
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
