package series

import (
	"sort"

	"gridmix/internal/models"
)

// Mode selects how duplicate (period, category) pairs are combined
type Mode int

const (
	// ModeRaw keeps one row per distinct timestamp; a later duplicate wins
	ModeRaw Mode = iota
	// ModeAggregate collapses rows to the period and sums present values
	ModeAggregate
)

// String returns the string representation of the mode
func (m Mode) String() string {
	if m == ModeAggregate {
		return "aggregate"
	}
	return "raw"
}

// ParseMode parses "raw" or "aggregate"
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "raw":
		return ModeRaw, true
	case "aggregate", "sum":
		return ModeAggregate, true
	default:
		return ModeRaw, false
	}
}

// Pivot groups records by timestamp and category. In ModeRaw the timestamps
// are used as they are; in ModeAggregate they are truncated to granularity
// and missing values do not contribute to the sum. Records without a known
// date are skipped. Empty input gives an empty table.
func Pivot(records []models.NormalizedRecord, mode Mode, granularity models.Granularity) *models.PivotTable {
	ordered := make([]models.NormalizedRecord, 0, len(records))
	for _, r := range records {
		if r.Known {
			ordered = append(ordered, r)
		}
	}
	// stable so that input order decides between duplicates
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var categories []string
	seen := make(map[string]bool)
	var rows []models.PivotRow
	index := make(map[int64]int)

	for _, r := range ordered {
		ts := r.Timestamp
		if mode == ModeAggregate {
			ts = granularity.Truncate(ts)
		}

		if !seen[r.Category] {
			seen[r.Category] = true
			categories = append(categories, r.Category)
		}

		i, ok := index[ts.UnixNano()]
		if !ok {
			i = len(rows)
			index[ts.UnixNano()] = i
			rows = append(rows, models.PivotRow{Timestamp: ts, Values: make(map[string]models.Value)})
		}

		values := rows[i].Values
		switch mode {
		case ModeAggregate:
			v, present := r.Value.Get()
			if !present {
				continue
			}
			values[r.Category] = models.Some(values[r.Category].Or(0) + v)
		default:
			values[r.Category] = r.Value
		}
	}

	return models.NewPivotTable(granularity, categories, rows)
}

// AnnualSum returns the aggregate table of a single calendar year: one row
// dated January 1 of year, or an empty table when the year has no records.
func AnnualSum(records []models.NormalizedRecord, year int) *models.PivotTable {
	var inYear []models.NormalizedRecord
	for _, r := range records {
		if r.Known && r.Timestamp.Year() == year {
			inYear = append(inYear, r)
		}
	}
	return Pivot(inYear, ModeAggregate, models.Annual)
}
