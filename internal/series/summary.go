package series

import (
	"fmt"
	"sort"

	"gridmix/internal/logger"
	"gridmix/internal/models"
)

// SummarySeries are the aggregate series the share summary reads
var SummarySeries = []string{models.SeriesClean, models.SeriesRenewables, models.SeriesFossil}

// Summarize condenses the annual generation table and the annual share table
// into one entry per year, newest first, keeping at most lastN years (all
// years when lastN <= 0). Either table may be nil; a year appears when
// either table has a row for it. The total is the sum of the present source
// values and stays missing when a year has none.
func Summarize(generation, shares *models.PivotTable, lastN int) ([]models.YearSummary, error) {
	years := make(map[int]bool)
	for _, table := range []*models.PivotTable{generation, shares} {
		if table == nil {
			continue
		}
		for _, ts := range table.Timestamps() {
			years[ts.Year()] = true
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("%w: no annual rows to summarize", models.ErrEmptyResult)
	}

	ordered := make([]int, 0, len(years))
	for y := range years {
		ordered = append(ordered, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	if lastN > 0 && lastN < len(ordered) {
		ordered = ordered[:lastN]
	}

	summaries := make([]models.YearSummary, 0, len(ordered))
	for _, y := range ordered {
		summaries = append(summaries, summarizeYear(y, generation, shares))
	}

	logger.For(logger.ComponentSeries).Debug("Annual summary computed", logger.Fields{
		"years":  len(summaries),
		"newest": ordered[0],
	})
	return summaries, nil
}

func summarizeYear(year int, generation, shares *models.PivotTable) models.YearSummary {
	s := models.YearSummary{
		Year:       year,
		Generation: make(map[string]models.Value),
		Total:      models.Missing(),
	}

	if row, ok := rowForYear(generation, year); ok {
		var total float64
		present := false
		for _, category := range generation.Categories() {
			v := row.Get(category)
			s.Generation[category] = v
			if f, ok := v.Get(); ok {
				total += f
				present = true
			}
		}
		if present {
			s.Total = models.Some(total)
		}
	}

	if row, ok := rowForYear(shares, year); ok {
		s.Share.Clean = row.Get(models.SeriesClean)
		s.Share.Renewables = row.Get(models.SeriesRenewables)
		s.Share.Fossil = row.Get(models.SeriesFossil)
	}
	return s
}

func rowForYear(table *models.PivotTable, year int) (models.PivotRow, bool) {
	if table == nil {
		return models.PivotRow{}, false
	}
	for _, ts := range table.Timestamps() {
		if ts.Year() == year {
			return table.Row(ts)
		}
	}
	return models.PivotRow{}, false
}
