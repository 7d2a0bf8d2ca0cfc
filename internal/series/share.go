package series

import (
	"fmt"
	"time"

	"gridmix/internal/models"
)

// ShareAt builds the share distribution of the row at ts. Missing and
// non-positive values are excluded; an absent row or an empty result returns
// models.ErrEmptyResult.
func ShareAt(table *models.PivotTable, ts time.Time) (models.ShareDistribution, error) {
	row, ok := table.Row(ts)
	if !ok {
		return models.ShareDistribution{}, fmt.Errorf("%w: no row for %s", models.ErrEmptyResult, table.Granularity().Label(ts))
	}
	return shareOfRow(row, table.Categories(), table.Granularity().Label(ts))
}

// LatestShare builds the share distribution of the most recent row
func LatestShare(table *models.PivotTable) (models.ShareDistribution, error) {
	row, ok := table.Last()
	if !ok {
		return models.ShareDistribution{}, fmt.Errorf("%w: table is empty", models.ErrEmptyResult)
	}
	return shareOfRow(row, table.Categories(), table.Granularity().Label(row.Timestamp))
}

// AnnualShare sums every record of year per category and builds the share
// distribution of the totals
func AnnualShare(records []models.NormalizedRecord, year int) (models.ShareDistribution, error) {
	table := AnnualSum(records, year)
	if table.IsEmpty() {
		return models.ShareDistribution{}, fmt.Errorf("%w: no records for %d", models.ErrEmptyResult, year)
	}
	return LatestShare(table)
}

func shareOfRow(row models.PivotRow, categories []string, period string) (models.ShareDistribution, error) {
	dist := models.ShareDistribution{Period: period}
	for _, c := range categories {
		v, ok := row.Get(c).Get()
		if !ok || v <= 0 {
			continue
		}
		dist.Entries = append(dist.Entries, models.ShareEntry{Category: c, Value: v})
	}
	if dist.Len() == 0 {
		return models.ShareDistribution{}, fmt.Errorf("%w: no positive values for %s", models.ErrEmptyResult, period)
	}
	return dist, nil
}
