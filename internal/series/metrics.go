package series

import (
	"fmt"
	"time"

	"gridmix/internal/models"
)

// LatestValue walks the table backwards and returns the most recent present
// value of category
func LatestValue(table *models.PivotTable, category string) (time.Time, float64, error) {
	timestamps := table.Timestamps()
	values := table.Series(category)
	for i := len(values) - 1; i >= 0; i-- {
		if v, ok := values[i].Get(); ok {
			return timestamps[i], v, nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("%w: no value for %s", models.ErrEmptyResult, category)
}
