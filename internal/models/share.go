package models

// ShareEntry is one category of a share distribution
type ShareEntry struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// ShareDistribution holds the strictly positive category values of one period
type ShareDistribution struct {
	Period  string       `json:"period"`
	Entries []ShareEntry `json:"entries"`
}

// Len returns the number of categories
func (d ShareDistribution) Len() int {
	return len(d.Entries)
}

// Total returns the sum of all values
func (d ShareDistribution) Total() float64 {
	var total float64
	for _, e := range d.Entries {
		total += e.Value
	}
	return total
}

// Get returns the value of a category
func (d ShareDistribution) Get(category string) (float64, bool) {
	for _, e := range d.Entries {
		if e.Category == category {
			return e.Value, true
		}
	}
	return 0, false
}

// Percent returns a category's share of the total, 0-100
func (d ShareDistribution) Percent(category string) (float64, bool) {
	v, ok := d.Get(category)
	if !ok {
		return 0, false
	}
	total := d.Total()
	if total <= 0 {
		return 0, false
	}
	return v / total * 100, true
}
