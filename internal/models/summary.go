package models

// YearSummary condenses one year of the annual datasets: generation per
// source and the clean, renewable and fossil shares of total generation
type YearSummary struct {
	Year       int              `json:"year"`
	Generation map[string]Value `json:"generation_twh"`
	Total      Value            `json:"total_twh"`
	Share      ShareSummary     `json:"share_pct"`
}

// ShareSummary holds percentages of total generation. Missing shares encode
// as null.
type ShareSummary struct {
	Clean      Value `json:"clean"`
	Renewables Value `json:"renewables"`
	Fossil     Value `json:"fossil"`
}

// FindYear returns the summary of year
func FindYear(summaries []YearSummary, year int) (YearSummary, bool) {
	for _, s := range summaries {
		if s.Year == year {
			return s, true
		}
	}
	return YearSummary{}, false
}
