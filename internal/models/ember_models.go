package models

// EmberResponse is the envelope of every Ember API answer
type EmberResponse struct {
	Data  []RawRecord `json:"data"`
	Stats *EmberStats `json:"stats,omitempty"`
}

// EmberStats carries the pagination summary some endpoints include
type EmberStats struct {
	NumberOfRecords int `json:"number_of_records"`
}

// Dataset identifies one Ember endpoint family
type Dataset string

const (
	DatasetGeneration      Dataset = "electricity-generation"
	DatasetCarbonIntensity Dataset = "carbon-intensity"
)

// Well-known value fields of the Ember datasets
const (
	FieldGenerationTWh     = "generation_twh"
	FieldShareOfGeneration = "share_of_generation_pct"
	FieldEmissionIntensity = "emissions_intensity_gco2_per_kwh"
)

// Aggregate series names used for summary metrics
const (
	SeriesClean      = "Clean"
	SeriesFossil     = "Fossil"
	SeriesRenewables = "Renewables"
)

// Query describes one upstream request
type Query struct {
	Dataset         Dataset
	Granularity     Granularity
	EntityCode      string
	AggregateSeries bool
	StartDate       string
}
