package reports

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"gridmix/internal/charts"
	"gridmix/internal/config"
	"gridmix/internal/fetchers"
	"gridmix/internal/logger"
	"gridmix/internal/models"
	"gridmix/internal/series"

	"github.com/samber/lo"
)

// Section keys, also used as snapshot file names
const (
	KeyMonthlyTrend = "monthly-generation"
	KeyLatestMix    = "latest-month-mix"
	KeyAnnualMix    = "annual-mix"
	KeyAnnualTrend  = "annual-generation"
	KeyShareTrend   = "clean-fossil-share"
)

// SummaryFile is the snapshot file holding the per-year summary
const SummaryFile = "annual-summary.json"

// DefaultSummaryYears is the summary window used when none is configured
const DefaultSummaryYears = 5

// Level classifies a section message
type Level string

const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

// Section is one independently computed block of the dashboard. It holds
// either a chart or a message, never both.
type Section struct {
	Key     string
	Title   string
	Unit    string
	Notes   template.HTML
	Chart   *charts.ChartSnippet
	Table   *models.PivotTable
	Share   *models.ShareDistribution
	Message string
	Level   Level
	Err     error
}

// OK reports whether the section produced a chart
func (s Section) OK() bool {
	return s.Err == nil && s.Chart != nil
}

// Metric is a single summary figure
type Metric struct {
	Label   string
	Value   string
	Period  string
	Message string
	Level   Level
}

// Dashboard is the outcome of one build
type Dashboard struct {
	EntityCode  string
	GeneratedAt time.Time
	Sections    []Section
	Metrics     []Metric
	// Summary lists the most recent years, newest first. SummaryErr is set
	// when it could not be computed.
	Summary    []models.YearSummary
	SummaryErr error
}

// Section returns the section with key
func (d *Dashboard) Section(key string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Failed returns the number of sections without a chart
func (d *Dashboard) Failed() int {
	return lo.CountBy(d.Sections, func(s Section) bool { return !s.OK() })
}

// Settings selects what the dashboard requests upstream
type Settings struct {
	EntityCode   string
	MonthlyStart string
	AnnualStart  string
	ShareYear    int
	ValueField   string
	SummaryYears int
}

// SettingsFromConfig extracts the dashboard settings from cfg
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		EntityCode:   cfg.EntityCode,
		MonthlyStart: cfg.MonthlyStart,
		AnnualStart:  cfg.AnnualStart,
		ShareYear:    cfg.ShareYear,
		ValueField:   cfg.ValueField,
		SummaryYears: cfg.SummaryYears,
	}
}

// Builder fetches, reshapes and charts the dashboard data
type Builder struct {
	source   fetchers.Source
	settings Settings
	html     *HTMLBuilder
	log      *logger.Logger
}

// NewBuilder creates a dashboard builder reading from source
func NewBuilder(source fetchers.Source, settings Settings) *Builder {
	if settings.ValueField == "" {
		settings.ValueField = models.FieldGenerationTWh
	}
	if settings.SummaryYears <= 0 {
		settings.SummaryYears = DefaultSummaryYears
	}
	return &Builder{
		source:   source,
		settings: settings,
		html:     NewHTMLBuilder(),
		log:      logger.For(logger.ComponentReports),
	}
}

// Settings returns the builder settings
func (b *Builder) Settings() Settings {
	return b.settings
}

// Build computes every section. A failing section is recorded with its
// message and does not stop the others.
func (b *Builder) Build(ctx context.Context) *Dashboard {
	start := time.Now()
	dash := &Dashboard{
		EntityCode:  b.settings.EntityCode,
		GeneratedAt: start.UTC(),
	}

	monthly, monthlyErr := b.load(ctx, b.query(models.DatasetGeneration, models.Monthly, false), b.generationNormalizer())
	var monthlyTable *models.PivotTable
	if monthlyErr == nil {
		monthlyTable = series.Pivot(monthly, series.ModeRaw, models.Monthly)
	}

	dash.Sections = append(dash.Sections,
		b.trendSection(KeyMonthlyTrend, "Monthly generation by source", monthlyTable, monthlyErr),
		b.latestMixSection(monthlyTable, monthlyErr),
		b.annualMixSection(monthly, monthlyErr),
	)

	annual, annualErr := b.load(ctx, b.query(models.DatasetGeneration, models.Annual, false), b.generationNormalizer())
	var annualTable *models.PivotTable
	if annualErr == nil {
		annualTable = series.Pivot(annual, series.ModeAggregate, models.Annual)
	}
	dash.Sections = append(dash.Sections,
		b.trendSection(KeyAnnualTrend, "Annual generation by source", annualTable, annualErr))

	shares, sharesErr := b.load(ctx, b.query(models.DatasetGeneration, models.Annual, true), b.shareNormalizer())
	var shareTable *models.PivotTable
	if sharesErr == nil {
		shareTable = series.Pivot(shares, series.ModeRaw, models.Annual)
	}
	dash.Sections = append(dash.Sections, b.shareTrendSection(shares, sharesErr))

	dash.Summary, dash.SummaryErr = b.summarize(annualTable, annualErr, shareTable, sharesErr, b.settings.SummaryYears)
	if dash.SummaryErr != nil {
		level, _ := Describe(dash.SummaryErr)
		b.logFailure("annual summary", level, dash.SummaryErr)
	}

	dash.Metrics = append(dash.Metrics, b.cleanShareMetric(shareTable, sharesErr), b.carbonIntensityMetric(ctx))

	b.log.Info("Dashboard built", logger.Fields{
		"entity_code":     b.settings.EntityCode,
		"sections":        len(dash.Sections),
		"failed_sections": dash.Failed(),
		"duration_ms":     time.Since(start).Milliseconds(),
	})
	return dash
}

// GenerationTable fetches the generation dataset at granularity and pivots it
func (b *Builder) GenerationTable(ctx context.Context, granularity models.Granularity, mode series.Mode) (*models.PivotTable, error) {
	records, err := b.load(ctx, b.query(models.DatasetGeneration, granularity, false), b.generationNormalizer())
	if err != nil {
		return nil, err
	}
	return series.Pivot(records, mode, granularity), nil
}

// AnnualSummary fetches both annual datasets and summarizes the most recent
// lastN years, newest first. A non-positive lastN uses the configured window.
func (b *Builder) AnnualSummary(ctx context.Context, lastN int) ([]models.YearSummary, error) {
	if lastN <= 0 {
		lastN = b.settings.SummaryYears
	}

	var generation, shares *models.PivotTable
	records, genErr := b.load(ctx, b.query(models.DatasetGeneration, models.Annual, false), b.generationNormalizer())
	if genErr == nil {
		generation = series.Pivot(records, series.ModeAggregate, models.Annual)
	}
	records, shareErr := b.load(ctx, b.query(models.DatasetGeneration, models.Annual, true), b.shareNormalizer())
	if shareErr == nil {
		shares = series.Pivot(records, series.ModeRaw, models.Annual)
	}
	return b.summarize(generation, genErr, shares, shareErr, lastN)
}

// summarize fails only when both inputs failed; one missing dataset leaves
// its half of every entry empty
func (b *Builder) summarize(generation *models.PivotTable, genErr error, shares *models.PivotTable, shareErr error, lastN int) ([]models.YearSummary, error) {
	if genErr != nil && shareErr != nil {
		return nil, errors.Join(genErr, shareErr)
	}
	return series.Summarize(generation, shares, lastN)
}

func (b *Builder) query(dataset models.Dataset, granularity models.Granularity, aggregate bool) models.Query {
	start := b.settings.MonthlyStart
	if granularity == models.Annual {
		start = b.settings.AnnualStart
	}
	return models.Query{
		Dataset:         dataset,
		Granularity:     granularity,
		EntityCode:      b.settings.EntityCode,
		AggregateSeries: aggregate,
		StartDate:       start,
	}
}

func (b *Builder) generationNormalizer() *series.Normalizer {
	return series.NewNormalizer(series.WithValueField(b.settings.ValueField))
}

func (b *Builder) shareNormalizer() *series.Normalizer {
	return series.NewNormalizer(series.WithValueField(models.FieldShareOfGeneration))
}

func (b *Builder) load(ctx context.Context, q models.Query, n *series.Normalizer) ([]models.NormalizedRecord, error) {
	raw, err := b.source.Fetch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", fetchers.Endpoint(q), err)
	}
	records, err := n.Normalize(raw, q.Granularity)
	if err != nil {
		return nil, fmt.Errorf("normalizing %s: %w", fetchers.Endpoint(q), err)
	}
	return records, nil
}

func (b *Builder) trendSection(key, title string, table *models.PivotTable, err error) Section {
	s := Section{Key: key, Title: title, Unit: unitFor(b.settings.ValueField)}
	s.Notes = b.notes("Source: [Ember](https://ember-energy.org) %s data for `%s`. Periods without a reported value are drawn as gaps.",
		granularityOf(key), b.settings.EntityCode)
	if err != nil {
		return b.fail(s, err)
	}
	snippet, err := charts.LineSnippet(title, s.Unit, table)
	if err != nil {
		return b.fail(s, err)
	}
	s.Chart = &snippet
	s.Table = table
	return s
}

// shareTrendSection charts the clean, renewable and fossil shares of total
// generation from the aggregate series
func (b *Builder) shareTrendSection(records []models.NormalizedRecord, err error) Section {
	s := Section{Key: KeyShareTrend, Title: "Clean, renewable and fossil share of generation", Unit: unitFor(models.FieldShareOfGeneration)}
	s.Notes = b.notes("Share of total generation per year from the Ember aggregate series (%s). Clean includes nuclear; renewables do not.",
		strings.Join(series.SummarySeries, ", "))
	if err != nil {
		return b.fail(s, err)
	}
	records = lo.Filter(records, func(r models.NormalizedRecord, _ int) bool {
		return lo.Contains(series.SummarySeries, r.Category)
	})
	table := series.Pivot(records, series.ModeRaw, models.Annual)
	snippet, err := charts.LineSnippet(s.Title, s.Unit, table)
	if err != nil {
		return b.fail(s, err)
	}
	s.Chart = &snippet
	s.Table = table
	return s
}

func (b *Builder) latestMixSection(table *models.PivotTable, err error) Section {
	s := Section{Key: KeyLatestMix, Title: "Generation mix, latest month", Unit: unitFor(b.settings.ValueField)}
	s.Notes = b.notes("Sources with no value or a value of zero in the most recent month are left out.")
	if err != nil {
		return b.fail(s, err)
	}
	dist, err := series.LatestShare(table)
	if err != nil {
		return b.fail(s, err)
	}
	return b.pieSection(s, dist)
}

func (b *Builder) annualMixSection(records []models.NormalizedRecord, err error) Section {
	year := b.settings.ShareYear
	s := Section{Key: KeyAnnualMix, Title: fmt.Sprintf("Generation mix, %d", year), Unit: unitFor(b.settings.ValueField)}
	s.Notes = b.notes("Monthly values summed per source over %d.", year)
	if err != nil {
		return b.fail(s, err)
	}
	dist, err := series.AnnualShare(records, year)
	if err != nil {
		return b.fail(s, err)
	}
	return b.pieSection(s, dist)
}

func (b *Builder) pieSection(s Section, dist models.ShareDistribution) Section {
	snippet, err := charts.PieSnippet(s.Title, dist)
	if err != nil {
		return b.fail(s, err)
	}
	s.Chart = &snippet
	s.Share = &dist
	return s
}

func (b *Builder) cleanShareMetric(shares *models.PivotTable, err error) Metric {
	m := Metric{Label: "Clean electricity share"}
	if err != nil {
		return b.failMetric(m, err)
	}
	ts, v, err := series.LatestValue(shares, models.SeriesClean)
	if err != nil {
		return b.failMetric(m, err)
	}
	m.Value = fmt.Sprintf("%.1f%%", v)
	m.Period = models.Annual.Label(ts)
	return m
}

func (b *Builder) carbonIntensityMetric(ctx context.Context) Metric {
	const category = "Carbon intensity"
	m := Metric{Label: category}
	records, err := b.load(ctx,
		b.query(models.DatasetCarbonIntensity, models.Annual, false),
		series.NewNormalizer(series.WithValueField(models.FieldEmissionIntensity), series.WithFixedCategory(category)))
	if err != nil {
		return b.failMetric(m, err)
	}
	ts, v, err := series.LatestValue(series.Pivot(records, series.ModeRaw, models.Annual), category)
	if err != nil {
		return b.failMetric(m, err)
	}
	m.Value = fmt.Sprintf("%.0f gCO2/kWh", v)
	m.Period = models.Annual.Label(ts)
	return m
}

func (b *Builder) fail(s Section, err error) Section {
	s.Err = err
	s.Level, s.Message = Describe(err)
	s.Chart, s.Table, s.Share = nil, nil, nil
	b.logFailure(s.Key, s.Level, err)
	return s
}

func (b *Builder) failMetric(m Metric, err error) Metric {
	m.Level, m.Message = Describe(err)
	b.logFailure(m.Label, m.Level, err)
	return m
}

func (b *Builder) logFailure(name string, level Level, err error) {
	if level == LevelInfo {
		b.log.Info("Nothing to display", logger.Fields{"section": name, "reason": err.Error()})
		return
	}
	b.log.Error("Section failed", err, logger.Fields{"section": name})
}

func (b *Builder) notes(format string, args ...interface{}) template.HTML {
	rendered, err := b.html.ConvertMarkdownToHTML(fmt.Sprintf(format, args...))
	if err != nil {
		return ""
	}
	return template.HTML(rendered)
}

// Describe turns a section error into a user-facing message. Upstream and
// schema failures are errors; an empty result is informational.
func Describe(err error) (Level, string) {
	var fetchErr *models.FetchError
	var schemaErr *models.SchemaError
	switch {
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode != 0 && fetchErr.StatusCode != 200 {
			return LevelError, fmt.Sprintf("The Ember API answered %s with status %d.", fetchErr.Endpoint, fetchErr.StatusCode)
		}
		return LevelError, fmt.Sprintf("Could not load %s: %v", fetchErr.Endpoint, fetchErr.Err)
	case errors.As(err, &schemaErr):
		return LevelError, fmt.Sprintf("Unexpected data format: %s.", schemaErr.Error())
	case errors.Is(err, models.ErrEmptyResult):
		return LevelInfo, "No data to display for this period."
	default:
		return LevelError, err.Error()
	}
}

func unitFor(field string) string {
	switch field {
	case models.FieldGenerationTWh:
		return "TWh"
	case models.FieldShareOfGeneration:
		return "%"
	case models.FieldEmissionIntensity:
		return "gCO2/kWh"
	default:
		return field
	}
}

func granularityOf(key string) models.Granularity {
	if key == KeyAnnualTrend {
		return models.Annual
	}
	return models.Monthly
}
