package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gridmix/internal/mocks"
	"gridmix/internal/models"
	"gridmix/internal/series"
)

// fakeSource answers queries from in-memory payloads keyed by fixture name
type fakeSource struct {
	responses map[string][]models.RawRecord
	errs      map[string]error
	calls     int
}

func (f *fakeSource) Fetch(ctx context.Context, q models.Query) ([]models.RawRecord, error) {
	f.calls++
	name := mocks.FixtureName(q)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	return f.responses[name], nil
}

func testSettings() Settings {
	return Settings{
		EntityCode:   "CHN",
		MonthlyStart: "2000-01",
		AnnualStart:  "2000",
		ShareYear:    2024,
		ValueField:   models.FieldGenerationTWh,
	}
}

func fixtureBuilder(settings Settings) *Builder {
	return NewBuilder(mocks.NewMockService("../mocks/data"), settings)
}

func monthlyRecords() []models.RawRecord {
	return []models.RawRecord{
		{"date": "2024-01-01", "series": "Coal", "generation_twh": 450.0},
		{"date": "2024-01-01", "series": "Solar", "generation_twh": 30.0},
		{"date": "2024-02-01", "series": "Coal", "generation_twh": 400.0},
		{"date": "2024-02-01", "series": "Solar", "generation_twh": nil},
	}
}

func TestBuildWithFixtures(t *testing.T) {
	dash := fixtureBuilder(testSettings()).Build(context.Background())

	if dash.EntityCode != "CHN" {
		t.Errorf("Expected entity CHN, got %s", dash.EntityCode)
	}
	if len(dash.Sections) != 5 {
		t.Fatalf("Expected 5 sections, got %d", len(dash.Sections))
	}
	for _, s := range dash.Sections {
		if !s.OK() {
			t.Errorf("Section %s failed: %s", s.Key, s.Message)
		}
		if s.Message != "" {
			t.Errorf("Section %s has both a chart and a message", s.Key)
		}
	}

	latest, _ := dash.Section(KeyLatestMix)
	if latest.Share == nil || latest.Share.Period != "2024-12" {
		t.Fatalf("Expected latest share for 2024-12, got %+v", latest.Share)
	}
	// the last fixture month has no wind value
	if _, ok := latest.Share.Get("Wind"); ok {
		t.Error("Expected Wind to be excluded from the latest share")
	}

	annual, _ := dash.Section(KeyAnnualMix)
	if annual.Share == nil || annual.Share.Period != "2024" {
		t.Fatalf("Expected annual share for 2024, got %+v", annual.Share)
	}
	if _, ok := annual.Share.Get("Wind"); !ok {
		t.Error("Expected Wind in the annual share")
	}

	if len(dash.Metrics) != 2 {
		t.Fatalf("Expected 2 metrics, got %d", len(dash.Metrics))
	}
	for _, m := range dash.Metrics {
		if m.Message != "" || m.Period != "2024" {
			t.Errorf("Unexpected metric %+v", m)
		}
	}
	if dash.Metrics[1].Value != "542 gCO2/kWh" {
		t.Errorf("Expected carbon intensity 542 gCO2/kWh, got %s", dash.Metrics[1].Value)
	}

	shares, _ := dash.Section(KeyShareTrend)
	if shares.Unit != "%" {
		t.Errorf("Expected a percent unit, got %q", shares.Unit)
	}
	// the total generation aggregate is not charted
	if got := shares.Table.Categories(); len(got) != 3 {
		t.Errorf("Expected clean, renewable and fossil series, got %v", got)
	}

	if dash.SummaryErr != nil {
		t.Fatalf("Summary failed: %v", dash.SummaryErr)
	}
	if len(dash.Summary) != 3 || dash.Summary[0].Year != 2024 {
		t.Fatalf("Expected 3 summary years starting at 2024, got %+v", dash.Summary)
	}
	latestYear := dash.Summary[0]
	if v, _ := latestYear.Share.Fossil.Get(); v != 62.36 {
		t.Errorf("Expected 2024 fossil share 62.36, got %s", latestYear.Share.Fossil)
	}
	if v, _ := latestYear.Share.Renewables.Get(); v != 33.05 {
		t.Errorf("Expected 2024 renewables share 33.05, got %s", latestYear.Share.Renewables)
	}
	if latestYear.Total.IsMissing() || len(latestYear.Generation) != 9 {
		t.Errorf("Expected generation for 9 sources, got %+v", latestYear.Generation)
	}
}

func TestBuildTrendNotes(t *testing.T) {
	dash := fixtureBuilder(testSettings()).Build(context.Background())

	for key, want := range map[string]string{
		KeyMonthlyTrend: "monthly data for <code>CHN</code>",
		KeyAnnualTrend:  "annual data for <code>CHN</code>",
	} {
		s, _ := dash.Section(key)
		if !strings.Contains(string(s.Notes), want) {
			t.Errorf("Expected %s notes to contain %q, got %q", key, want, s.Notes)
		}
	}
}

func TestBuildSummaryWindow(t *testing.T) {
	settings := testSettings()
	settings.SummaryYears = 2

	dash := fixtureBuilder(settings).Build(context.Background())
	if len(dash.Summary) != 2 || dash.Summary[1].Year != 2023 {
		t.Errorf("Expected 2024 and 2023 only, got %+v", dash.Summary)
	}
}

func TestBuildSummaryFailsWhenBothAnnualSourcesFail(t *testing.T) {
	source := &fakeSource{
		errs: map[string]error{
			"electricity-generation_yearly.json":           &models.FetchError{Endpoint: "/v1/electricity-generation/yearly", StatusCode: 500},
			"electricity-generation_yearly_aggregate.json": &models.FetchError{Endpoint: "/v1/electricity-generation/yearly", StatusCode: 500},
		},
	}

	dash := NewBuilder(source, testSettings()).Build(context.Background())

	var fetchErr *models.FetchError
	if !errors.As(dash.SummaryErr, &fetchErr) {
		t.Errorf("Expected a FetchError, got %v", dash.SummaryErr)
	}
	if len(dash.Summary) != 0 {
		t.Errorf("Expected no summary, got %+v", dash.Summary)
	}
	s, _ := dash.Section(KeyShareTrend)
	if s.OK() || s.Level != LevelError {
		t.Errorf("Expected the share section to fail, got %+v", s)
	}
}

func TestAnnualSummary(t *testing.T) {
	builder := fixtureBuilder(testSettings())

	summaries, err := builder.AnnualSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("AnnualSummary failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Year != 2024 {
		t.Fatalf("Expected only 2024, got %+v", summaries)
	}
	if v, _ := summaries[0].Share.Clean.Get(); v != 37.64 {
		t.Errorf("Expected 2024 clean share 37.64, got %s", summaries[0].Share.Clean)
	}

	// the configured window applies without an explicit one
	summaries, err = builder.AnnualSummary(context.Background(), 0)
	if err != nil || len(summaries) != 3 {
		t.Errorf("Expected all 3 fixture years, got %d (err=%v)", len(summaries), err)
	}
}

func TestBuildSectionsAreIndependent(t *testing.T) {
	monthlyName := "electricity-generation_monthly.json"
	source := &fakeSource{
		responses: map[string][]models.RawRecord{
			"electricity-generation_yearly.json": {
				{"date": "2023", "series": "Coal", "generation_twh": 5000.0},
				{"date": "2024", "series": "Coal", "generation_twh": 5100.0},
			},
			"electricity-generation_yearly_aggregate.json": {
				{"date": "2024", "series": "Clean", "share_of_generation_pct": 35.5},
			},
			"carbon-intensity_yearly.json": {
				{"date": "2024", "emissions_intensity_gco2_per_kwh": 540.0},
			},
		},
		errs: map[string]error{
			monthlyName: &models.FetchError{Endpoint: "/v1/electricity-generation/monthly", StatusCode: 401},
		},
	}

	dash := NewBuilder(source, testSettings()).Build(context.Background())

	for _, key := range []string{KeyMonthlyTrend, KeyLatestMix, KeyAnnualMix} {
		s, _ := dash.Section(key)
		if s.OK() || s.Level != LevelError {
			t.Errorf("Expected %s to fail with an error, got %+v", key, s)
		}
		if !strings.Contains(s.Message, "401") {
			t.Errorf("Expected status in message, got %q", s.Message)
		}
		var fetchErr *models.FetchError
		if !errors.As(s.Err, &fetchErr) {
			t.Errorf("Expected FetchError for %s, got %v", key, s.Err)
		}
	}

	for _, key := range []string{KeyAnnualTrend, KeyShareTrend} {
		if s, _ := dash.Section(key); !s.OK() {
			t.Errorf("Expected %s to succeed, got %s", key, s.Message)
		}
	}
	if len(dash.Summary) != 2 {
		t.Errorf("Expected a summary for 2024 and 2023, got %+v", dash.Summary)
	}
	if dash.Metrics[0].Value != "35.5%" {
		t.Errorf("Expected clean share 35.5%%, got %q (%s)", dash.Metrics[0].Value, dash.Metrics[0].Message)
	}
	// one request per dataset, the share data feeds a section, the summary and a metric
	if source.calls != 4 {
		t.Errorf("Expected 4 upstream requests, got %d", source.calls)
	}
}

func TestBuildEmptyShareYear(t *testing.T) {
	settings := testSettings()
	settings.ShareYear = 1999

	dash := fixtureBuilder(settings).Build(context.Background())

	s, _ := dash.Section(KeyAnnualMix)
	if s.OK() {
		t.Fatal("Expected the annual mix to have nothing to display")
	}
	if s.Level != LevelInfo {
		t.Errorf("Expected info level, got %s", s.Level)
	}
	if !errors.Is(s.Err, models.ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", s.Err)
	}
	if s.Title != "Generation mix, 1999" {
		t.Errorf("Unexpected title %q", s.Title)
	}
}

func TestBuildSchemaError(t *testing.T) {
	source := &fakeSource{
		responses: map[string][]models.RawRecord{
			"electricity-generation_monthly.json": {
				{"date": "2024-01-01", "generation_twh": 1.0},
			},
		},
	}

	dash := NewBuilder(source, testSettings()).Build(context.Background())

	s, _ := dash.Section(KeyMonthlyTrend)
	var schemaErr *models.SchemaError
	if !errors.As(s.Err, &schemaErr) {
		t.Fatalf("Expected SchemaError, got %v", s.Err)
	}
	if s.Level != LevelError || !strings.Contains(s.Message, "Unexpected data format") {
		t.Errorf("Unexpected message %q (%s)", s.Message, s.Level)
	}

	// empty upstream payloads are informational, not errors
	annual, _ := dash.Section(KeyAnnualTrend)
	if annual.Level != LevelInfo {
		t.Errorf("Expected info for an empty annual payload, got %s: %s", annual.Level, annual.Message)
	}
}

func TestGenerationTable(t *testing.T) {
	source := &fakeSource{
		responses: map[string][]models.RawRecord{
			"electricity-generation_monthly.json": monthlyRecords(),
		},
	}
	builder := NewBuilder(source, testSettings())

	table, err := builder.GenerationTable(context.Background(), models.Monthly, series.ModeRaw)
	if err != nil {
		t.Fatalf("GenerationTable failed: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", table.Len())
	}
	row, _ := table.Last()
	if !row.Get("Solar").IsMissing() {
		t.Error("Expected the null Solar value to stay missing")
	}

	source.errs = map[string]error{"electricity-generation_monthly.json": errors.New("connection refused")}
	if _, err := builder.GenerationTable(context.Background(), models.Monthly, series.ModeRaw); err == nil {
		t.Error("Expected the fetch error to be returned")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		level    Level
		contains string
	}{
		{"status", &models.FetchError{Endpoint: "/v1/x", StatusCode: 500}, LevelError, "status 500"},
		{"transport", &models.FetchError{Endpoint: "/v1/x", Err: errors.New("timeout")}, LevelError, "timeout"},
		{"schema", fmt.Errorf("normalizing: %w", &models.SchemaError{Column: "date"}), LevelError, "date column"},
		{"empty", fmt.Errorf("%w: nothing", models.ErrEmptyResult), LevelInfo, "No data"},
		{"other", errors.New("boom"), LevelError, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, msg := Describe(tt.err)
			if level != tt.level {
				t.Errorf("Expected level %s, got %s", tt.level, level)
			}
			if !strings.Contains(msg, tt.contains) {
				t.Errorf("Expected message to contain %q, got %q", tt.contains, msg)
			}
		})
	}
}

func TestSettingsDefaults(t *testing.T) {
	b := NewBuilder(&fakeSource{}, Settings{EntityCode: "CHN"})
	if b.Settings().ValueField != models.FieldGenerationTWh {
		t.Errorf("Expected default value field, got %s", b.Settings().ValueField)
	}
	if b.Settings().SummaryYears != DefaultSummaryYears {
		t.Errorf("Expected default summary window, got %d", b.Settings().SummaryYears)
	}
}
