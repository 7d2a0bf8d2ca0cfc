package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"time"

	"gridmix/internal/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	pngWidth  = 1024
	pngHeight = 512
)

// RenderLinePNG writes a static line chart of table. Categories without any
// present value are left out; missing points are skipped.
func RenderLinePNG(w io.Writer, title, unit string, table *models.PivotTable) error {
	if table == nil || table.IsEmpty() {
		return fmt.Errorf("%w: no rows to plot for %s", models.ErrEmptyResult, title)
	}

	timestamps := table.Timestamps()
	single := len(timestamps) == 1
	ymin, ymax := math.Inf(1), math.Inf(-1)
	var series []chart.Series
	for i, category := range table.Categories() {
		var xValues []time.Time
		var yValues []float64
		for j, v := range table.Series(category) {
			if f, ok := v.Get(); ok {
				xValues = append(xValues, timestamps[j])
				yValues = append(yValues, f)
				ymin, ymax = math.Min(ymin, f), math.Max(ymax, f)
			}
		}
		if len(xValues) == 0 {
			continue
		}
		color := chart.GetDefaultColor(i)
		style := chart.Style{
			StrokeColor: color,
			StrokeWidth: 2,
		}
		// a lone point has no segment to stroke
		if single {
			style.DotColor = color
			style.DotWidth = 5
		}
		series = append(series, chart.TimeSeries{
			Name:    category,
			Style:   style,
			XValues: xValues,
			YValues: yValues,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("%w: every value of %s is missing", models.ErrEmptyResult, title)
	}

	layout := "2006-01"
	if table.Granularity() == models.Annual {
		layout = "2006"
	}

	graph := chart.Chart{
		Title: title,
		TitleStyle: chart.Style{
			FontSize:  16,
			FontColor: drawing.ColorBlack,
		},
		Width:  pngWidth,
		Height: pngHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat(layout),
		},
		YAxis: chart.YAxis{
			Name: unit,
		},
		Series: series,
	}
	if single {
		graph.XAxis.Range = singlePeriodRange(timestamps[0], table.Granularity())
	}
	if ymin == ymax {
		pad := math.Max(math.Abs(ymin)*0.1, 1)
		graph.YAxis.Range = &chart.ContinuousRange{Min: ymin - pad, Max: ymax + pad}
	}
	graph.Elements = []chart.Renderable{chart.LegendLeft(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", title, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// singlePeriodRange centres ts in an axis one period wide. go-chart rejects
// an x range whose min equals its max.
func singlePeriodRange(ts time.Time, g models.Granularity) chart.Range {
	from, to := ts.AddDate(0, 0, -15), ts.AddDate(0, 0, 15)
	if g == models.Annual {
		from, to = ts.AddDate(0, -6, 0), ts.AddDate(0, 6, 0)
	}
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(from),
		Max: chart.TimeToFloat64(to),
	}
}

// RenderPiePNG writes a static pie chart of dist labelled with percentages
func RenderPiePNG(w io.Writer, title string, dist models.ShareDistribution) error {
	if dist.Len() == 0 {
		return fmt.Errorf("%w: nothing to plot for %s", models.ErrEmptyResult, title)
	}

	values := make([]chart.Value, 0, dist.Len())
	for _, e := range dist.Entries {
		pct, _ := dist.Percent(e.Category)
		values = append(values, chart.Value{
			Value: e.Value,
			Label: fmt.Sprintf("%s %.1f%%", e.Category, pct),
		})
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("%s (%s)", title, dist.Period),
		Width:  pngHeight,
		Height: pngHeight,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", title, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
