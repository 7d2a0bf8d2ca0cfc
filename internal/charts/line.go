package charts

import (
	"fmt"

	"gridmix/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// LineSnippet draws one line per category of table. Missing cells are gaps,
// never zeros.
func LineSnippet(title, unit string, table *models.PivotTable) (ChartSnippet, error) {
	if table == nil || table.IsEmpty() {
		return ChartSnippet{}, fmt.Errorf("%w: no rows to plot for %s", models.ErrEmptyResult, title)
	}

	id := ChartID(title)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: id,
			Theme:   types.ThemeWesteros,
			Width:   "100%",
			Height:  "480px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: unit,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Type: "scroll",
			Top:  "bottom",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: unit,
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:  "slider",
			Start: 0,
			End:   100,
		}),
	)

	xAxis := make([]string, 0, table.Len())
	for _, ts := range table.Timestamps() {
		xAxis = append(xAxis, table.Granularity().Label(ts))
	}
	line.SetXAxis(xAxis)

	for _, category := range table.Categories() {
		series := table.Series(category)
		data := make([]opts.LineData, len(series))
		for i, v := range series {
			if f, ok := v.Get(); ok {
				data[i] = opts.LineData{Value: f}
			} else {
				data[i] = opts.LineData{Value: missingPoint}
			}
		}
		line.AddSeries(category, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{
		ConnectNulls: opts.Bool(false),
		ShowSymbol:   opts.Bool(false),
	}))

	return newSnippet(id, title, line.RenderSnippet()), nil
}
