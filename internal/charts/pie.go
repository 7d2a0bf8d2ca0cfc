package charts

import (
	"fmt"

	"gridmix/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// PieSnippet draws a share distribution with percentage labels
func PieSnippet(title string, dist models.ShareDistribution) (ChartSnippet, error) {
	if dist.Len() == 0 {
		return ChartSnippet{}, fmt.Errorf("%w: nothing to plot for %s", models.ErrEmptyResult, title)
	}

	id := ChartID(title)
	pie := charts.NewPie()

	pieData := make([]opts.PieData, 0, dist.Len())
	for _, e := range dist.Entries {
		pieData = append(pieData, opts.PieData{Name: e.Category, Value: e.Value})
	}

	pie.AddSeries(title, pieData).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
		charts.WithPieChartOpts(opts.PieChart{
			Radius: []string{"30%", "65%"},
		}),
	)

	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: id,
			Theme:   types.ThemeWesteros,
			Width:   "100%",
			Height:  "420px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: dist.Period}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "{b}: {c} ({d}%)"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Type: "scroll", Top: "bottom"}),
	)

	return newSnippet(id, title, pie.RenderSnippet()), nil
}
