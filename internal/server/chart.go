package server

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/betonlab/mixopt/internal/store"
)

// RenderTraceChart writes a self-contained HTML page with the best-fitness
// and cost history of a run as line charts.
func RenderTraceChart(w io.Writer, jobID string, entries []store.TraceEntry) error {
	if len(entries) == 0 {
		return fmt.Errorf("trace is empty for job %s", jobID)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Optimization trace",
			Subtitle: fmt.Sprintf("job %s", jobID),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "generation",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "best fitness",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)

	generations := make([]string, len(entries))
	fitness := make([]opts.LineData, len(entries))
	cost := make([]opts.LineData, len(entries))
	co2 := make([]opts.LineData, len(entries))
	for i, e := range entries {
		generations[i] = fmt.Sprintf("%d", e.Generation)
		fitness[i] = opts.LineData{Value: e.Fitness}
		cost[i] = opts.LineData{Value: e.Cost}
		co2[i] = opts.LineData{Value: e.CO2}
	}

	line.SetXAxis(generations).
		AddSeries("best fitness", fitness).
		AddSeries("cost €/m³", cost).
		AddSeries("CO₂ kg/m³", co2).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(false)}),
		)

	return line.Render(w)
}
