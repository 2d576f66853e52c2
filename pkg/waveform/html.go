package waveform

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/edp1096/spiceplot/pkg/rawfile"
)

// RenderHTML writes s as an interactive line chart page.
func RenderHTML(w io.Writer, s *rawfile.Series) error {
	xType := "value"
	if LogX(s) {
		xType = "log"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: s.PlotTitle,
			Theme:     types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    s.PlotTitle,
			Subtitle: s.YLabel,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:  s.XLabel,
			Type:  xType,
			Scale: opts.Bool(true),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:  s.YLabel,
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(false),
	)

	data := make([]opts.LineData, s.Len())
	for i := range s.X {
		data[i] = opts.LineData{Value: []float64{s.X[i], s.Y[i]}}
	}
	line.AddSeries(s.YLabel, data, charts.WithLineChartOpts(opts.LineChart{
		ShowSymbol: opts.Bool(false),
	}))

	return line.Render(w)
}
