// Package chart renders metric series as line charts, either to a PNG file
// or as a standalone HTML page. It operates purely on retrieved series and
// never touches the store.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/exptrack/internal/series"
)

// RenderPNG writes a PNG line chart of the series to outPath. The metric
// name labels the legend entry; steps run along the x axis.
func RenderPNG(s series.Series, title, name, outPath string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "step"
	p.Y.Label.Text = "value"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(s))
	for i, point := range s {
		pts[i] = plotter.XY{X: float64(point.Step), Y: point.Value}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build line for %s: %w", name, err)
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add(name, line)
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 5*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save chart to %s: %w", outPath, err)
	}
	return nil
}

// RenderHTML writes a self-contained HTML page with an echarts line chart of
// the series to w.
func RenderHTML(w io.Writer, title, name string, s series.Series) error {
	steps := make([]int64, len(s))
	data := make([]opts.LineData, len(s))
	for i, point := range s {
		steps[i] = point.Step
		data[i] = opts.LineData{Value: point.Value}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("metric=%s points=%d", name, len(s))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)
	line.SetXAxis(steps).AddSeries(name, data)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart for %s: %w", name, err)
	}
	return nil
}
