// Package waveform renders decoded simulation series as charts.
package waveform

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/spiceplot/pkg/rawfile"
)

var ErrEmptySeries = errors.New("waveform: series has no points")

// Default image size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var contentTypes = map[string]string{
	"png":  "image/png",
	"svg":  "image/svg+xml",
	"pdf":  "application/pdf",
	"html": "text/html; charset=utf-8",
}

// ContentType of a render format, empty when the format is unknown.
func ContentType(format string) string {
	return contentTypes[strings.ToLower(format)]
}

// LogX reports whether s reads better on a logarithmic x axis: a frequency
// sweep with strictly positive abscissae.
func LogX(s *rawfile.Series) bool {
	if s.Len() == 0 || !strings.Contains(strings.ToLower(s.XLabel), "frequency") {
		return false
	}
	return floats.Min(s.X) > 0
}

// RenderImage draws s as a line plot in format png, svg or pdf.
func RenderImage(w io.Writer, s *rawfile.Series, format string, width, height vg.Length) error {
	format = strings.ToLower(format)
	if format == "html" || ContentType(format) == "" {
		return fmt.Errorf("waveform: unsupported image format %q", format)
	}
	if s.Len() == 0 {
		return ErrEmptySeries
	}

	p := plot.New()
	p.Title.Text = s.PlotTitle
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, 0, s.Len())
	for i := range s.X {
		if math.IsNaN(s.Y[i]) || math.IsInf(s.Y[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: s.X[i], Y: s.Y[i]})
	}
	if len(pts) == 0 {
		return ErrEmptySeries
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("waveform: %v", err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)

	if LogX(s) {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("waveform: %v", err)
	}
	_, err = wt.WriteTo(w)
	return err
}
