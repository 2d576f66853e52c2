package waveform

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/edp1096/spiceplot/pkg/rawfile"
)

type Summary struct {
	Points int
	XMin   float64
	XMax   float64
	YMin   float64
	YMax   float64
	YMean  float64
	XAtMax float64 // x of the first y maximum
}

// Summarize computes the extents of s.
func Summarize(s *rawfile.Series) (Summary, error) {
	if s.Len() == 0 {
		return Summary{}, ErrEmptySeries
	}
	if len(s.Y) != len(s.X) {
		return Summary{}, fmt.Errorf("waveform: %d x values but %d y values", len(s.X), len(s.Y))
	}

	return Summary{
		Points: s.Len(),
		XMin:   floats.Min(s.X),
		XMax:   floats.Max(s.X),
		YMin:   floats.Min(s.Y),
		YMax:   floats.Max(s.Y),
		YMean:  floats.Sum(s.Y) / float64(len(s.Y)),
		XAtMax: s.X[floats.MaxIdx(s.Y)],
	}, nil
}
