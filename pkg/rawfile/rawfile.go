// Package rawfile reads and writes simulator raw result files.
//
// A raw file is a textual header followed by a data section that is either
// line-oriented ASCII ("Values:") or packed little-endian doubles ("Binary:").
package rawfile

import (
	"fmt"
	"strings"
)

type Format int

const (
	ASCII Format = iota
	Binary
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	default:
		return "ascii"
	}
}

// ParseFormat accepts "ascii" or "binary" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary", "":
		return Binary, nil
	case "ascii":
		return ASCII, nil
	default:
		return ASCII, fmt.Errorf("unknown raw file encoding: %s", s)
	}
}

type Variable struct {
	Index int
	Name  string
	Kind  string
}

type Header struct {
	Title         string
	Date          string
	Plotname      string
	Flags         string
	VariableCount int
	PointCount    int
	Complex       bool
	Variables     []Variable // column order of the data section
}

// Series is the plottable result of a decode.
type Series struct {
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	PlotTitle string    `json:"plot_title"`
	XLabel    string    `json:"x_label"`
	YLabel    string    `json:"y_label"`
}

// Labels are the caller supplied fallbacks used when the file does not
// provide better ones.
type Labels struct {
	Title string
	X     string
	Y     string
}

func NewSeries(defaults Labels) *Series {
	return &Series{
		X:         []float64{},
		Y:         []float64{},
		PlotTitle: defaults.Title,
		XLabel:    defaults.X,
		YLabel:    defaults.Y,
	}
}

func (s *Series) Len() int {
	return len(s.X)
}
