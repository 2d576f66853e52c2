package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/edp1096/spiceplot/internal/consts"
	"github.com/edp1096/spiceplot/pkg/circuit"
	"github.com/edp1096/spiceplot/pkg/device"
	"github.com/edp1096/spiceplot/pkg/rawfile"
)

type ACAnalysis struct {
	BaseAnalysis
	startFreq   float64
	stopFreq    float64
	numPoints   int    // per decade or octave, total for LIN
	pointsType  string // "DEC", "OCT", "LIN"
	frequencies []float64
}

func NewAC(fStart, fStop float64, nPoints int, pType string) *ACAnalysis {
	return &ACAnalysis{
		startFreq:  fStart,
		stopFreq:   fStop,
		numPoints:  nPoints,
		pointsType: pType,
	}
}

func (ac *ACAnalysis) Setup(ckt *circuit.Circuit) error {
	ac.Circuit = ckt

	if err := ac.generateFrequencyPoints(); err != nil {
		return fmt.Errorf("ac: %v", err)
	}

	if err := solveOperatingPoint(ckt); err != nil {
		return fmt.Errorf("ac: %v", err)
	}

	return nil
}

func (ac *ACAnalysis) Execute(ctx context.Context) error {
	if ac.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	ac.newPlot(PlotAC, true, &rawfile.Variable{Index: 0, Name: "frequency", Kind: "frequency"})

	for _, freq := range ac.frequencies {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("ac: %v", err)
		}

		status := &device.CircuitStatus{
			Frequency: freq,
			Mode:      device.ACAnalysis,
			Temp:      consts.TNOM,
		}
		if err := ac.Circuit.Solve(status); err != nil {
			return fmt.Errorf("ac: f=%g: %v", freq, err)
		}

		ac.storeComplexPoint(freq, ac.Circuit.ComplexValues())
	}

	return nil
}

func (ac *ACAnalysis) generateFrequencyPoints() error {
	if ac.numPoints < 1 {
		return fmt.Errorf("invalid number of points %d", ac.numPoints)
	}
	if ac.stopFreq < ac.startFreq {
		return fmt.Errorf("fstop %g is below fstart %g", ac.stopFreq, ac.startFreq)
	}

	var base float64
	switch ac.pointsType {
	case "DEC": // Decade
		base = 10
	case "OCT": // Octave
		base = 2
	case "LIN": // Linear
		if err := checkPoints(ac.numPoints); err != nil {
			return err
		}
		ac.frequencies = linearPoints(ac.startFreq, ac.stopFreq, ac.numPoints)
		return nil
	default:
		return fmt.Errorf("invalid sweep type %q", ac.pointsType)
	}

	if ac.startFreq <= 0 {
		return fmt.Errorf("fstart must be positive for a logarithmic sweep")
	}
	intervals := math.Log(ac.stopFreq/ac.startFreq) / math.Log(base)
	if err := checkPoints(sweepCount(intervals, float64(ac.numPoints))); err != nil {
		return err
	}
	ac.frequencies = logSweep(ac.startFreq, ac.stopFreq, ac.numPoints, base)

	return nil
}
