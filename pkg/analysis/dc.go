package analysis

import (
	"context"
	"fmt"

	"github.com/edp1096/spiceplot/pkg/circuit"
	"github.com/edp1096/spiceplot/pkg/device"
	"github.com/edp1096/spiceplot/pkg/rawfile"
)

// DCSweep steps the DC value of one independent source and solves the
// operating point at every value.
type DCSweep struct {
	BaseAnalysis
	sourceName string
	startVal   float64
	stopVal    float64
	increment  float64
	sweepVals  []float64
	scale      rawfile.Variable
	setValue   func(float64)
	restore    func()
}

func NewDCSweep(source string, start, stop, increment float64) *DCSweep {
	return &DCSweep{
		sourceName: source,
		startVal:   start,
		stopVal:    stop,
		increment:  increment,
	}
}

func (dc *DCSweep) Setup(ckt *circuit.Circuit) error {
	dc.Circuit = ckt

	if dc.increment == 0 || (dc.stopVal-dc.startVal)*dc.increment < 0 {
		return fmt.Errorf("dc: increment %g does not reach %g from %g", dc.increment, dc.stopVal, dc.startVal)
	}
	if err := checkPoints(sweepCount((dc.stopVal-dc.startVal)/dc.increment, 1)); err != nil {
		return fmt.Errorf("dc: %v", err)
	}

	switch src := ckt.Device(dc.sourceName).(type) {
	case *device.VoltageSource:
		orig := src.Waveform
		dc.setValue = src.SetValue
		dc.restore = func() { src.Waveform, src.Value = orig, orig.Value(0) }
		dc.scale = rawfile.Variable{Index: 0, Name: "v-sweep", Kind: "voltage"}
	case *device.CurrentSource:
		orig := src.Waveform
		dc.setValue = src.SetValue
		dc.restore = func() { src.Waveform, src.Value = orig, orig.Value(0) }
		dc.scale = rawfile.Variable{Index: 0, Name: "i-sweep", Kind: "current"}
	default:
		return fmt.Errorf("dc: source %s not found", dc.sourceName)
	}

	dc.sweepVals = linearSweep(dc.startVal, dc.stopVal, dc.increment)

	return nil
}

func (dc *DCSweep) Execute(ctx context.Context) error {
	if dc.Circuit == nil || dc.setValue == nil {
		return fmt.Errorf("circuit not set")
	}
	defer dc.restore()

	dc.newPlot(PlotDC, false, &dc.scale)

	for _, val := range dc.sweepVals {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("dc: %v", err)
		}

		dc.setValue(val)
		if err := solveOperatingPoint(dc.Circuit); err != nil {
			return fmt.Errorf("dc: %s=%g: %v", dc.sourceName, val, err)
		}

		dc.storeRealPoint([]float64{val}, dc.Circuit.Values())
	}

	return nil
}
