package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edp1096/spiceplot/internal/consts"
	"github.com/edp1096/spiceplot/pkg/circuit"
	"github.com/edp1096/spiceplot/pkg/device"
	"github.com/edp1096/spiceplot/pkg/netlist"
	"github.com/edp1096/spiceplot/pkg/rawfile"
)

// Plot names as ngspice writes them.
const (
	PlotOperatingPoint = "Operating Point"
	PlotTransient      = "Transient Analysis"
	PlotAC             = "AC Analysis"
	PlotDC             = "DC transfer characteristic"
)

// maxPoints bounds the size of a single result.
const maxPoints = 1_000_000

type Analysis interface {
	Setup(ckt *circuit.Circuit) error
	Execute(ctx context.Context) error
	Results() *rawfile.Plot
}

type BaseAnalysis struct {
	Circuit *circuit.Circuit
	plot    *rawfile.Plot
}

// New returns the analysis for a parsed directive.
func New(a netlist.Analysis) (Analysis, error) {
	switch a.Type {
	case netlist.AnalysisOP:
		return NewOP(), nil
	case netlist.AnalysisTRAN:
		p := a.Tran
		return NewTransient(p.TStart, p.TStop, p.TStep, p.TMax, p.UIC), nil
	case netlist.AnalysisAC:
		p := a.AC
		return NewAC(p.FStart, p.FStop, p.Points, p.Sweep), nil
	case netlist.AnalysisDC:
		p := a.DC
		return NewDCSweep(p.Source, p.Start, p.Stop, p.Increment), nil
	}
	return nil, fmt.Errorf("unsupported analysis type: %v", a.Type)
}

// Run sets up and executes a on ckt.
func Run(ctx context.Context, ckt *circuit.Circuit, a Analysis) (*rawfile.Plot, error) {
	if err := a.Setup(ckt); err != nil {
		return nil, err
	}
	if err := a.Execute(ctx); err != nil {
		return nil, err
	}
	return a.Results(), nil
}

func (a *BaseAnalysis) Results() *rawfile.Plot {
	return a.plot
}

// newPlot starts a result with an optional scale variable followed by the
// circuit variables.
func (a *BaseAnalysis) newPlot(name string, isComplex bool, scale *rawfile.Variable) {
	p := &rawfile.Plot{
		Title:   a.Circuit.Name(),
		Date:    time.Now().Format(time.ANSIC),
		Name:    name,
		Complex: isComplex,
	}
	if scale != nil {
		p.Variables = append(p.Variables, *scale)
	}
	for _, name := range a.Circuit.VariableNames() {
		kind := "voltage"
		if strings.HasPrefix(name, "i(") {
			kind = "current"
		}
		p.Variables = append(p.Variables, rawfile.Variable{Index: len(p.Variables), Name: name, Kind: kind})
	}
	a.plot = p
}

func (a *BaseAnalysis) storeRealPoint(scale []float64, values []float64) {
	row := make([]complex128, 0, len(scale)+len(values))
	for _, v := range scale {
		row = append(row, complex(v, 0))
	}
	for _, v := range values {
		row = append(row, complex(v, 0))
	}
	a.plot.AddPoint(row...)
}

func (a *BaseAnalysis) storeComplexPoint(scale float64, values []complex128) {
	row := make([]complex128, 0, 1+len(values))
	row = append(row, complex(scale, 0))
	row = append(row, values...)
	a.plot.AddPoint(row...)
}

// solveOperatingPoint solves the DC operating point of ckt.
func solveOperatingPoint(ckt *circuit.Circuit) error {
	status := &device.CircuitStatus{
		Mode: device.OperatingPointAnalysis,
		Temp: consts.TNOM,
		Gmin: consts.GMIN,
	}
	if err := ckt.Solve(status); err != nil {
		return fmt.Errorf("operating point: %v", err)
	}
	return nil
}

func checkPoints(n int) error {
	if n > maxPoints {
		return fmt.Errorf("%d points exceed the limit of %d", n, maxPoints)
	}
	return nil
}
