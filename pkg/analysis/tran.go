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

// Transient integrates with backward Euler at a fixed step of
// min(tstep, tmax). Points before tstart are computed but not stored.
type Transient struct {
	BaseAnalysis
	startTime float64
	stopTime  float64
	timeStep  float64
	maxStep   float64
	useUIC    bool
}

func NewTransient(tStart, tStop, tStep, tMax float64, uic bool) *Transient {
	if tMax == 0 {
		tMax = tStep
	}

	return &Transient{
		startTime: tStart,
		stopTime:  tStop,
		timeStep:  tStep,
		maxStep:   tMax,
		useUIC:    uic,
	}
}

func (tr *Transient) Setup(ckt *circuit.Circuit) error {
	tr.Circuit = ckt

	if tr.timeStep <= 0 || tr.stopTime <= 0 {
		return fmt.Errorf("transient: tstep and tstop must be positive")
	}
	if err := checkPoints(sweepCount(tr.stopTime/tr.step(), 1)); err != nil {
		return fmt.Errorf("transient: %v", err)
	}

	if tr.useUIC {
		// A vanishing first step pins capacitors and inductors to their
		// initial conditions.
		ckt.InitState()
		return tr.solveAt(0, tr.step()*1e-9)
	}

	if err := solveOperatingPoint(ckt); err != nil {
		return fmt.Errorf("transient: %v", err)
	}
	ckt.Accept()
	return nil
}

func (tr *Transient) step() float64 {
	return math.Min(tr.timeStep, tr.maxStep)
}

func (tr *Transient) solveAt(t, dt float64) error {
	status := &device.CircuitStatus{
		Time:     t,
		TimeStep: dt,
		Mode:     device.TransientAnalysis,
		Temp:     consts.TNOM,
		Gmin:     consts.GMIN,
		UIC:      tr.useUIC,
	}
	if err := tr.Circuit.Solve(status); err != nil {
		return fmt.Errorf("transient: t=%g: %v", t, err)
	}
	tr.Circuit.Accept()
	return nil
}

func (tr *Transient) Execute(ctx context.Context) error {
	if tr.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	tr.newPlot(PlotTransient, false, &rawfile.Variable{Index: 0, Name: "time", Kind: "time"})

	h := tr.step()
	n := int(math.Ceil(tr.stopTime/h - sweepEps))

	t := 0.0
	if tr.startTime == 0 {
		tr.storeRealPoint([]float64{t}, tr.Circuit.Values())
	}

	for k := 1; k <= n; k++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("transient: %v", err)
		}

		next := math.Min(float64(k)*h, tr.stopTime)
		if err := tr.solveAt(next, next-t); err != nil {
			return err
		}
		t = next

		if t >= tr.startTime-h*sweepEps {
			tr.storeRealPoint([]float64{t}, tr.Circuit.Values())
		}
	}

	return nil
}
