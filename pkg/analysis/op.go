package analysis

import (
	"context"
	"fmt"

	"github.com/edp1096/spiceplot/pkg/circuit"
)

type OperatingPoint struct{ BaseAnalysis }

func NewOP() *OperatingPoint {
	return &OperatingPoint{}
}

func (op *OperatingPoint) Setup(ckt *circuit.Circuit) error {
	op.Circuit = ckt
	return nil
}

func (op *OperatingPoint) Execute(ctx context.Context) error {
	if op.Circuit == nil {
		return fmt.Errorf("circuit not set")
	}

	if err := solveOperatingPoint(op.Circuit); err != nil {
		return err
	}

	op.newPlot(PlotOperatingPoint, false, nil)
	op.storeRealPoint(nil, op.Circuit.Values())

	return nil
}
