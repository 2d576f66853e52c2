package device

import (
	"fmt"

	"github.com/edp1096/spiceplot/internal/consts"
	"github.com/edp1096/spiceplot/pkg/matrix"
)

type Resistor struct {
	BaseDevice
	Tc1  float64
	Tc2  float64
	Tnom float64
}

func NewResistor(name string, nodeNames []string, value float64) *Resistor {
	return &Resistor{
		BaseDevice: NewBaseDevice(name, value, nodeNames),
		Tnom:       consts.TNOM,
	}
}

func (r *Resistor) GetType() string { return "R" }

func (r *Resistor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	if len(r.Nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name)
	}

	resistance := r.temperatureAdjustedValue(status.Temp)
	if resistance == 0 {
		return fmt.Errorf("resistor %s: zero resistance", r.Name)
	}

	n1, n2 := r.Nodes[0], r.Nodes[1]
	g := 1.0 / resistance // Conductance. G = 1/R

	if status.Mode == ACAnalysis {
		stampAdmittance(matrix, n1, n2, complex(g, 0))
		return nil
	}
	stampConductance(matrix, n1, n2, g)

	return nil
}

// Current through the resistor from node 1 to node 2.
func (r *Resistor) Current(solution []float64, temp float64) float64 {
	return branchVoltage(solution, r.Nodes[0], r.Nodes[1]) / r.temperatureAdjustedValue(temp)
}

func (r *Resistor) temperatureAdjustedValue(temp float64) float64 {
	if temp == 0 {
		temp = r.Tnom
	}
	dt := temp - r.Tnom
	factor := 1.0 + r.Tc1*dt + r.Tc2*dt*dt
	return r.Value * factor
}
