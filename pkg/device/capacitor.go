package device

import (
	"math"

	"github.com/edp1096/spiceplot/pkg/matrix"
)

type Capacitor struct {
	BaseDevice
	IC       float64 // initial voltage with uic
	voltage0 float64 // voltage at the last accepted time point
}

var _ TimeDependent = (*Capacitor)(nil)

func NewCapacitor(name string, nodeNames []string, value float64) *Capacitor {
	return &Capacitor{BaseDevice: NewBaseDevice(name, value, nodeNames)}
}

func (c *Capacitor) GetType() string { return "C" }

func (c *Capacitor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := c.Nodes[0], c.Nodes[1]

	switch status.Mode {
	case ACAnalysis:
		omega := 2 * math.Pi * status.Frequency
		stampAdmittance(matrix, n1, n2, complex(0, omega*c.Value)) // C * jω

	case OperatingPointAnalysis:
		// Open circuit, gmin keeps the node from floating
		gmin := max(status.Gmin, 1e-12)
		stampConductance(matrix, n1, n2, gmin)

	case TransientAnalysis:
		// Backward Euler companion: geq in parallel with a current source
		geq := c.Value / status.TimeStep
		ceq := geq * c.voltage0

		stampConductance(matrix, n1, n2, geq)
		if n1 != 0 {
			matrix.AddRHS(n1, ceq)
		}
		if n2 != 0 {
			matrix.AddRHS(n2, -ceq)
		}
	}

	return nil
}

func (c *Capacitor) UpdateState(solution []float64, status *CircuitStatus) {
	c.voltage0 = branchVoltage(solution, c.Nodes[0], c.Nodes[1])
}

// InitState applies the initial condition before the first time step.
func (c *Capacitor) InitState() {
	c.voltage0 = c.IC
}

func (c *Capacitor) Voltage() float64 {
	return c.voltage0
}
