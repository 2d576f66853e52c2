package device

import (
	"math"

	"github.com/edp1096/spiceplot/pkg/matrix"
)

// Inductor carries its current as an MNA branch unknown, so it is a short
// at the operating point.
type Inductor struct {
	BaseDevice
	IC        float64 // initial current with uic
	current0  float64 // current at the last accepted time point
	branchIdx int
}

var (
	_ TimeDependent = (*Inductor)(nil)
	_ BranchDevice  = (*Inductor)(nil)
)

func NewInductor(name string, nodeNames []string, value float64) *Inductor {
	return &Inductor{BaseDevice: NewBaseDevice(name, value, nodeNames)}
}

func (l *Inductor) GetType() string { return "L" }

func (l *Inductor) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := l.Nodes[0], l.Nodes[1]
	bIdx := l.branchIdx

	switch status.Mode {
	case ACAnalysis:
		// v1 - v2 - jωL·i = 0
		omega := 2 * math.Pi * status.Frequency
		stampBranch(matrix, n1, n2, bIdx, true)
		matrix.AddComplexElement(bIdx, bIdx, 0, -omega*l.Value)

	case TransientAnalysis:
		// v1 - v2 - (L/dt)·i = -(L/dt)·i0
		req := l.Value / status.TimeStep
		stampBranch(matrix, n1, n2, bIdx, false)
		matrix.AddElement(bIdx, bIdx, -req)
		matrix.AddRHS(bIdx, -req*l.current0)

	default:
		// v1 - v2 = 0
		stampBranch(matrix, n1, n2, bIdx, false)
	}

	return nil
}

func (l *Inductor) UpdateState(solution []float64, status *CircuitStatus) {
	if l.branchIdx > 0 && l.branchIdx < len(solution) {
		l.current0 = solution[l.branchIdx]
	}
}

// InitState applies the initial condition before the first time step.
func (l *Inductor) InitState() {
	l.current0 = l.IC
}

func (l *Inductor) Current() float64 {
	return l.current0
}

func (l *Inductor) BranchIndex() int {
	return l.branchIdx
}

func (l *Inductor) SetBranchIndex(idx int) {
	l.branchIdx = idx
}
