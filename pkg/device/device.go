package device

import (
	"github.com/edp1096/spiceplot/pkg/matrix"
)

type Device interface {
	GetName() string
	GetType() string
	GetNodeNames() []string
	GetNodes() []int
	Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error
	GetValue() float64
	SetNodes(nodes []int)
}

// BranchDevice adds a branch current to the MNA system.
type BranchDevice interface {
	Device
	BranchIndex() int
	SetBranchIndex(idx int)
}

// TimeDependent devices keep state between accepted time points.
type TimeDependent interface {
	UpdateState(solution []float64, status *CircuitStatus)
}

type BaseDevice struct {
	Name      string
	Nodes     []int
	Value     float64
	NodeNames []string
}

type AnalysisMode int

const (
	OperatingPointAnalysis AnalysisMode = iota
	TransientAnalysis
	ACAnalysis
)

type CircuitStatus struct {
	Time      float64
	TimeStep  float64
	Gmin      float64
	Mode      AnalysisMode
	Temp      float64
	Frequency float64 // AC frequency
	UIC       bool    // transient start from initial conditions
}

func (d *BaseDevice) GetName() string {
	return d.Name
}

func (d *BaseDevice) GetNodes() []int {
	return d.Nodes
}

func (d *BaseDevice) GetNodeNames() []string {
	return d.NodeNames
}

func (d *BaseDevice) GetValue() float64 {
	return d.Value
}

func (d *BaseDevice) SetNodes(nodes []int) {
	d.Nodes = nodes
}

func NewBaseDevice(name string, value float64, nodeNames []string) BaseDevice {
	return BaseDevice{
		Name:      name,
		Value:     value,
		NodeNames: nodeNames,
		Nodes:     make([]int, len(nodeNames)),
	}
}

// branchVoltage is v(n1) - v(n2) in solution, ground being 0.
func branchVoltage(solution []float64, n1, n2 int) float64 {
	v1, v2 := 0.0, 0.0
	if n1 > 0 && n1 < len(solution) {
		v1 = solution[n1]
	}
	if n2 > 0 && n2 < len(solution) {
		v2 = solution[n2]
	}
	return v1 - v2
}

// stampConductance stamps g between n1 and n2.
func stampConductance(m matrix.DeviceMatrix, n1, n2 int, g float64) {
	if n1 != 0 {
		m.AddElement(n1, n1, g)
		if n2 != 0 {
			m.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			m.AddElement(n2, n1, -g)
		}
		m.AddElement(n2, n2, g)
	}
}

func stampAdmittance(m matrix.DeviceMatrix, n1, n2 int, y complex128) {
	g, b := real(y), imag(y)
	if n1 != 0 {
		m.AddComplexElement(n1, n1, g, b)
		if n2 != 0 {
			m.AddComplexElement(n1, n2, -g, -b)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			m.AddComplexElement(n2, n1, -g, -b)
		}
		m.AddComplexElement(n2, n2, g, b)
	}
}

// stampBranch stamps the incidence of a branch current flowing from n1
// through the device to n2.
func stampBranch(m matrix.DeviceMatrix, n1, n2, bIdx int, complexMode bool) {
	add := m.AddElement
	if complexMode {
		add = func(i, j int, v float64) { m.AddComplexElement(i, j, v, 0) }
	}
	if n1 != 0 {
		add(n1, bIdx, 1)
		add(bIdx, n1, 1)
	}
	if n2 != 0 {
		add(n2, bIdx, -1)
		add(bIdx, n2, -1)
	}
}
