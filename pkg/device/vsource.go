package device

import (
	"github.com/edp1096/spiceplot/pkg/matrix"
)

type VoltageSource struct {
	BaseDevice
	Waveform  *Waveform
	branchIdx int // Branch index for MNA
}

var _ BranchDevice = (*VoltageSource)(nil)

func NewVoltageSource(name string, nodeNames []string, waveform *Waveform) *VoltageSource {
	if waveform == nil {
		waveform = NewDCWaveform(0)
	}
	return &VoltageSource{
		BaseDevice: NewBaseDevice(name, waveform.Value(0), nodeNames),
		Waveform:   waveform,
	}
}

func NewDCVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return NewVoltageSource(name, nodeNames, NewDCWaveform(value))
}

func (v *VoltageSource) GetType() string { return "V" }

func (v *VoltageSource) GetVoltage(t float64) float64 {
	return v.Waveform.Value(t)
}

func (v *VoltageSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := v.Nodes[0], v.Nodes[1]
	bIdx := v.branchIdx

	// v1 - v2 = V
	if status.Mode == ACAnalysis {
		stampBranch(matrix, n1, n2, bIdx, true)
		phasor := v.Waveform.Phasor()
		matrix.AddComplexRHS(bIdx, real(phasor), imag(phasor))
		return nil
	}

	stampBranch(matrix, n1, n2, bIdx, false)
	matrix.AddRHS(bIdx, v.GetVoltage(status.Time))
	return nil
}

func (v *VoltageSource) BranchIndex() int {
	return v.branchIdx
}

func (v *VoltageSource) SetBranchIndex(idx int) {
	v.branchIdx = idx
}

// SetValue turns the source into a DC source of value, keeping its AC part.
// DC sweeps step sources through it.
func (v *VoltageSource) SetValue(value float64) {
	w := *v.Waveform
	w.Type, w.DC = DC, value
	v.Waveform = &w
	v.Value = value
}
