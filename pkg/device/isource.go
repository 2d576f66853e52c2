package device

import (
	"github.com/edp1096/spiceplot/pkg/matrix"
)

// CurrentSource drives its current from node 1 through the source to node 2.
type CurrentSource struct {
	BaseDevice
	Waveform *Waveform
}

func NewCurrentSource(name string, nodeNames []string, waveform *Waveform) *CurrentSource {
	if waveform == nil {
		waveform = NewDCWaveform(0)
	}
	return &CurrentSource{
		BaseDevice: NewBaseDevice(name, waveform.Value(0), nodeNames),
		Waveform:   waveform,
	}
}

func NewDCCurrentSource(name string, nodeNames []string, value float64) *CurrentSource {
	return NewCurrentSource(name, nodeNames, NewDCWaveform(value))
}

func (i *CurrentSource) GetType() string { return "I" }

func (i *CurrentSource) GetCurrent(t float64) float64 {
	return i.Waveform.Value(t)
}

func (i *CurrentSource) Stamp(matrix matrix.DeviceMatrix, status *CircuitStatus) error {
	n1, n2 := i.Nodes[0], i.Nodes[1]

	if status.Mode == ACAnalysis {
		phasor := i.Waveform.Phasor()
		if n1 != 0 {
			matrix.AddComplexRHS(n1, -real(phasor), -imag(phasor))
		}
		if n2 != 0 {
			matrix.AddComplexRHS(n2, real(phasor), imag(phasor))
		}
		return nil
	}

	current := i.GetCurrent(status.Time)
	if n1 != 0 {
		matrix.AddRHS(n1, -current)
	}
	if n2 != 0 {
		matrix.AddRHS(n2, current)
	}
	return nil
}

func (i *CurrentSource) SetValue(value float64) {
	w := *i.Waveform
	w.Type, w.DC = DC, value
	i.Waveform = &w
	i.Value = value
}
