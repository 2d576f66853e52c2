package device

import (
	"fmt"
	"math"
	"math/cmplx"
)

type SourceType int

const (
	DC SourceType = iota
	SIN
	PULSE
	PWL
)

func (s SourceType) String() string {
	switch s {
	case SIN:
		return "sin"
	case PULSE:
		return "pulse"
	case PWL:
		return "pwl"
	default:
		return "dc"
	}
}

// Waveform is the value of an independent source over time plus its AC
// small-signal phasor.
type Waveform struct {
	Type SourceType
	// DC value, SIN offset
	DC float64
	// SIN params
	Amplitude float64
	Freq      float64
	Delay     float64 // SIN and PULSE delay
	Damping   float64
	Phase     float64 // degree
	// PULSE params
	V1     float64
	V2     float64
	Rise   float64
	Fall   float64
	PWidth float64
	Period float64
	// PWL params
	Times  []float64
	Values []float64
	// AC params
	ACMag   float64
	ACPhase float64 // degree
}

func NewDCWaveform(value float64) *Waveform {
	return &Waveform{Type: DC, DC: value}
}

// NewSinWaveform takes VO VA [FREQ [TD [THETA [PHASE]]]].
func NewSinWaveform(params []float64) (*Waveform, error) {
	if len(params) < 2 || len(params) > 6 {
		return nil, fmt.Errorf("SIN needs 2 to 6 parameters, got %d", len(params))
	}
	p := padded(params, 6)
	return &Waveform{
		Type:      SIN,
		DC:        p[0],
		Amplitude: p[1],
		Freq:      p[2],
		Delay:     p[3],
		Damping:   p[4],
		Phase:     p[5],
	}, nil
}

// NewPulseWaveform takes V1 V2 [TD [TR [TF [PW [PER]]]]].
func NewPulseWaveform(params []float64) (*Waveform, error) {
	if len(params) < 2 || len(params) > 7 {
		return nil, fmt.Errorf("PULSE needs 2 to 7 parameters, got %d", len(params))
	}
	p := padded(params, 7)
	w := &Waveform{
		Type:   PULSE,
		DC:     p[0],
		V1:     p[0],
		V2:     p[1],
		Delay:  p[2],
		Rise:   p[3],
		Fall:   p[4],
		PWidth: p[5],
		Period: p[6],
	}
	if w.Rise < 0 || w.Fall < 0 || w.PWidth < 0 || w.Period < 0 {
		return nil, fmt.Errorf("PULSE times must not be negative")
	}
	return w, nil
}

// NewPWLWaveform takes time-value pairs with strictly increasing times.
func NewPWLWaveform(params []float64) (*Waveform, error) {
	if len(params) < 2 || len(params)%2 != 0 {
		return nil, fmt.Errorf("PWL needs time-value pairs, got %d values", len(params))
	}

	n := len(params) / 2
	w := &Waveform{Type: PWL, Times: make([]float64, n), Values: make([]float64, n)}
	for i := range n {
		w.Times[i], w.Values[i] = params[2*i], params[2*i+1]
		if i > 0 && w.Times[i] <= w.Times[i-1] {
			return nil, fmt.Errorf("PWL time points must be strictly increasing")
		}
	}
	w.DC = w.Values[0]
	return w, nil
}

func padded(params []float64, n int) []float64 {
	p := make([]float64, n)
	copy(p, params)
	return p
}

// Value at time t. The operating point uses t = 0.
func (w *Waveform) Value(t float64) float64 {
	switch w.Type {
	case SIN:
		return w.sinValue(t)
	case PULSE:
		return w.pulseValue(t)
	case PWL:
		return w.pwlValue(t)
	default:
		return w.DC
	}
}

// Phasor is the AC stimulus, zero for sources without an AC part.
func (w *Waveform) Phasor() complex128 {
	return cmplx.Rect(w.ACMag, w.ACPhase*math.Pi/180.0)
}

func (w *Waveform) sinValue(t float64) float64 {
	phaseRad := w.Phase * math.Pi / 180.0
	if t < w.Delay {
		return w.DC + w.Amplitude*math.Sin(phaseRad)
	}

	td := t - w.Delay
	damping := math.Exp(-td * w.Damping)
	return w.DC + w.Amplitude*damping*math.Sin(2.0*math.Pi*w.Freq*td+phaseRad)
}

func (w *Waveform) pulseValue(t float64) float64 {
	if t < w.Delay {
		return w.V1
	}

	t = t - w.Delay
	if w.Period > 0 {
		t = math.Mod(t, w.Period)
	}

	if t < w.Rise {
		return w.V1 + (w.V2-w.V1)*t/w.Rise
	}

	if t < w.Rise+w.PWidth {
		return w.V2
	}

	fallStart := w.Rise + w.PWidth
	if t < fallStart+w.Fall {
		return w.V2 - (w.V2-w.V1)*(t-fallStart)/w.Fall
	}

	if w.PWidth == 0 && w.Fall == 0 && w.Period == 0 {
		// step
		return w.V2
	}
	return w.V1
}

func (w *Waveform) pwlValue(t float64) float64 {
	if t <= w.Times[0] {
		return w.Values[0]
	}

	last := len(w.Times) - 1
	if t >= w.Times[last] {
		return w.Values[last]
	}

	for i := 1; i <= last; i++ {
		if t <= w.Times[i] {
			t1, t2 := w.Times[i-1], w.Times[i]
			v1, v2 := w.Values[i-1], w.Values[i]
			return v1 + (v2-v1)*(t-t1)/(t2-t1)
		}
	}

	return w.Values[last]
}
