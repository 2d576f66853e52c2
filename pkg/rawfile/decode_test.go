package rawfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
)

var testLabels = Labels{Title: "Simulation Results", X: "Frequency (Hz)", Y: "Magnitude"}

func writeRaw(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "output.raw")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing raw file: %v", err)
	}
	return path
}

func encodePlot(t *testing.T, p *Plot, format Format) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, p, format); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return buf.Bytes()
}

func assertFloats(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("%s[%d] = %g, want %g", name, i, got[i], want[i])
		}
	}
}

const asciiTransient = `Title: rc step
Date: Thu Jan  1 00:00:00 2026
Plotname: Transient Analysis
Flags: real
No. Variables: 2
No. Points: 3
Variables:
	0	time	time
	1	v(1)	voltage
Values:
0	1.0
1	2.0
0	2.0
1	4.0
0	3.0
1	6.0
`

func TestDecodeASCII(t *testing.T) {
	s := Decode(writeRaw(t, []byte(asciiTransient)), testLabels)

	assertFloats(t, "x", s.X, []float64{1, 2, 3})
	assertFloats(t, "y", s.Y, []float64{2, 4, 6})
	if s.PlotTitle != "rc step" {
		t.Errorf("PlotTitle = %q, want %q", s.PlotTitle, "rc step")
	}
	if s.XLabel != "Time (s)" || s.YLabel != "Voltage (V)" {
		t.Errorf("labels = %q/%q, want Time (s)/Voltage (V)", s.XLabel, s.YLabel)
	}
}

func TestDecodeASCIISkipsMalformedLines(t *testing.T) {
	raw := `Title: sweep
No. Variables: 2
No. Points: 2
Variables:
	0	v-sweep	voltage
	1	v(1)	voltage
Values:
0	1.0
garbage line here
1	not-a-number
1	2.0

0	2.0 extra
0	3.0
1	4.0
`
	s := Decode(writeRaw(t, []byte(raw)), testLabels)

	assertFloats(t, "x", s.X, []float64{1, 3})
	assertFloats(t, "y", s.Y, []float64{2, 4})
}

func TestDecodeASCIIDecibels(t *testing.T) {
	raw := `Title: AC Analysis
No. Variables: 2
No. Points: 2
Variables:
	0	frequency	frequency
	1	v(2)	voltage
Values:
0	100
1	10.0
0	1000
1	-3.0
`
	s := Decode(writeRaw(t, []byte(raw)), testLabels)

	// non-positive magnitudes are left alone
	assertFloats(t, "y", s.Y, []float64{20, -3})
	if s.XLabel != "Frequency (Hz)" || s.YLabel != "Magnitude (dB)" {
		t.Errorf("labels = %q/%q, want Frequency (Hz)/Magnitude (dB)", s.XLabel, s.YLabel)
	}
}

func TestDecodeBinaryTruncated(t *testing.T) {
	p := &Plot{
		Title: "rc step",
		Name:  "Transient Analysis",
		Variables: []Variable{
			{0, "time", "time"},
			{1, "v(1)", "voltage"},
			{2, "v(2)", "voltage"},
		},
	}
	for i := 1; i <= 4; i++ {
		f := float64(i)
		p.AddPoint(complex(f, 0), complex(10*f, 0), complex(100*f, 0))
	}

	data := encodePlot(t, p, Binary)
	s := Decode(writeRaw(t, data[:len(data)-1]), testLabels)

	assertFloats(t, "x", s.X, []float64{1, 2, 3})
	assertFloats(t, "y", s.Y, []float64{100, 200, 300})
}

// packDoubles lays values out as little-endian IEEE 754 doubles, the
// encoding ngspice writes after "Binary:".
func packDoubles(values ...float64) []byte {
	buf := make([]byte, 8*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

const binaryHeader = "Title: rc step\n" +
	"Plotname: Transient Analysis\n" +
	"Flags: real\n" +
	"No. Variables: 3\n" +
	"No. Points: %s\n" +
	"Variables:\n" +
	"\t0\ttime\ttime\n" +
	"\t1\tv(1)\tvoltage\n" +
	"\t2\tv(2)\tvoltage\n" +
	"Binary:\n"

func TestDecodeBinaryLittleEndianFixture(t *testing.T) {
	data := []byte(fmt.Sprintf(binaryHeader, "2"))
	data = append(data, packDoubles(0, 1, 0.5, 1e-3, 1, 0.25)...)

	s := Decode(writeRaw(t, data), testLabels)

	assertFloats(t, "x", s.X, []float64{0, 1e-3})
	assertFloats(t, "y", s.Y, []float64{0.5, 0.25})
	if s.XLabel != "Time (s)" {
		t.Errorf("XLabel = %q, want Time (s)", s.XLabel)
	}
}

func TestDecodeBinaryOverstatedPointCount(t *testing.T) {
	tests := []struct {
		name   string
		points string
		body   []byte
		wantX  []float64
	}{
		{"one record", "1000000000000", packDoubles(1, 2, 3), []float64{1}},
		{"no records", "1000000000000", nil, []float64{}},
		{"max int", "9223372036854775807", packDoubles(1, 2, 3, 4, 5, 6), []float64{1, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte(fmt.Sprintf(binaryHeader, tt.points)), tt.body...)
			s := Decode(writeRaw(t, data), testLabels)
			assertFloats(t, "x", s.X, tt.wantX)
			if len(s.Y) != len(tt.wantX) {
				t.Errorf("len(Y) = %d, want %d", len(s.Y), len(tt.wantX))
			}
		})
	}
}

func TestDecodeBinaryComplexMagnitude(t *testing.T) {
	p := &Plot{
		Title:   "rc filter",
		Name:    "AC Analysis",
		Complex: true,
		Variables: []Variable{
			{0, "frequency", "frequency"},
			{1, "v(1)", "voltage"},
			{2, "v(2)", "voltage"},
		},
	}
	p.AddPoint(complex(1000, 0), complex(1, 1), complex(3, 4))

	s := Decode(writeRaw(t, encodePlot(t, p, Binary)), testLabels)

	assertFloats(t, "x", s.X, []float64{1000})
	assertFloats(t, "y", s.Y, []float64{5})
	if s.YLabel != "Magnitude (V)" {
		t.Errorf("YLabel = %q, want Magnitude (V)", s.YLabel)
	}
}

func TestDecodeBinaryDecibels(t *testing.T) {
	p := &Plot{
		Title:   "AC sweep",
		Name:    "AC Analysis",
		Complex: true,
		Variables: []Variable{
			{0, "frequency", "frequency"},
			{1, "v(in)", "voltage"},
			{2, "v(out)", "voltage"},
		},
	}
	p.AddPoint(complex(10, 0), complex(1, 0), complex(0, 100))

	s := Decode(writeRaw(t, encodePlot(t, p, Binary)), testLabels)

	assertFloats(t, "y", s.Y, []float64{40})
	if s.YLabel != "v(in)" {
		t.Errorf("YLabel = %q, want the descriptive variable name v(in)", s.YLabel)
	}
}

// The binary path plots variable 2 and the ASCII path variable 1.
func TestDecodeYColumnPerFormat(t *testing.T) {
	p := &Plot{
		Title: "divider",
		Name:  "DC transfer characteristic",
		Variables: []Variable{
			{0, "v-sweep", "voltage"},
			{1, "v(a)", "voltage"},
			{2, "v(b)", "voltage"},
		},
	}
	p.AddPoint(1, 2, 3)

	tests := []struct {
		name   string
		format Format
		wantY  float64
	}{
		{"binary", Binary, 3},
		{"ascii", ASCII, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Decode(writeRaw(t, encodePlot(t, p, tt.format)), testLabels)
			assertFloats(t, "x", s.X, []float64{1})
			assertFloats(t, "y", s.Y, []float64{tt.wantY})
		})
	}
}

func TestDecodeFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"absent path", func(t *testing.T) string { return "" }},
		{"missing file", func(t *testing.T) string { return filepath.Join(t.TempDir(), "none.raw") }},
		{"bad variable count", func(t *testing.T) string {
			return writeRaw(t, []byte("Title: x\nNo. Variables: two\nValues:\n0 1\n"))
		}},
		{"short variable table", func(t *testing.T) string {
			return writeRaw(t, []byte("Title: x\nNo. Variables: 3\nVariables:\n\t0\ttime\ttime\nValues:\n0 1\n"))
		}},
		{"no data marker", func(t *testing.T) string {
			return writeRaw(t, []byte("Title: x\nNo. Variables: 1\n"))
		}},
		{"empty file", func(t *testing.T) string { return writeRaw(t, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Decode(tt.path(t), testLabels)
			if s.Len() != 0 || len(s.Y) != 0 {
				t.Errorf("got %d points, want none", s.Len())
			}
			if s.X == nil || s.Y == nil {
				t.Error("series slices must be empty, not nil")
			}
			if s.PlotTitle != testLabels.Title || s.XLabel != testLabels.X || s.YLabel != testLabels.Y {
				t.Errorf("labels = %q/%q/%q, want defaults", s.PlotTitle, s.XLabel, s.YLabel)
			}
		})
	}
}

func TestDecodeKeepsDefaultTitleWithoutTitleLine(t *testing.T) {
	raw := "No. Variables: 2\nNo. Points: 1\nVariables:\n\t0\tindex\tnotype\n\t1\tv(1)\tvoltage\nValues:\n0 1\n1 2\n"
	s := Decode(writeRaw(t, []byte(raw)), testLabels)

	if s.PlotTitle != testLabels.Title {
		t.Errorf("PlotTitle = %q, want %q", s.PlotTitle, testLabels.Title)
	}
	if s.XLabel != testLabels.X || s.YLabel != testLabels.Y {
		t.Errorf("labels = %q/%q, want defaults", s.XLabel, s.YLabel)
	}
	assertFloats(t, "y", s.Y, []float64{2})
}

func TestReadHeader(t *testing.T) {
	f, err := Read(bytes.NewReader([]byte(asciiTransient)))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	h := f.Header
	if f.Format != ASCII {
		t.Errorf("Format = %v, want ascii", f.Format)
	}
	if h.VariableCount != 2 || h.PointCount != 3 || h.Complex {
		t.Errorf("header = %+v", h)
	}
	if h.Plotname != "Transient Analysis" || h.Flags != "real" {
		t.Errorf("Plotname/Flags = %q/%q", h.Plotname, h.Flags)
	}
	want := []Variable{{0, "time", "time"}, {1, "v(1)", "voltage"}}
	for i, v := range want {
		if h.Variables[i] != v {
			t.Errorf("Variables[%d] = %+v, want %+v", i, h.Variables[i], v)
		}
	}
}
