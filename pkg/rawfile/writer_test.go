package rawfile

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeRejects(t *testing.T) {
	vars := []Variable{{0, "frequency", "frequency"}, {1, "v(1)", "voltage"}}

	tests := []struct {
		name   string
		plot   *Plot
		format Format
	}{
		{"complex as ascii", &Plot{Complex: true, Variables: vars}, ASCII},
		{"short row", &Plot{Variables: vars, Points: [][]complex128{{1}}}, Binary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, tt.plot, tt.format); err == nil {
				t.Fatal("Encode() error = nil, want error")
			}
		})
	}

	var buf bytes.Buffer
	err := Encode(&buf, &Plot{Complex: true, Variables: vars}, ASCII)
	if !errors.Is(err, ErrComplexASCII) {
		t.Errorf("Encode() error = %v, want ErrComplexASCII", err)
	}
}

func TestWriteFileHeader(t *testing.T) {
	p := &Plot{
		Title:   "lowpass",
		Date:    "Mon Oct 19 10:00:00 2026",
		Name:    "AC Analysis",
		Complex: true,
		Variables: []Variable{
			{0, "frequency", "frequency"},
			{1, "v(in)", "voltage"},
			{2, "v(out)", "voltage"},
		},
	}
	p.AddPoint(1, 1, complex(0.5, -0.5))
	p.AddPoint(10, 1, complex(0.1, -0.3))

	path := filepath.Join(t.TempDir(), "lowpass.raw")
	if err := WriteFile(path, p, Binary); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := Decode(path, Labels{})
	if s.Len() != 2 {
		t.Fatalf("decoded %d points, want 2", s.Len())
	}
	if s.PlotTitle != "lowpass" {
		t.Errorf("PlotTitle = %q", s.PlotTitle)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, p, Binary); err != nil {
		t.Fatal(err)
	}
	head := buf.String()[:strings.Index(buf.String(), binaryMarker)]
	for _, want := range []string{
		"Title: lowpass\n",
		"Plotname: AC Analysis\n",
		"Flags: complex\n",
		"No. Variables: 3\n",
		"No. Points: 2\n",
		"\t2\tv(out)\tvoltage\n",
	} {
		if !strings.Contains(head, want) {
			t.Errorf("header missing %q:\n%s", want, head)
		}
	}
}

func TestPlotColumn(t *testing.T) {
	p := &Plot{Variables: []Variable{{0, "time", "time"}, {1, "v(1)", "voltage"}}}
	p.AddPoint(0, 1)
	p.AddPoint(1, 2)

	col := p.Column(1)
	if len(col) != 2 || col[0] != 1 || col[1] != 2 {
		t.Errorf("Column(1) = %v, want [1 2]", col)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"binary", Binary, false},
		{"ASCII", ASCII, false},
		{"", Binary, false},
		{"hex", ASCII, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
