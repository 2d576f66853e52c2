package circuit

import (
	"math"
	"strings"
	"testing"

	"github.com/edp1096/spiceplot/pkg/device"
	"github.com/edp1096/spiceplot/pkg/netlist"
)

func build(t *testing.T, text string) *Circuit {
	t.Helper()

	data, err := netlist.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	ckt, err := Build(data)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(ckt.Destroy)
	return ckt
}

func TestBuildNumbering(t *testing.T) {
	ckt := build(t, "divider\nV1 in GND 10\nR1 in out 1k\nL1 out mid 1m\nR2 mid 0 1k\n.end\n")

	if ckt.Name() != "divider" {
		t.Errorf("Name() = %q", ckt.Name())
	}
	if ckt.GetNumNodes() != 3 || ckt.Size() != 5 {
		t.Fatalf("nodes = %d, size = %d, want 3 and 5", ckt.GetNumNodes(), ckt.Size())
	}

	want := []string{"v(in)", "v(out)", "v(mid)", "i(v1)", "i(l1)"}
	got := ckt.VariableNames()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("VariableNames() = %v, want %v", got, want)
	}

	if idx := ckt.GetBranchMap()["l1"]; idx != 5 {
		t.Errorf("branch of L1 = %d, want 5", idx)
	}
	l, ok := ckt.Device("l1").(*device.Inductor)
	if !ok || l.BranchIndex() != 5 {
		t.Errorf("Device(l1) = %v", ckt.Device("l1"))
	}
}

func TestSolveOperatingPoint(t *testing.T) {
	ckt := build(t, "divider\nV1 in 0 10\nR1 in out 1k\nR2 out 0 1k\n.end\n")

	if err := ckt.Solve(&device.CircuitStatus{Mode: device.OperatingPointAnalysis}); err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	if v := ckt.GetNodeVoltage("out"); math.Abs(v-5) > 1e-6 {
		t.Errorf("v(out) = %g, want 5", v)
	}
	values := ckt.Values()
	if len(values) != 3 || math.Abs(values[2]+5e-3) > 1e-9 {
		t.Errorf("Values() = %v", values)
	}
}

func TestWriteSystem(t *testing.T) {
	ckt := build(t, "t\nV1 a 0 2\nR1 a 0 1\n")

	var sb strings.Builder
	if err := ckt.WriteSystem(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"(2x2)", "+1*x2", "= 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteSystem() output lacks %q:\n%s", want, out)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"ground only", "t\nR1 0 gnd 1k\n"},
		{"duplicate source", "t\nV1 a 0 1\nv1 a 0 2\nR1 a 0 1\n"},
		{"duplicate resistor", "t\nR1 a 0 1\nR1 a 0 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := netlist.Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if _, err := Build(data); err == nil {
				t.Error("Build() error = nil, want error")
			}
		})
	}
}

func TestValuesBeforeSolve(t *testing.T) {
	ckt := build(t, "t\nR1 a 0 1\n")

	if values := ckt.Values(); len(values) != 1 || values[0] != 0 {
		t.Errorf("Values() = %v, want [0]", values)
	}
	if values := ckt.ComplexValues(); len(values) != 1 || values[0] != 0 {
		t.Errorf("ComplexValues() = %v, want [0]", values)
	}
}
