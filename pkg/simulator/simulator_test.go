package simulator

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/edp1096/spiceplot/pkg/rawfile"
)

// fakeRunner writes plot to the job's raw path unless err is set.
type fakeRunner struct {
	plot    *rawfile.Plot
	err     error
	block   bool
	netlist string
}

func (f *fakeRunner) Run(ctx context.Context, job Job) (*Result, error) {
	b, err := os.ReadFile(job.NetlistPath)
	if err != nil {
		return nil, err
	}
	f.netlist = string(b)

	if f.block {
		<-ctx.Done()
		return &Result{Log: ctx.Err().Error(), RawPath: job.RawPath}, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	if err := rawfile.WriteFile(job.RawPath, f.plot, rawfile.ASCII); err != nil {
		return nil, err
	}
	return &Result{OK: true, Log: "done", RawPath: job.RawPath}, nil
}

func transientPlot() *rawfile.Plot {
	p := &rawfile.Plot{
		Title: "step",
		Name:  "Transient Analysis",
		Variables: []rawfile.Variable{
			{Index: 0, Name: "time", Kind: "time"},
			{Index: 1, Name: "v(out)", Kind: "voltage"},
		},
	}
	p.AddPoint(0, 0)
	p.AddPoint(1e-3, 0.5)
	return p
}

func TestServiceSimulate(t *testing.T) {
	runner := &fakeRunner{plot: transientPlot()}
	svc := NewService(runner, time.Second)
	svc.TempDir = t.TempDir()

	resp, err := svc.Simulate(context.Background(), "step\nR1 out 0 1k\n.tran 1u 1m\n.end")
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	if !resp.OK || resp.Logs != "done" {
		t.Errorf("OK = %v, Logs = %q", resp.OK, resp.Logs)
	}
	if resp.Len() != 2 || resp.Y[1] != 0.5 {
		t.Errorf("series = %+v", resp.Series)
	}
	if resp.XLabel != "Time (s)" || resp.PlotTitle != "step" {
		t.Errorf("labels = %q %q", resp.XLabel, resp.PlotTitle)
	}

	if !strings.Contains(runner.netlist, ".control\nrun\nwrite ") {
		t.Errorf("runner got an unnormalized netlist:\n%s", runner.netlist)
	}

	entries, _ := os.ReadDir(svc.TempDir)
	if len(entries) != 0 {
		t.Errorf("request directory left behind: %v", entries)
	}
}

func TestServiceRunnerFailure(t *testing.T) {
	svc := NewService(&fakeRunner{err: errors.New("boom")}, 0)
	svc.TempDir = t.TempDir()

	resp, err := svc.Simulate(context.Background(), "t\n.end")
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.OK || resp.Logs != "boom" {
		t.Errorf("OK = %v, Logs = %q", resp.OK, resp.Logs)
	}
	if resp.Len() != 0 || resp.PlotTitle != "Simulation Results" || resp.XLabel != "Frequency (Hz)" {
		t.Errorf("series = %+v, want defaults", resp.Series)
	}
}

func TestServiceTimeout(t *testing.T) {
	svc := NewService(&fakeRunner{block: true}, 10*time.Millisecond)
	svc.TempDir = t.TempDir()

	resp, err := svc.Simulate(context.Background(), "t\n.end")
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.OK || !strings.Contains(resp.Logs, "deadline") {
		t.Errorf("OK = %v, Logs = %q", resp.OK, resp.Logs)
	}
}

func TestServiceBuiltinAC(t *testing.T) {
	svc := NewService(&Builtin{Format: rawfile.ASCII}, 5*time.Second)
	svc.TempDir = t.TempDir()

	text := "ac lowpass\nV1 in 0 DC 0 AC 1\nR1 in out 1k\nC1 out 0 1u\n.control\nac dec 10 1 1k\nplot v(out)\n.endc\n.end\n"
	resp, err := svc.Simulate(context.Background(), text)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if !resp.OK {
		t.Fatalf("simulation failed:\n%s", resp.Logs)
	}

	if resp.Len() != 31 {
		t.Fatalf("got %d points, want 31", resp.Len())
	}
	if resp.XLabel != "Frequency (Hz)" || resp.PlotTitle != "ac lowpass" {
		t.Errorf("labels = %q %q", resp.XLabel, resp.PlotTitle)
	}

	// y is the second circuit variable, v(out), in dB
	f := resp.X[30]
	want := -10 * math.Log10(1+math.Pow(2*math.Pi*f*1e-3, 2))
	if math.Abs(resp.Y[30]-want) > 1e-4 {
		t.Errorf("y at %g Hz = %g dB, want %g", f, resp.Y[30], want)
	}
	if !strings.Contains(resp.Logs, "[5] Wrote") || !strings.Contains(resp.Logs, "(binary)") {
		t.Errorf("log:\n%s", resp.Logs)
	}
}

func TestBuiltinFailure(t *testing.T) {
	dir := t.TempDir()
	job := Job{
		Dir:         dir,
		NetlistPath: filepath.Join(dir, "circuit.sp"),
		LogPath:     filepath.Join(dir, "out.log"),
		RawPath:     filepath.Join(dir, "output.raw"),
	}
	if err := os.WriteFile(job.NetlistPath, []byte("t\nQ1 c b e model\n.op\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := (&Builtin{}).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.OK || !strings.Contains(res.Log, "Error: parsing netlist") {
		t.Errorf("result = %+v", res)
	}
	if b, _ := os.ReadFile(job.LogPath); string(b) != res.Log {
		t.Errorf("log file = %q", b)
	}
}

func TestBuiltinWritePath(t *testing.T) {
	dir := t.TempDir()
	job := Job{Dir: dir, NetlistPath: filepath.Join(dir, "circuit.sp"), RawPath: filepath.Join(dir, "output.raw")}
	text := "t\nV1 a 0 1\nR1 a 0 1k\n.op\n.control\nrun\nwrite mine.raw\n.endc\n.end\n"
	if err := os.WriteFile(job.NetlistPath, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := (&Builtin{Verbose: true}).Run(context.Background(), job)
	if err != nil || !res.OK {
		t.Fatalf("Run() = %+v, %v", res, err)
	}
	if res.RawPath != filepath.Join(dir, "mine.raw") {
		t.Errorf("RawPath = %q", res.RawPath)
	}
	if _, err := os.Stat(res.RawPath); err != nil {
		t.Error(err)
	}
	if !strings.Contains(res.Log, "Circuit equations") {
		t.Errorf("verbose log lacks the equations:\n%s", res.Log)
	}
}

func TestNgspice(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "ngspice")
	script := "#!/bin/sh\necho \"batch $4\" > \"$3\"\necho noise >&2\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	job := Job{Dir: dir, NetlistPath: "circuit.sp", LogPath: filepath.Join(dir, "out.log"), RawPath: "output.raw"}
	res, err := (&Ngspice{Path: bin}).Run(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK || strings.TrimSpace(res.Log) != "batch circuit.sp" {
		t.Errorf("result = %+v", res)
	}
}

func TestNgspiceMissing(t *testing.T) {
	dir := t.TempDir()
	job := Job{Dir: dir, NetlistPath: "circuit.sp", LogPath: filepath.Join(dir, "out.log")}

	res, err := (&Ngspice{Path: filepath.Join(dir, "no-such-ngspice")}).Run(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK || res.Log == "" {
		t.Errorf("result = %+v", res)
	}
}

func TestRunLog(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "out.log")

	if got := runLog(logPath, "err", "out"); got != "err" {
		t.Errorf("runLog() = %q, want stderr", got)
	}
	if got := runLog(logPath, " \n", "out"); got != "out" {
		t.Errorf("runLog() = %q, want stdout", got)
	}
	os.WriteFile(logPath, []byte("from file"), 0o644)
	if got := runLog(logPath, "err", "out"); got != "from file" {
		t.Errorf("runLog() = %q, want the log file", got)
	}
}

func TestNewRunner(t *testing.T) {
	if r, err := NewRunner("BUILTIN", "", rawfile.Binary); err != nil {
		t.Error(err)
	} else if _, ok := r.(*Builtin); !ok {
		t.Errorf("NewRunner(builtin) = %T", r)
	}
	if r, _ := NewRunner("", "/opt/ngspice", rawfile.Binary); r.(*Ngspice).Path != "/opt/ngspice" {
		t.Errorf("NewRunner() = %+v", r)
	}
	if _, err := NewRunner("spectre", "", rawfile.Binary); err == nil {
		t.Error("NewRunner() error = nil for an unknown backend")
	}
}
