package simulator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edp1096/spiceplot/pkg/analysis"
	"github.com/edp1096/spiceplot/pkg/circuit"
	"github.com/edp1096/spiceplot/pkg/netlist"
	"github.com/edp1096/spiceplot/pkg/rawfile"
	"github.com/edp1096/spiceplot/pkg/util"
)

// Builtin simulates linear circuits in process and writes an ngspice
// compatible raw file. Only the first analysis of the netlist is run.
type Builtin struct {
	Format  rawfile.Format // complex results are always written binary
	Verbose bool           // include the stamped equations in the log
}

func (b *Builtin) Run(ctx context.Context, job Job) (*Result, error) {
	content, err := os.ReadFile(job.NetlistPath)
	if err != nil {
		return nil, fmt.Errorf("builtin: %v", err)
	}

	var sb strings.Builder
	res := &Result{RawPath: job.RawPath}

	res.RawPath, err = b.simulate(ctx, string(content), job, &sb)
	if err != nil {
		fmt.Fprintf(&sb, "Error: %v\n", err)
	} else {
		res.OK = true
	}
	res.Log = sb.String()

	if job.LogPath != "" {
		if err := os.WriteFile(job.LogPath, []byte(res.Log), 0o644); err != nil {
			return res, fmt.Errorf("builtin: writing log: %v", err)
		}
	}
	return res, nil
}

func (b *Builtin) simulate(ctx context.Context, content string, job Job, w io.Writer) (string, error) {
	rawPath := job.RawPath

	// 1. Parse netlist
	fmt.Fprintln(w, "[1] Parsing netlist")
	data, err := netlist.Parse(content)
	if err != nil {
		return rawPath, fmt.Errorf("parsing netlist: %v", err)
	}
	fmt.Fprintf(w, "Circuit: %s\n", data.Title)
	fmt.Fprintf(w, "Circuit elements: %d\n", len(data.Elements))
	for _, cmd := range data.Ignored {
		fmt.Fprintf(w, "Ignored: %s\n", cmd)
	}
	if data.WritePath != "" {
		rawPath = data.WritePath
		if !filepath.IsAbs(rawPath) {
			rawPath = filepath.Join(job.Dir, rawPath)
		}
	}
	if len(data.Analyses) == 0 {
		return rawPath, fmt.Errorf("no analysis in netlist")
	}
	if len(data.Analyses) > 1 {
		fmt.Fprintf(w, "Running the first of %d analyses\n", len(data.Analyses))
	}

	// 2. Setup circuit
	fmt.Fprintln(w, "[2] Creating circuit structure")
	ckt, err := circuit.Build(data)
	if err != nil {
		return rawPath, fmt.Errorf("creating circuit: %v", err)
	}
	defer ckt.Destroy()
	fmt.Fprintf(w, "Nodes: %d, unknowns: %d\n", ckt.GetNumNodes(), ckt.Size())
	if b.Verbose {
		if err := ckt.WriteSystem(w); err != nil {
			return rawPath, err
		}
	}

	// 3. Setup analyzer
	fmt.Fprintln(w, "[3] Setting up analyzer")
	directive := data.Analyses[0]
	analyzer, err := analysis.New(directive)
	if err != nil {
		return rawPath, err
	}
	fmt.Fprintln(w, describe(directive))

	// 4. Run analysis
	fmt.Fprintln(w, "[4] Executing analysis")
	plot, err := analysis.Run(ctx, ckt, analyzer)
	if err != nil {
		return rawPath, err
	}

	// 5. Write raw file
	format := b.Format
	if plot.Complex {
		format = rawfile.Binary
	}
	if err := rawfile.WriteFile(rawPath, plot, format); err != nil {
		return rawPath, err
	}
	fmt.Fprintf(w, "[5] Wrote %s: %d points, %d variables (%s)\n", rawPath, len(plot.Points), len(plot.Variables), format)

	return rawPath, nil
}

func describe(a netlist.Analysis) string {
	switch a.Type {
	case netlist.AnalysisTRAN:
		p := a.Tran
		return fmt.Sprintf("Transient analysis (step=%s, stop=%s, start=%s, uic=%v)",
			util.FormatValueFactor(p.TStep, "s"), util.FormatValueFactor(p.TStop, "s"),
			util.FormatValueFactor(p.TStart, "s"), p.UIC)
	case netlist.AnalysisAC:
		p := a.AC
		return fmt.Sprintf("AC analysis (%s %d points, %s to %s)", p.Sweep, p.Points,
			strings.TrimSpace(util.FormatFrequency(p.FStart)), strings.TrimSpace(util.FormatFrequency(p.FStop)))
	case netlist.AnalysisDC:
		p := a.DC
		return fmt.Sprintf("DC sweep of %s (%g to %g step %g)", p.Source, p.Start, p.Stop, p.Increment)
	}
	return "Operating point analysis"
}
