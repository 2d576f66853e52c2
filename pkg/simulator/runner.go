package simulator

import (
	"context"
	"fmt"
	"strings"

	"github.com/edp1096/spiceplot/pkg/rawfile"
)

// Job is one simulation in its own working directory. The netlist at
// NetlistPath is already normalized to write RawPath.
type Job struct {
	Dir         string
	NetlistPath string
	LogPath     string
	RawPath     string
}

// Result of a run. RawPath may name a file that was never written when the
// run failed.
type Result struct {
	OK      bool
	Log     string
	RawPath string
}

// Runner executes a simulator on a job. A failed simulation is reported
// through Result.OK; an error means the job could not be attempted.
type Runner interface {
	Run(ctx context.Context, job Job) (*Result, error)
}

const (
	BackendNgspice = "ngspice"
	BackendBuiltin = "builtin"
)

// NewRunner returns the runner for a backend name.
func NewRunner(backend, ngspicePath string, format rawfile.Format) (Runner, error) {
	switch strings.ToLower(backend) {
	case BackendNgspice, "":
		return &Ngspice{Path: ngspicePath}, nil
	case BackendBuiltin:
		return &Builtin{Format: format}, nil
	}
	return nil, fmt.Errorf("unknown simulator backend %q", backend)
}
