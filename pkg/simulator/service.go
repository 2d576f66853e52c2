package simulator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/edp1096/spiceplot/internal/consts"
	"github.com/edp1096/spiceplot/pkg/netlist"
	"github.com/edp1096/spiceplot/pkg/rawfile"
)

// Response is the outcome of one simulation request.
type Response struct {
	OK   bool   `json:"ok"`
	Logs string `json:"logs"`
	rawfile.Series
}

// Service runs netlists end to end: normalize, simulate in a private
// directory, decode the raw file.
type Service struct {
	Runner  Runner
	Timeout time.Duration // no limit when zero
	Labels  rawfile.Labels
	TempDir string // parent of the per-request directories, os.TempDir when empty
}

func NewService(runner Runner, timeout time.Duration) *Service {
	return &Service{
		Runner:  runner,
		Timeout: timeout,
		Labels: rawfile.Labels{
			Title: consts.DefaultPlotTitle,
			X:     consts.DefaultXLabel,
			Y:     consts.DefaultYLabel,
		},
	}
}

// Simulate returns an error only when the request could not be staged on
// disk. Simulator failures come back with OK unset and the log attached.
func (s *Service) Simulate(ctx context.Context, text string) (*Response, error) {
	dir, err := os.MkdirTemp(s.TempDir, "spiceplot-")
	if err != nil {
		return nil, fmt.Errorf("simulate: %v", err)
	}
	defer os.RemoveAll(dir)

	job := Job{
		Dir:         dir,
		NetlistPath: filepath.Join(dir, consts.NetlistFile),
		LogPath:     filepath.Join(dir, consts.LogFile),
		RawPath:     filepath.Join(dir, consts.RawFile),
	}

	normalized := netlist.Normalize(text, job.RawPath)
	if err := os.WriteFile(job.NetlistPath, []byte(normalized), 0o644); err != nil {
		return nil, fmt.Errorf("simulate: writing netlist: %v", err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	res, err := s.Runner.Run(ctx, job)
	if err != nil {
		log.Printf("simulator: %v", err)
		if res == nil {
			res = &Result{Log: err.Error(), RawPath: job.RawPath}
		}
		res.OK = false
	}

	series := rawfile.Decode(res.RawPath, s.Labels)
	return &Response{OK: res.OK, Logs: res.Log, Series: *series}, nil
}
