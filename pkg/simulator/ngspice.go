package simulator

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"os/exec"
	"strings"
)

// Ngspice runs the external ngspice binary in batch mode.
type Ngspice struct {
	Path string // defaults to "ngspice" on PATH
}

func (n *Ngspice) Run(ctx context.Context, job Job) (*Result, error) {
	path := n.Path
	if path == "" {
		path = BackendNgspice
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "-b", "-o", job.LogPath, job.NetlistPath)
	cmd.Dir = job.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{
		OK:      err == nil,
		Log:     runLog(job.LogPath, stderr.String(), stdout.String()),
		RawPath: job.RawPath,
	}

	if err != nil {
		log.Printf("simulator: ngspice: %v", err)
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		if res.Log == "" || errors.Is(err, exec.ErrNotFound) || errors.Is(err, context.DeadlineExceeded) {
			res.Log = strings.TrimSpace(res.Log + "\n" + err.Error())
		}
	}

	return res, nil
}

// runLog prefers the log file, then stderr, then stdout.
func runLog(logPath, stderr, stdout string) string {
	if b, err := os.ReadFile(logPath); err == nil && len(bytes.TrimSpace(b)) > 0 {
		return string(b)
	}
	if strings.TrimSpace(stderr) != "" {
		return stderr
	}
	return stdout
}
