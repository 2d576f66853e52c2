package netlist

import (
	"slices"
	"strings"
)

const (
	controlEntry = ".control"
	controlExit  = ".endc"
	netlistEnd   = ".end"
)

type blockState int

const (
	outsideBlock blockState = iota
	insideBlock
)

// normalizer carries the scan state of Normalize.
type normalizer struct {
	output string
	state  blockState

	// per control block
	hasRun   bool
	hasWrite bool

	entryAt int // index in lines of the first .control, -1 if none
	hoisted []string
	lines   []string
}

// Normalize rewrites a netlist so that a batch simulator run writes its
// results to output. Analysis commands found inside the .control block are
// moved in front of it, plot commands are dropped, write commands are
// pointed at output, and run/write are added when missing. A netlist
// without a control block gets one in front of .end.
func Normalize(text, output string) string {
	n := &normalizer{output: output, entryAt: -1}

	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			n.scan(line)
		}
	}

	// An unclosed block keeps its trailing lines, so trim again.
	return strings.TrimSpace(strings.Join(n.finish(), "\n"))
}

func (n *normalizer) scan(line string) {
	kw := keyword(line)

	if n.state == outsideBlock {
		if kw == controlEntry {
			n.state = insideBlock
			n.hasRun, n.hasWrite = false, false
			if n.entryAt < 0 {
				n.entryAt = len(n.lines)
			}
		}
		n.emit(line)
		return
	}

	switch {
	case kw == controlExit:
		if !n.hasRun {
			n.emit("run")
		}
		if !n.hasWrite {
			n.emit(n.writeCommand())
		}
		n.emit(line)
		n.state = outsideBlock

	case kw == "run":
		n.hasRun = true
		n.emit(line)

	case isAnalysis(kw):
		directive := strings.TrimSpace(line)
		if !strings.HasPrefix(directive, ".") {
			directive = "." + directive
		}
		n.hoisted = append(n.hoisted, directive)

	case kw == "plot":
		// no display in batch mode

	case kw == "write":
		n.hasWrite = true
		n.emit(n.writeCommand())

	default:
		n.emit(line)
	}
}

func (n *normalizer) finish() []string {
	if n.entryAt >= 0 {
		return slices.Insert(n.lines, n.entryAt, n.hoisted...)
	}

	// Directives are only hoisted out of a block, so without one there is
	// nothing to place besides the synthetic block itself.
	block := n.syntheticBlock()
	for i, line := range n.lines {
		if keyword(line) == netlistEnd && len(strings.Fields(line)) == 1 {
			return slices.Insert(n.lines, i, block...)
		}
	}
	return append(n.lines, block...)
}

func (n *normalizer) emit(line string) {
	n.lines = append(n.lines, line)
}

func (n *normalizer) writeCommand() string {
	return "write " + n.output
}

func (n *normalizer) syntheticBlock() []string {
	return []string{controlEntry, "run", n.writeCommand(), controlExit}
}

// keyword is the lower-cased first field of line.
func keyword(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func isAnalysis(kw string) bool {
	switch strings.TrimPrefix(kw, ".") {
	case "ac", "tran", "dc", "op":
		return true
	}
	return false
}
