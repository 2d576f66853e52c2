package rawfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	binaryMarker = "Binary:"
	valuesMarker = "Values:"

	// Bytes inspected when classifying a file.
	prefixSize = 1000
)

var (
	ErrNoDataSection = errors.New("rawfile: header has no Binary: or Values: marker")
	ErrVariableTable = errors.New("rawfile: variable table does not match No. Variables")
)

func detectFormat(r io.Reader) (Format, error) {
	buf := make([]byte, prefixSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return ASCII, fmt.Errorf("rawfile: reading prefix: %w", err)
	}
	if bytes.Contains(buf[:n], []byte(binaryMarker)) {
		return Binary, nil
	}
	return ASCII, nil
}

// ReadHeader consumes header lines from r up to and including the line that
// starts the data section. On success r is positioned at the first data byte.
func ReadHeader(r *bufio.Reader) (*Header, error) {
	h := &Header{}

	for {
		line, err := readHeaderLine(r)
		if err != nil {
			return nil, err
		}
		h.observe(line)

		switch {
		case strings.HasPrefix(line, binaryMarker), strings.HasPrefix(line, valuesMarker):
			if len(h.Variables) != h.VariableCount {
				return nil, fmt.Errorf("%w: want %d, got %d", ErrVariableTable, h.VariableCount, len(h.Variables))
			}
			return h, nil

		case strings.HasPrefix(line, "Title:"):
			h.Title = fieldValue(line)
		case strings.HasPrefix(line, "Date:"):
			h.Date = fieldValue(line)
		case strings.HasPrefix(line, "Plotname:"):
			h.Plotname = fieldValue(line)
		case strings.HasPrefix(line, "Flags:"):
			h.Flags = fieldValue(line)

		case strings.HasPrefix(line, "No. Variables:"):
			h.VariableCount, err = parseCount(line)
			if err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, "No. Points:"):
			h.PointCount, err = parseCount(line)
			if err != nil {
				return nil, err
			}

		case strings.HasPrefix(line, "Variables:"):
			if err := h.readVariables(r); err != nil {
				return nil, err
			}
		}
	}
}

func (h *Header) readVariables(r *bufio.Reader) error {
	for len(h.Variables) < h.VariableCount {
		line, err := readHeaderLine(r)
		if err != nil {
			return err
		}
		h.observe(line)

		v, err := parseVariable(line)
		if err != nil {
			return err
		}
		h.Variables = append(h.Variables, v)
	}
	return nil
}

func (h *Header) observe(line string) {
	if strings.Contains(strings.ToLower(line), "complex") {
		h.Complex = true
	}
}

func readHeaderLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line == "" {
				return "", ErrNoDataSection
			}
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("rawfile: reading header: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func fieldValue(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}

func parseCount(line string) (int, error) {
	value := fieldValue(line)
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("rawfile: invalid count in %q", line)
	}
	return n, nil
}

// "0	frequency	frequency	grid=3" -> {0, frequency, frequency}
func parseVariable(line string) (Variable, error) {
	parts := strings.FieldsFunc(line, func(r rune) bool { return r == '\t' })
	if len(parts) < 3 {
		parts = strings.Fields(line)
	}
	if len(parts) < 3 {
		return Variable{}, fmt.Errorf("%w: malformed variable line %q", ErrVariableTable, line)
	}

	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Variable{}, fmt.Errorf("%w: bad variable index in %q", ErrVariableTable, line)
	}

	return Variable{
		Index: idx,
		Name:  strings.TrimSpace(parts[1]),
		Kind:  strings.TrimSpace(parts[2]),
	}, nil
}
