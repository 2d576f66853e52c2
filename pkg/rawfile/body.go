package rawfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type point struct {
	x, y float64
}

// body is the data section following the header. asciiBody and binaryBody
// are the two encodings; a file is always exactly one of them.
type body interface {
	points(h *Header) ([]point, error)
}

func newBody(f Format, r *bufio.Reader) body {
	if f == Binary {
		return binaryBody{r: r}
	}
	return asciiBody{r: r}
}

type binaryBody struct {
	r io.Reader
}

// preallocLimit caps the capacity taken from "No. Points:", which the
// body may not back.
const preallocLimit = 1 << 16

// Records are read until PointCount is reached or a short read occurs.
// A short read ends the data without an error.
func (b binaryBody) points(h *Header) ([]point, error) {
	if h.VariableCount < 2 || h.PointCount <= 0 {
		return nil, nil
	}

	width := 8
	if h.Complex {
		width = 16
	}

	record := make([]byte, h.VariableCount*width)
	values := make([]float64, h.VariableCount)
	pts := make([]point, 0, min(h.PointCount, preallocLimit))

	for range h.PointCount {
		if _, err := io.ReadFull(b.r, record); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return pts, fmt.Errorf("rawfile: reading binary record: %w", err)
		}

		for i := range values {
			off := i * width
			re := math.Float64frombits(binary.LittleEndian.Uint64(record[off:]))
			if !h.Complex {
				values[i] = re
				continue
			}
			im := math.Float64frombits(binary.LittleEndian.Uint64(record[off+8:]))
			values[i] = math.Sqrt(re*re + im*im)
		}

		if len(values) >= 3 {
			pts = append(pts, point{x: values[0], y: values[2]})
		}
	}

	return pts, nil
}

type asciiBody struct {
	r io.Reader
}

// Each line is "<variable index> <value>". A point is complete once every
// variable has been seen; malformed lines are skipped.
func (b asciiBody) points(h *Header) ([]point, error) {
	var pts []point
	current := make(map[int]float64, h.VariableCount)

	scanner := bufio.NewScanner(b.r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(strings.ReplaceAll(line, "\t", " "))
		if len(fields) != 2 {
			continue
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}

		current[idx] = value
		if len(current) != h.VariableCount {
			continue
		}

		x, okX := current[0]
		y, okY := current[1]
		if okX && okY {
			pts = append(pts, point{x: x, y: y})
		}
		clear(current)
	}

	if err := scanner.Err(); err != nil {
		return pts, fmt.Errorf("rawfile: reading values: %w", err)
	}
	return pts, nil
}
