package rawfile

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var ErrComplexASCII = errors.New("rawfile: ascii encoding of complex plots is not supported")

// Plot is one simulation result ready to be written as a raw file.
type Plot struct {
	Title     string
	Date      string
	Name      string // Plotname, e.g. "AC Analysis"
	Complex   bool
	Variables []Variable
	Points    [][]complex128 // one row per point, one column per variable
}

func (p *Plot) AddPoint(values ...complex128) {
	row := make([]complex128, len(values))
	copy(row, values)
	p.Points = append(p.Points, row)
}

// Column returns variable i of every point.
func (p *Plot) Column(i int) []complex128 {
	col := make([]complex128, 0, len(p.Points))
	for _, row := range p.Points {
		if i < len(row) {
			col = append(col, row[i])
		}
	}
	return col
}

func Encode(w io.Writer, p *Plot, format Format) error {
	if format == ASCII && p.Complex {
		return ErrComplexASCII
	}
	for i, row := range p.Points {
		if len(row) != len(p.Variables) {
			return fmt.Errorf("rawfile: point %d has %d values, want %d", i, len(row), len(p.Variables))
		}
	}

	bw := bufio.NewWriter(w)

	flags := "real"
	if p.Complex {
		flags = "complex"
	}
	fmt.Fprintf(bw, "Title: %s\n", p.Title)
	if p.Date != "" {
		fmt.Fprintf(bw, "Date: %s\n", p.Date)
	}
	fmt.Fprintf(bw, "Plotname: %s\n", p.Name)
	fmt.Fprintf(bw, "Flags: %s\n", flags)
	fmt.Fprintf(bw, "No. Variables: %d\n", len(p.Variables))
	fmt.Fprintf(bw, "No. Points: %d\n", len(p.Points))
	fmt.Fprintln(bw, "Variables:")
	for _, v := range p.Variables {
		fmt.Fprintf(bw, "\t%d\t%s\t%s\n", v.Index, v.Name, v.Kind)
	}

	if format == Binary {
		fmt.Fprintln(bw, binaryMarker)
		var buf [8]byte
		put := func(f float64) {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
			bw.Write(buf[:])
		}
		for _, row := range p.Points {
			for _, v := range row {
				put(real(v))
				if p.Complex {
					put(imag(v))
				}
			}
		}
	} else {
		fmt.Fprintln(bw, valuesMarker)
		for _, row := range p.Points {
			for i, v := range row {
				fmt.Fprintf(bw, "%d\t%.15e\n", i, real(v))
			}
		}
	}

	return bw.Flush()
}

func WriteFile(path string, p *Plot, format Format) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rawfile: %w", err)
	}

	if err := Encode(fp, p, format); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}
