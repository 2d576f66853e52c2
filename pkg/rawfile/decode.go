package rawfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"
)

// File is a raw file whose header has been parsed and whose data section
// has not been read yet.
type File struct {
	Format Format
	Header *Header
	body   body
}

// Read classifies the encoding from the first bytes of r, rewinds, and
// parses the header.
func Read(r io.ReadSeeker) (*File, error) {
	format, err := detectFormat(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rawfile: rewinding: %w", err)
	}

	br := bufio.NewReader(r)
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}

	return &File{Format: format, Header: h, body: newBody(format, br)}, nil
}

// Series decodes the data section. The returned series is usable even when
// err is non-nil; it then holds the points read before the failure.
func (f *File) Series(defaults Labels) (*Series, error) {
	s := NewSeries(defaults)
	if f.Header.Title != "" {
		s.PlotTitle = f.Header.Title
	}

	pts, err := f.body.points(f.Header)

	ac := isACTitle(s.PlotTitle)
	for _, p := range pts {
		y := p.y
		if ac && y > 0 {
			y = 20 * math.Log10(math.Abs(y))
		}
		s.X = append(s.X, p.x)
		s.Y = append(s.Y, y)
	}

	s.label(f.Header.Variables)
	return s, err
}

// Decode reads the raw file at path into a series. It never fails: a
// missing file or an unreadable header yields an empty series carrying the
// defaults, and a damaged data section yields the points read so far.
func Decode(path string, defaults Labels) *Series {
	if path == "" {
		return NewSeries(defaults)
	}

	fp, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("rawfile: open %s: %v", path, err)
		}
		return NewSeries(defaults)
	}
	defer fp.Close()

	f, err := Read(fp)
	if err != nil {
		log.Printf("rawfile: %s: %v", path, err)
		return NewSeries(defaults)
	}

	s, err := f.Series(defaults)
	if err != nil {
		log.Printf("rawfile: %s: partial data (%d points): %v", path, s.Len(), err)
	}
	return s
}

func isACTitle(title string) bool {
	return strings.Contains(strings.ToLower(title), "ac")
}

func (s *Series) label(vars []Variable) {
	if len(vars) < 2 {
		return
	}

	xName := strings.ToLower(vars[0].Name)
	switch {
	case strings.Contains(xName, "frequency"):
		s.XLabel = "Frequency (Hz)"
		if isACTitle(s.PlotTitle) {
			s.YLabel = "Magnitude (dB)"
		} else {
			s.YLabel = "Magnitude (V)"
		}
	case strings.Contains(xName, "time"):
		s.XLabel = "Time (s)"
		s.YLabel = "Voltage (V)"
	}

	// terse names like v(1) say nothing a generic label doesn't
	if len(vars[1].Name) > 4 {
		s.YLabel = vars[1].Name
	}
}
