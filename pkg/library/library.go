package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const circuitExt = ".cir"

var (
	ErrInvalidName = errors.New("library: only .cir file names are allowed")
	ErrNotFound    = errors.New("library: file not found")
)

// Entry describes a stored circuit. Modified is in Unix seconds.
type Entry struct {
	Name     string  `json:"name"`
	Path     string  `json:"path"`
	Modified float64 `json:"modified"`
}

// Store keeps circuit files in a flat directory.
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("library: %v", err)
	}
	return &Store{Dir: dir}, nil
}

// List returns the stored circuits, most recently modified first. A
// missing directory is an empty library.
func (s *Store) List() ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("library: %v", err)
	}

	entries := []Entry{}
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasSuffix(de.Name(), circuitExt) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:     de.Name(),
			Path:     filepath.Join(s.Dir, de.Name()),
			Modified: float64(info.ModTime().UnixNano()) / 1e9,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Modified > entries[j].Modified
	})
	return entries, nil
}

func (s *Store) Read(name string) (string, error) {
	path, err := s.path(name)
	if err != nil {
		return "", err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("library: %v", err)
	}
	return string(b), nil
}

// Write creates or replaces a circuit file.
func (s *Store) Write(name, content string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("library: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("library: %v", err)
	}
	return nil
}

// SaveBlocks stores every netlist block of text as
// generated_<timestamp>_<n>.cir, n counting all fenced blocks from 1, and
// returns the file names written.
func (s *Store) SaveBlocks(text string, now time.Time) ([]string, error) {
	var saved []string

	stamp := now.Format("2006-01-02_15-04-05")
	for _, b := range ExtractBlocks(text) {
		name := fmt.Sprintf("generated_%s_%d%s", stamp, b.Index+1, circuitExt)
		if err := s.Write(name, b.Netlist); err != nil {
			return saved, err
		}
		saved = append(saved, name)
	}

	return saved, nil
}

func (s *Store) path(name string) (string, error) {
	if !strings.HasSuffix(name, circuitExt) || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.Dir, name), nil
}
