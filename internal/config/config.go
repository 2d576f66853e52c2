package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/edp1096/spiceplot/internal/consts"
	"github.com/edp1096/spiceplot/pkg/rawfile"
)

type Labels struct {
	Title string `yaml:"title"`
	X     string `yaml:"x"`
	Y     string `yaml:"y"`
}

type Config struct {
	Addr          string        `yaml:"addr"`
	Backend       string        `yaml:"backend"` // ngspice or builtin
	Ngspice       string        `yaml:"ngspice"` // path of the ngspice binary
	Timeout       time.Duration `yaml:"timeout"`
	RawFormat     string        `yaml:"raw_format"` // builtin output, binary or ascii
	LibraryDir    string        `yaml:"library_dir"`
	AllowedOrigin string        `yaml:"allowed_origin"`
	Verbose       bool          `yaml:"verbose"`
	Labels        Labels        `yaml:"labels"`
}

// Environment overrides, applied after the file.
const (
	EnvAddr          = "SPICEPLOT_ADDR"
	EnvBackend       = "SPICEPLOT_BACKEND"
	EnvNgspice       = "SPICEPLOT_NGSPICE"
	EnvTimeout       = "SPICEPLOT_TIMEOUT"
	EnvRawFormat     = "SPICEPLOT_RAW_FORMAT"
	EnvLibraryDir    = "SPICEPLOT_LIBRARY_DIR"
	EnvAllowedOrigin = "SPICEPLOT_ALLOWED_ORIGIN"
)

func Default() *Config {
	return &Config{
		Addr:          ":8000",
		Backend:       "ngspice",
		Ngspice:       "ngspice",
		Timeout:       60 * time.Second,
		RawFormat:     "binary",
		LibraryDir:    "circuits_generated",
		AllowedOrigin: "*",
		Labels: Labels{
			Title: consts.DefaultPlotTitle,
			X:     consts.DefaultXLabel,
			Y:     consts.DefaultYLabel,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies the
// environment. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotenv loads .env style files into the environment without replacing
// variables that are already set. Missing files are skipped.
func LoadDotenv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		EnvAddr:          &c.Addr,
		EnvBackend:       &c.Backend,
		EnvNgspice:       &c.Ngspice,
		EnvRawFormat:     &c.RawFormat,
		EnvLibraryDir:    &c.LibraryDir,
		EnvAllowedOrigin: &c.AllowedOrigin,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case "ngspice", "builtin":
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if _, err := rawfile.ParseFormat(c.RawFormat); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("config: negative timeout %v", c.Timeout)
	}
	return nil
}

// Format is the raw file encoding for the builtin backend.
func (c *Config) Format() rawfile.Format {
	f, _ := rawfile.ParseFormat(c.RawFormat)
	return f
}

func (c *Config) PlotLabels() rawfile.Labels {
	return rawfile.Labels{Title: c.Labels.Title, X: c.Labels.X, Y: c.Labels.Y}
}
