package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file syntax.
type Format int

const (
	// FormatTOML is the default configuration syntax.
	FormatTOML Format = iota
	// FormatYAML is accepted for .yaml and .yml files.
	FormatYAML
)

// FormatForPath selects the format by file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load builds a configuration from defaults, the optional file at path and
// the environment. An empty path skips the file layer; a missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(EnvPrefix); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults without consulting the environment.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.MergeFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MergeFile decodes path onto c. Keys absent from the file keep their
// current values.
func (c *Config) MergeFile(path string) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return c.decode(path, format, bytes.NewReader(data))
}

// MergeReader decodes r onto c using format.
func (c *Config) MergeReader(r io.Reader, format Format) error {
	return c.decode("<reader>", format, r)
}

func (c *Config) decode(source string, format Format, r io.Reader) error {
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(c)
		if err == io.EOF {
			err = nil
		}
	default:
		err = toml.NewDecoder(r).Decode(c)
	}
	if err != nil {
		return &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return nil
}

// Marshal encodes c in the given format.
func (c *Config) Marshal(format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(c)
	}
	return toml.Marshal(c)
}
