// Package config provides configuration for editor sessions.
//
// Configuration is assembled from built-in defaults, an optional TOML or
// YAML file and RICHTEXT_* environment variables, in that order of
// precedence (later wins). Watch reloads the file when it changes.
package config

import (
	"fmt"
	"slices"
	"strings"
)

// SerializedVersion is the version stamped on serialized documents.
const SerializedVersion = "1.0.0"

// Sanitize policy names.
const (
	PolicyUGC    = "ugc"
	PolicyStrict = "strict"
	PolicyNone   = "none"
)

// Config is the complete editor configuration.
type Config struct {
	// Version is written into every serialized document.
	Version string        `toml:"version" yaml:"version"`
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Media   MediaConfig   `toml:"media" yaml:"media"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
}

// EditorConfig holds document and structural defaults.
type EditorConfig struct {
	// Placeholder is set on newly created blocks.
	Placeholder string `toml:"placeholder" yaml:"placeholder"`

	// DefaultTableRows and DefaultTableCols are used by callers that insert
	// a table without choosing dimensions.
	DefaultTableRows int `toml:"default_table_rows" yaml:"default_table_rows"`
	DefaultTableCols int `toml:"default_table_cols" yaml:"default_table_cols"`

	// SanitizePolicy selects how loaded and source-mode markup is cleaned:
	// "ugc", "strict" or "none".
	SanitizePolicy string `toml:"sanitize_policy" yaml:"sanitize_policy"`
}

// MediaConfig holds media validation and loading limits.
type MediaConfig struct {
	ImageExtensions []string `toml:"image_extensions" yaml:"image_extensions"`
	VideoExtensions []string `toml:"video_extensions" yaml:"video_extensions"`

	// MaxBytes caps file payloads; 0 disables the limit.
	MaxBytes int64 `toml:"max_bytes" yaml:"max_bytes"`

	// QueueSize bounds pending file insertions.
	QueueSize int `toml:"queue_size" yaml:"queue_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `toml:"level" yaml:"level"`
	Console bool   `toml:"console" yaml:"console"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: SerializedVersion,
		Editor: EditorConfig{
			Placeholder:      "Start typing...",
			DefaultTableRows: 2,
			DefaultTableCols: 2,
			SanitizePolicy:   PolicyUGC,
		},
		Media: MediaConfig{
			ImageExtensions: []string{"jpg", "jpeg", "png", "gif", "bmp", "webp"},
			VideoExtensions: []string{"mp4", "avi", "mov", "wmv", "flv", "webm"},
			MaxBytes:        10 << 20,
			QueueSize:       16,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Media.ImageExtensions = slices.Clone(c.Media.ImageExtensions)
	out.Media.VideoExtensions = slices.Clone(c.Media.VideoExtensions)
	return &out
}

// Validate checks c and normalizes extension lists to lower case without
// leading dots.
func (c *Config) Validate() error {
	if c.Version == "" {
		return &ValidationError{Path: "version", Message: "must not be empty"}
	}
	if c.Editor.DefaultTableRows < 1 {
		return &ValidationError{Path: "editor.default_table_rows", Message: "must be at least 1", Value: c.Editor.DefaultTableRows}
	}
	if c.Editor.DefaultTableCols < 1 {
		return &ValidationError{Path: "editor.default_table_cols", Message: "must be at least 1", Value: c.Editor.DefaultTableCols}
	}
	switch c.Editor.SanitizePolicy {
	case PolicyUGC, PolicyStrict, PolicyNone:
	default:
		return &ValidationError{Path: "editor.sanitize_policy", Message: "must be ugc, strict or none", Value: c.Editor.SanitizePolicy}
	}
	if c.Media.MaxBytes < 0 {
		return &ValidationError{Path: "media.max_bytes", Message: "must not be negative", Value: c.Media.MaxBytes}
	}
	if c.Media.QueueSize < 1 {
		return &ValidationError{Path: "media.queue_size", Message: "must be at least 1", Value: c.Media.QueueSize}
	}
	if len(c.Media.ImageExtensions) == 0 && len(c.Media.VideoExtensions) == 0 {
		return &ValidationError{Path: "media", Message: "at least one extension must be allowed"}
	}
	c.Media.ImageExtensions = normalizeExtensions(c.Media.ImageExtensions)
	c.Media.VideoExtensions = normalizeExtensions(c.Media.VideoExtensions)
	return nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" && !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}

// String renders a short summary for logs.
func (c *Config) String() string {
	return fmt.Sprintf("version=%s policy=%s images=%v videos=%v max_bytes=%d",
		c.Version, c.Editor.SanitizePolicy, c.Media.ImageExtensions, c.Media.VideoExtensions, c.Media.MaxBytes)
}
