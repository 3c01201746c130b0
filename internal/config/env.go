package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of recognized environment variables.
const EnvPrefix = "RICHTEXT_"

type envSetter func(c *Config, value string) error

// envSettings maps variable names (without prefix) to setters.
var envSettings = map[string]envSetter{
	"LOG_LEVEL": func(c *Config, v string) error {
		c.Logging.Level = v
		return nil
	},
	"LOG_CONSOLE": func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return &ValidationError{Path: "logging.console", Message: "must be a boolean", Value: v}
		}
		c.Logging.Console = b
		return nil
	},
	"PLACEHOLDER": func(c *Config, v string) error {
		c.Editor.Placeholder = v
		return nil
	},
	"SANITIZE_POLICY": func(c *Config, v string) error {
		c.Editor.SanitizePolicy = strings.ToLower(v)
		return nil
	},
	"MEDIA_MAX_BYTES": func(c *Config, v string) error {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return &ValidationError{Path: "media.max_bytes", Message: "must be an integer", Value: v}
		}
		c.Media.MaxBytes = n
		return nil
	},
	"MEDIA_QUEUE_SIZE": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Path: "media.queue_size", Message: "must be an integer", Value: v}
		}
		c.Media.QueueSize = n
		return nil
	},
	"MEDIA_IMAGE_EXTENSIONS": func(c *Config, v string) error {
		c.Media.ImageExtensions = splitList(v)
		return nil
	},
	"MEDIA_VIDEO_EXTENSIONS": func(c *Config, v string) error {
		c.Media.VideoExtensions = splitList(v)
		return nil
	},
}

// ApplyEnv overrides settings from environment variables carrying prefix.
// Empty values count as set.
func (c *Config) ApplyEnv(prefix string) error {
	for name, set := range envSettings {
		v, ok := os.LookupEnv(prefix + name)
		if !ok {
			continue
		}
		if err := set(c, v); err != nil {
			return err
		}
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
