package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Version != "1.0.0" {
		t.Errorf("Version = %q", cfg.Version)
	}
	if cfg.Editor.Placeholder != "Start typing..." {
		t.Errorf("Placeholder = %q", cfg.Editor.Placeholder)
	}
	if !slices.Contains(cfg.Media.ImageExtensions, "webp") {
		t.Errorf("image extensions missing webp: %v", cfg.Media.ImageExtensions)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty version", func(c *Config) { c.Version = "" }, "version"},
		{"zero rows", func(c *Config) { c.Editor.DefaultTableRows = 0 }, "editor.default_table_rows"},
		{"zero cols", func(c *Config) { c.Editor.DefaultTableCols = 0 }, "editor.default_table_cols"},
		{"bad policy", func(c *Config) { c.Editor.SanitizePolicy = "loose" }, "editor.sanitize_policy"},
		{"negative max", func(c *Config) { c.Media.MaxBytes = -1 }, "media.max_bytes"},
		{"zero queue", func(c *Config) { c.Media.QueueSize = 0 }, "media.queue_size"},
		{"no extensions", func(c *Config) {
			c.Media.ImageExtensions = nil
			c.Media.VideoExtensions = nil
		}, "media"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want validation error", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Path != tt.path {
				t.Errorf("path = %v, want %s", ve, tt.path)
			}
		})
	}
}

func TestValidateNormalizesExtensions(t *testing.T) {
	cfg := Default()
	cfg.Media.ImageExtensions = []string{".PNG", "png", " Jpg ", ""}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	want := []string{"png", "jpg"}
	if !slices.Equal(cfg.Media.ImageExtensions, want) {
		t.Errorf("ImageExtensions = %v, want %v", cfg.Media.ImageExtensions, want)
	}
}

func TestLoadFileTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richtext.toml")
	data := `
[editor]
placeholder = "Write here"
sanitize_policy = "strict"

[media]
max_bytes = 2048
image_extensions = ["png"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if cfg.Editor.Placeholder != "Write here" {
		t.Errorf("Placeholder = %q", cfg.Editor.Placeholder)
	}
	if cfg.Editor.SanitizePolicy != PolicyStrict {
		t.Errorf("SanitizePolicy = %q", cfg.Editor.SanitizePolicy)
	}
	if cfg.Media.MaxBytes != 2048 {
		t.Errorf("MaxBytes = %d", cfg.Media.MaxBytes)
	}
	if !slices.Equal(cfg.Media.ImageExtensions, []string{"png"}) {
		t.Errorf("ImageExtensions = %v", cfg.Media.ImageExtensions)
	}
	// Untouched keys keep defaults.
	if cfg.Editor.DefaultTableRows != 2 || cfg.Media.QueueSize != 16 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richtext.yaml")
	data := "logging:\n  level: debug\nmedia:\n  video_extensions: [mp4]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
	if !slices.Equal(cfg.Media.VideoExtensions, []string{"mp4"}) {
		t.Errorf("VideoExtensions = %v", cfg.Media.VideoExtensions)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[editor\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var pe *ParseError
	if _, err := LoadFile(bad); !errors.As(err, &pe) {
		t.Errorf("LoadFile(bad) = %v, want ParseError", err)
	} else if pe.Path != bad {
		t.Errorf("ParseError.Path = %q", pe.Path)
	}

	if _, err := LoadFile(filepath.Join(dir, "config.ini")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadFile(ini) = %v, want ErrUnsupportedFormat", err)
	}

	cfg, err := LoadFile(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Editor.Placeholder != "Start typing..." {
		t.Errorf("Placeholder = %q", cfg.Editor.Placeholder)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("RICHTEXT_LOG_LEVEL", "warn")
	t.Setenv("RICHTEXT_LOG_CONSOLE", "yes")
	t.Setenv("RICHTEXT_MEDIA_MAX_BYTES", "512")
	t.Setenv("RICHTEXT_MEDIA_IMAGE_EXTENSIONS", "png, gif")
	t.Setenv("RICHTEXT_SANITIZE_POLICY", "NONE")

	cfg := Default()
	if err := cfg.ApplyEnv(EnvPrefix); err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "warn" || !cfg.Logging.Console {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Media.MaxBytes != 512 {
		t.Errorf("MaxBytes = %d", cfg.Media.MaxBytes)
	}
	if !slices.Equal(cfg.Media.ImageExtensions, []string{"png", "gif"}) {
		t.Errorf("ImageExtensions = %v", cfg.Media.ImageExtensions)
	}
	if cfg.Editor.SanitizePolicy != PolicyNone {
		t.Errorf("SanitizePolicy = %q", cfg.Editor.SanitizePolicy)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("RICHTEXT_MEDIA_QUEUE_SIZE", "many")
	err := Default().ApplyEnv(EnvPrefix)
	if !errors.Is(err, ErrValidationFailed) {
		t.Errorf("ApplyEnv() = %v, want validation error", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richtext.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("RICHTEXT_LOG_LEVEL", "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("environment should win over file, got %q", cfg.Logging.Level)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML} {
		cfg := Default()
		cfg.Editor.Placeholder = "Type"
		data, err := cfg.Marshal(format)
		if err != nil {
			t.Fatal(err)
		}
		got := Default()
		if err := got.MergeReader(strings.NewReader(string(data)), format); err != nil {
			t.Fatalf("format %d: %v", format, err)
		}
		if got.Editor.Placeholder != "Type" {
			t.Errorf("format %d: Placeholder = %q", format, got.Editor.Placeholder)
		}
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	c := cfg.Clone()
	c.Media.ImageExtensions[0] = "tiff"
	if cfg.Media.ImageExtensions[0] == "tiff" {
		t.Error("Clone shares extension slice")
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "richtext.toml")
	if err := os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			if err != nil {
				return
			}
			select {
			case got <- cfg:
			default:
			}
		})
	}()

	// Keep rewriting until the watcher is registered and reports.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case cfg := <-got:
			// A write may be observed before the new content lands.
			if cfg.Logging.Level != "debug" {
				continue
			}
			cancel()
			<-done
			return
		case <-ticker.C:
			if err := os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-ctx.Done():
			t.Fatal("no reload observed")
		}
	}
}
