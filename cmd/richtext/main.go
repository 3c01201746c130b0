// Package main is the entry point for the richtext command.
//
// richtext loads a document into a headless editor session, optionally
// runs a Lua macro against it and prints the result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dshills/richtext/internal/config"
	"github.com/dshills/richtext/internal/engine"
	"github.com/dshills/richtext/internal/logging"
	"github.com/dshills/richtext/internal/script"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Output formats.
const (
	formatHTML    = "html"
	formatJSON    = "json"
	formatTree    = "tree"
	formatCompact = "compact"
	formatStats   = "stats"
	formatText    = "text"
)

var errUsage = errors.New("usage")

type options struct {
	ConfigPath  string
	LogLevel    string
	Input       string
	Script      string
	Format      string
	Output      string
	Watch       bool
	ShowVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.ShowVersion {
		fmt.Fprintf(stdout, "richtext %s\n", version)
		fmt.Fprintf(stdout, "Commit: %s\n", commit)
		fmt.Fprintf(stdout, "Built: %s\n", date)
		return 0
	}

	if err := execute(ctx, opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("richtext", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.Input, "in", "", "Input document (.html, .md, .json)")
	fs.StringVar(&opts.Script, "script", "", "Lua macro to run after loading")
	fs.StringVar(&opts.Format, "format", formatHTML, "Output format (html, json, tree, compact, stats, text)")
	fs.StringVar(&opts.Output, "o", "", "Write output to file instead of stdout")
	fs.BoolVar(&opts.Watch, "watch", false, "Re-render whenever the config file changes")
	fs.BoolVar(&opts.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&opts.ShowVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "richtext - headless rich-text editor\n\n")
		fmt.Fprintf(stderr, "Usage: richtext [options]\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  richtext -in notes.md                 Render markdown as editor markup\n")
		fmt.Fprintf(stderr, "  richtext -in page.html -format json   Serialize blocks\n")
		fmt.Fprintf(stderr, "  richtext -script macro.lua -format tree\n")
		fmt.Fprintf(stderr, "  richtext -c editor.toml -in page.html -o out.html -watch\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	switch opts.Format {
	case formatHTML, formatJSON, formatTree, formatCompact, formatStats, formatText:
	default:
		return opts, fmt.Errorf("%w: invalid format %q", errUsage, opts.Format)
	}
	if opts.Watch && opts.ConfigPath == "" {
		return opts, fmt.Errorf("%w: -watch requires -config", errUsage)
	}
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return opts, fmt.Errorf("%w: invalid log level %q (must be debug, info, warn, or error)", errUsage, opts.LogLevel)
	}
	return opts, nil
}

func execute(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}

	log := logging.NewLogger(logging.LoggerConfig{
		Level:   logging.ParseLogLevel(cfg.Logging.Level),
		Output:  stderr,
		Prefix:  "richtext",
		Console: cfg.Logging.Console,
	})

	ed, err := engine.New(engine.WithConfig(cfg), engine.WithLogger(log))
	if err != nil {
		return err
	}
	defer ed.Close()

	if err := process(ctx, ed, opts, log); err != nil {
		return err
	}
	if err := emit(ed, opts, stdout); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}
	return watch(ctx, ed, opts, log, stdout)
}

// process loads the input and runs the script.
func process(ctx context.Context, ed *engine.Editor, opts options, log *logging.Logger) error {
	if opts.Input != "" {
		if err := loadInput(ed, opts.Input); err != nil {
			return err
		}
	}

	if opts.Script != "" {
		st, err := script.New(ed, script.WithLogger(log))
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.DoFile(ctx, opts.Script); err != nil {
			return fmt.Errorf("running %s: %w", opts.Script, err)
		}
	}
	return nil
}

func emit(ed *engine.Editor, opts options, stdout io.Writer) error {
	out, err := render(ed, opts.Format)
	if err != nil {
		return err
	}
	if opts.Output != "" {
		return os.WriteFile(opts.Output, []byte(out), 0o644)
	}
	_, err = io.WriteString(stdout, out)
	return err
}

// watch applies every reloaded config to ed, processes the input again
// and re-renders until ctx is done. A config that fails to load or
// validate is logged and the previous one stays in effect.
func watch(ctx context.Context, ed *engine.Editor, opts options, log *logging.Logger, stdout io.Writer) error {
	log.Info("watching %s", opts.ConfigPath)
	err := config.Watch(ctx, opts.ConfigPath, func(cfg *config.Config, err error) {
		if err == nil {
			err = ed.Reconfigure(cfg)
		}
		if err != nil {
			log.Warn("reload %s: %v", opts.ConfigPath, err)
			return
		}
		if err := process(ctx, ed, opts, log); err != nil {
			log.Warn("reprocess: %v", err)
			return
		}
		if err := emit(ed, opts, stdout); err != nil {
			log.Warn("render: %v", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadInput loads path according to its extension.
func loadInput(ed *engine.Editor, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return ed.LoadMarkdown(string(data))
	case ".json":
		return ed.LoadDocument(data)
	case ".html", ".htm", "":
		return ed.LoadMarkup(string(data))
	default:
		return fmt.Errorf("%w: unsupported input %q", errUsage, filepath.Ext(path))
	}
}

func render(ed *engine.Editor, format string) (string, error) {
	switch format {
	case formatJSON:
		data, err := ed.DocumentJSON(true)
		return strings.TrimRight(string(data), "\n") + "\n", err
	case formatTree:
		tree, err := ed.Tree()
		return tree + "\n", err
	case formatCompact:
		markup, err := ed.CompactMarkup()
		return markup + "\n", err
	case formatText:
		return ed.Text() + "\n", nil
	case formatStats:
		s := ed.Stats()
		return fmt.Sprintf("blocks: %d\nwords: %d\ncharacters: %d\n", s.Blocks, s.Words, s.Characters), nil
	default:
		return ed.Markup() + "\n", nil
	}
}
