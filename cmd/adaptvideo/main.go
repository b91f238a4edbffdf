package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/menta2k/adaptvideo"
	"github.com/menta2k/adaptvideo/internal/config"
	"github.com/menta2k/adaptvideo/internal/console"
	"github.com/menta2k/adaptvideo/internal/logging"
)

// globals are the flags accepted before the command name.
type globals struct {
	configPath string
	baseURL    string
	logLevel   string
	verbose    bool
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, g globals, args []string) error
}

var commands = []command{
	{"templates", "list the output templates", runTemplates},
	{"history", "list uploaded videos and their conversions", runHistory},
	{"upload", "upload a video and show the suggested subjects", runUpload},
	{"preview", "generate preview frames for a template or for the original or converted video", runPreview},
	{"convert", "convert an uploaded video to a template", runConvert},
	{"compare", "show the before/after comparison of a converted video", runCompare},
	{"tui", "start the interactive terminal UI", runTUI},
}

func main() {
	var g globals
	flag.StringVar(&g.configPath, "config", "", "config file (default "+config.GetConfigPath()+")")
	flag.StringVar(&g.baseURL, "url", "", "service base URL, overrides the config")
	flag.StringVar(&g.logLevel, "log-level", "", "log level: debug|info|warn|error")
	flag.BoolVar(&g.verbose, "v", false, "print crop position and playback details")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	name := flag.Arg(0)
	var cmd *command
	for i := range commands {
		if commands[i].name == name {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, g, flag.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Printf("%s: %v", name, err)
		stop()
		os.Exit(1)
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "usage: %s [flags] <command> [command flags]\n\ncommands:\n", filepath.Base(os.Args[0]))
	for _, c := range commands {
		fmt.Fprintf(out, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(out, "\nflags:")
	flag.PrintDefaults()
}

// loadConfig reads the configuration and applies the global overrides.
func loadConfig(g globals) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.baseURL != "" {
		cfg.Server.BaseURL = g.baseURL
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	return cfg, cfg.Validate()
}

// newLogger logs to the configured file, or to stderr when none is set and
// file is empty.
func newLogger(cfg *config.Config, file string) (*slog.Logger, io.Closer, error) {
	if cfg.Log.File != "" {
		file = cfg.Log.File
	}
	return logging.New(logging.Options{Level: cfg.Log.Level, File: file, Writer: os.Stderr})
}

// newApp builds an application that prints to stdout.
func newApp(g globals) (*adaptvideo.App, io.Closer, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, nil, err
	}
	logger, closer, err := newLogger(cfg, "")
	if err != nil {
		return nil, nil, err
	}
	app, err := adaptvideo.New(cfg, console.New(os.Stdout, g.verbose), logger)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	return app, closer, nil
}
