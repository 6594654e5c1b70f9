package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/handiism/bandcamper/internal/config"
	"github.com/handiism/bandcamper/internal/download"
	"github.com/handiism/bandcamper/internal/log"
)

const (
	exitOK          = 0
	exitConfig      = 1
	exitInterrupted = 130
)

// exitError carries a process exit code out of the command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type flags struct {
	configPath   string
	destination  string
	output       string
	outputExtra  string
	formats      []string
	noFallback   bool
	noForceHTTPS bool
	emailTimeout time.Duration
	platform     string
	playlist     bool
	verbose      bool
	logLevel     string
	logFormat    string
	dryRun       bool
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(exitConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err == nil {
		os.Exit(exitOK)
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", exit.err)
		}
		os.Exit(exit.code)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitConfig)
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "bandcamper [identifiers...]",
		Short: "Download freely available releases from Bandcamp",
		Long: `Download freely available releases from Bandcamp.

Identifiers may be artist or label subdomains ("examplelabel"), artist
pages, custom domains, or album and track URLs. Releases are downloaded
through their free download page, the email-gated download form, or, as a
last resort, the embedded preview streams.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, *f, args)
		},
	}
	registerFlags(cmd, f)
	return cmd
}

func registerFlags(cmd *cobra.Command, f *flags) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configPath, "config", "c", "", "config file path (default ./bandcamper.yaml or ~/.config/bandcamper/bandcamper.yaml)")
	fl.StringVarP(&f.destination, "destination", "d", "", "root directory for downloaded files")
	fl.StringVarP(&f.output, "output", "o", "", "path template for audio files")
	fl.StringVar(&f.outputExtra, "output-extra", "", "path template for non-audio files")
	fl.StringSliceVarP(&f.formats, "format", "f", nil, "download format, repeatable (flac, mp3-320, mp3-v0, mp3-128, ...)")
	fl.BoolVar(&f.noFallback, "no-fallback", false, "never fall back to preview streams")
	fl.BoolVar(&f.noForceHTTPS, "no-force-https", false, "keep the scheme of input URLs")
	fl.DurationVar(&f.emailTimeout, "email-timeout", 0, "how long to wait for a download email")
	fl.StringVar(&f.platform, "platform", "", "filename rules: auto, linux, windows, macos, universal")
	fl.BoolVar(&f.playlist, "playlist", false, "write a playlist per release")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "show verbose progress")
	fl.StringVar(&f.logLevel, "log-level", "", "diagnostic log level (trace, debug, info, warn, error)")
	fl.StringVar(&f.logFormat, "log-format", "", "diagnostic log format (console, pretty, json)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "resolve identifiers and list releases without downloading")
}

func run(cmd *cobra.Command, f flags, args []string) error {
	settings, err := config.Load(f.configPath)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}
	applyFlags(cmd, f, settings)

	platform := config.NewPlatform()
	if err := settings.Validate(platform); err != nil {
		return &exitError{code: exitConfig, err: fmt.Errorf("invalid configuration: %w", err)}
	}

	logger, err := log.New(os.Stderr, settings.LogLevel, settings.LogFormat)
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	out := cmd.OutOrStdout()
	var onProgress func(download.ProgressEvent)
	if strings.EqualFold(settings.LogFormat, log.FormatJSON) {
		onProgress = eventLogger(logger, f.verbose)
	} else {
		onProgress = newPrinter(out, f.verbose).Event
	}

	manager, err := download.NewManager(settings, platform, onProgress, download.WithLogger(logger))
	if err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	ctx := cmd.Context()
	if f.dryRun {
		report := manager.Plan(ctx, args)
		printPlan(out, report)
		if report.Interrupted {
			return &exitError{code: exitInterrupted}
		}
		return nil
	}

	logger.Debug().
		Strs("identifiers", args).
		Strs("formats", settings.Formats).
		Str("destination", settings.Destination).
		Msg("Starting batch")

	report := manager.Run(ctx, args)
	printSummary(out, report)
	if report.Interrupted {
		return &exitError{code: exitInterrupted}
	}
	return nil
}

// applyFlags layers explicitly set flags over the loaded settings.
func applyFlags(cmd *cobra.Command, f flags, s *config.Settings) {
	changed := cmd.Flags().Changed
	if changed("destination") {
		s.Destination = f.destination
	}
	if changed("output") {
		s.Output = f.output
	}
	if changed("output-extra") {
		s.OutputExtra = f.outputExtra
	}
	if changed("format") {
		s.Formats = f.formats
	}
	if f.noFallback {
		s.Fallback = false
	}
	if f.noForceHTTPS {
		s.ForceHTTPS = false
	}
	if changed("email-timeout") {
		s.EmailTimeout = f.emailTimeout
	}
	if changed("platform") {
		s.Platform = f.platform
	}
	if f.playlist {
		s.CreatePlaylist = true
	}
	if changed("log-level") {
		s.LogLevel = f.logLevel
	}
	if changed("log-format") {
		s.LogFormat = f.logFormat
	}
	if f.verbose && !changed("log-level") {
		s.LogLevel = zerolog.DebugLevel.String()
	}
}
