package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/handiism/bandcamper/internal/config"
	"github.com/handiism/bandcamper/internal/log"
	"github.com/handiism/bandcamper/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env file: %v\n", err)
		os.Exit(1)
	}

	var configPath, logFile string
	cmd := &cobra.Command{
		Use:           "bandcamper-tui",
		Short:         "Interactive front-end for bandcamper",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			settings, err := config.Load(configPath)
			if err != nil {
				return err
			}
			platform := config.NewPlatform()
			if err := settings.Validate(platform); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			// The alternate screen owns the terminal, so diagnostics go to a file or nowhere.
			logger := zerolog.Nop()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return err
				}
				defer f.Close()
				if logger, err = log.New(f, settings.LogLevel, log.FormatJSON); err != nil {
					return err
				}
			}

			return tui.Run(settings, platform, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file path")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write diagnostic logs to this file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
