// Package config provides configuration management for bandcamper.
//
// This package handles:
//   - Loading settings from YAML/JSON files and BANDCAMPER_* environment variables
//   - Default configuration values
//   - The immutable Platform table (URL grammars, formats, email sender pattern)
//
// # Loading
//
//	settings, err := config.Load("/path/to/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// An empty path looks for bandcamper.yaml in the working directory and in
// $HOME/.config/bandcamper; a missing file leaves the defaults in place.
//
// # Environment
//
// Every key can be overridden with an environment variable, for example
// BANDCAMPER_EMAIL_TIMEOUT=2m or BANDCAMPER_FORMATS=flac,mp3-320.
//
// # Platform
//
// NewPlatform builds the process-wide table once; it is injected into the
// components that need it rather than read from package globals.
package config
