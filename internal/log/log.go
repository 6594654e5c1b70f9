// Package log builds the zerolog loggers used by the bandcamper front-ends.
//
// Three output formats are supported:
//   - console: human-readable lines via zerolog.ConsoleWriter
//   - pretty: indented, colorized JSON
//   - json: one packed JSON object per line
package log

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatPretty  = "pretty"
	FormatJSON    = "json"
)

func newBaseLogger(w io.Writer) zerolog.Logger {
	return zerolog.
		New(w).
		With().
		Str("app", "bandcamper").
		Timestamp().
		Logger()
}

// New creates a logger writing to w in the given format at the given level.
func New(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %v", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch strings.ToLower(format) {
	case "", FormatConsole:
		return NewConsole(w).Level(lvl), nil
	case FormatPretty:
		return NewPretty(w).Level(lvl), nil
	case FormatJSON:
		return NewPacked(w).Level(lvl), nil
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}
}

// NewConsole returns a logger writing human-readable lines.
func NewConsole(w io.Writer) zerolog.Logger {
	return newBaseLogger(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"})
}

// NewPretty returns a logger writing indented, colorized JSON.
func NewPretty(w io.Writer) zerolog.Logger {
	return newBaseLogger(prettyWriter{w})
}

// NewPacked returns a logger writing one JSON object per line.
func NewPacked(w io.Writer) zerolog.Logger {
	return newBaseLogger(w)
}

type prettyWriter struct {
	out io.Writer
}

func (p prettyWriter) Write(line []byte) (int, error) {
	if n, err := p.out.Write(pretty.Color(pretty.Pretty(line), nil)); err != nil {
		return n, err
	}
	return len(line), nil
}
