package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/handiism/bandcamper/internal/download"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
	albumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F8B500"))
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)
)

// printer renders progress events as styled lines.
type printer struct {
	out     io.Writer
	verbose bool
}

func newPrinter(out io.Writer, verbose bool) *printer {
	return &printer{out: out, verbose: verbose}
}

func (p *printer) Event(e download.ProgressEvent) {
	if e.Level == download.LevelVerbose && !p.verbose {
		return
	}
	var (
		style  lipgloss.Style
		prefix string
	)
	switch e.Level {
	case download.LevelError:
		style, prefix = errorStyle, "✗"
	case download.LevelWarning:
		style, prefix = warningStyle, "!"
	case download.LevelSuccess:
		style, prefix = successStyle, "✓"
	case download.LevelInfo:
		style, prefix = infoStyle, "›"
	default:
		style, prefix = dimStyle, "·"
	}
	fmt.Fprintln(p.out, style.Render(prefix+" "+e.Message))
}

// eventLogger forwards progress events to the diagnostic logger.
func eventLogger(logger zerolog.Logger, verbose bool) func(download.ProgressEvent) {
	return func(e download.ProgressEvent) {
		var lvl zerolog.Level
		switch e.Level {
		case download.LevelVerbose:
			if !verbose {
				return
			}
			lvl = zerolog.DebugLevel
		case download.LevelWarning:
			lvl = zerolog.WarnLevel
		case download.LevelError:
			lvl = zerolog.ErrorLevel
		default:
			lvl = zerolog.InfoLevel
		}
		logger.WithLevel(lvl).Str("event", e.Level.String()).Msg(e.Message)
	}
}

func printPlan(out io.Writer, report *download.Report) {
	fmt.Fprintln(out, titleStyle.Render("Releases"))
	for _, ir := range report.Identifiers {
		if ir.Err != nil {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ %s: %v", ir.Identifier, ir.Err)))
			continue
		}
		fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("%s (%d)", ir.Identifier, len(ir.Releases))))
		for _, r := range ir.Releases {
			fmt.Fprintln(out, albumStyle.Render("  ♪ "+r.URL))
		}
	}
	if report.Interrupted {
		fmt.Fprintln(out, warningStyle.Render("Interrupted."))
	}
}

func printSummary(out io.Writer, report *download.Report) {
	var b strings.Builder
	for _, ir := range report.Identifiers {
		if ir.Err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", ir.Identifier, ir.Err)))
			b.WriteString("\n")
			continue
		}
		ok := 0
		for _, r := range ir.Releases {
			if r.OK() {
				ok++
			}
		}
		line := fmt.Sprintf("%s: %d release(s), %d succeeded, %d failed",
			ir.Identifier, len(ir.Releases), ok, len(ir.Releases)-ok)
		style := successStyle
		if ok < len(ir.Releases) {
			style = warningStyle
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Releases: %d succeeded, %d failed\n", report.Succeeded, report.Failed)
	fmt.Fprintf(&b, "Files placed: %d\n", report.FilesPlaced)
	fmt.Fprintf(&b, "Tags: %d written, %d failed", report.TagsWritten, report.TagsFailed)
	if report.Interrupted {
		b.WriteString("\n")
		b.WriteString(warningStyle.Render("Interrupted before the batch completed."))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, boxStyle.Render(b.String()))
}
