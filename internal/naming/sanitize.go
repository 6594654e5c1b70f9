package naming

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"unicode/utf8"
)

// Platform selects the reserved-character rules applied to path segments.
type Platform int

const (
	Linux Platform = iota
	Windows
	MacOS
	// Universal applies the strictest rules so paths are valid everywhere.
	Universal
)

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case Windows:
		return "windows"
	case MacOS:
		return "macos"
	default:
		return "universal"
	}
}

// ParsePlatform parses a platform name case-insensitively. "auto" resolves
// to the host platform and "darwin" is accepted for macOS.
func ParsePlatform(name string) (Platform, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "auto" {
		name = runtime.GOOS
	}
	switch name {
	case "linux":
		return Linux, nil
	case "windows":
		return Windows, nil
	case "macos", "darwin":
		return MacOS, nil
	case "universal":
		return Universal, nil
	default:
		// other unixes follow the linux rules
		if name == runtime.GOOS {
			return Linux, nil
		}
		return Universal, fmt.Errorf("unknown platform %q", name)
	}
}

var (
	windowsInvalid  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	windowsReserved = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])$`)
	whitespace      = regexp.MustCompile(`\s+`)
)

const maxSegmentBytes = 255

// SanitizeSegment makes a single path segment valid on platform p.
func SanitizeSegment(segment string, p Platform) string {
	switch p {
	case Linux:
		segment = strings.ReplaceAll(segment, "\x00", "")
		segment = strings.ReplaceAll(segment, "/", "_")
	case MacOS:
		segment = strings.ReplaceAll(segment, "\x00", "")
		segment = strings.NewReplacer("/", "_", ":", "_").Replace(segment)
	default:
		segment = windowsInvalid.ReplaceAllString(segment, "_")
		segment = strings.TrimRight(segment, ". ")
		base, _, _ := strings.Cut(segment, ".")
		if windowsReserved.MatchString(strings.TrimSpace(base)) {
			segment = base + "_" + strings.TrimPrefix(segment, base)
		}
	}

	// Collapse whitespace runs for cleaner names
	segment = strings.TrimSpace(whitespace.ReplaceAllString(segment, " "))

	if segment == "." || segment == ".." {
		segment = strings.Repeat("_", len(segment))
	}
	return truncateSegment(segment)
}

// truncateSegment shortens a segment to the common filesystem limit,
// keeping its extension.
func truncateSegment(segment string) string {
	if len(segment) <= maxSegmentBytes {
		return segment
	}
	ext := filepath.Ext(segment)
	if len(ext) > 16 {
		ext = ""
	}
	stem := segment[:maxSegmentBytes-len(ext)]
	for !utf8.ValidString(stem) {
		stem = stem[:len(stem)-1]
	}
	return stem + ext
}
