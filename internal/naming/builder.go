package naming

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/bandcamper/internal/model"
)

// separators are treated as directory boundaries in rendered templates on
// every platform.
var separators = []string{"/", `\`}

// Builder renders templates into absolute destination paths.
type Builder struct {
	// Root is the destination directory every path is placed under.
	Root string

	// Platform selects the sanitization rules.
	Platform Platform
}

// Build renders template against ctx and returns the sanitized absolute path.
//
// The directory segments of the result are exactly the literal segments of
// the template; the file name never contains a separator. Empty segments
// collapse, and segments made only of dots are neutralized, so the result
// always stays under Root.
func (b Builder) Build(template string, ctx model.RenderContext) (string, error) {
	rendered, err := Format(template, ctx.WithoutSeparators(separators...))
	if err != nil {
		return "", err
	}

	dir, file := splitLast(rendered)
	file = strings.NewReplacer("/", "-", `\`, "-").Replace(file)

	parts := []string{b.Root}
	for _, seg := range splitAll(dir) {
		if seg = SanitizeSegment(seg, b.Platform); seg != "" {
			parts = append(parts, seg)
		}
	}
	file = SanitizeSegment(file, b.Platform)
	if file == "" {
		return "", fmt.Errorf("template %q rendered an empty file name", template)
	}
	parts = append(parts, file)

	out := filepath.Join(parts...)
	if !filepath.IsAbs(out) {
		if out, err = filepath.Abs(out); err != nil {
			return "", err
		}
	}
	return out, nil
}

func splitLast(s string) (dir, file string) {
	i := strings.LastIndexAny(s, `/\`)
	if i < 0 {
		return "", s
	}
	return s[:i], s[i+1:]
}

func splitAll(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '\\' })
}
