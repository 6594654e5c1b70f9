package naming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrTemplate is returned for malformed templates.
var ErrTemplate = errors.New("invalid template")

// Format renders template with values from ctx.
func Format(template string, ctx map[string]string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch ch {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed '{' at offset %d", ErrTemplate, i)
			}
			field := template[i+1 : i+1+end]
			if strings.ContainsRune(field, '{') {
				return "", fmt.Errorf("%w: nested '{' at offset %d", ErrTemplate, i)
			}
			out, err := formatField(field, ctx)
			if err != nil {
				return "", err
			}
			sb.WriteString(out)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				sb.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrTemplate, i)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String(), nil
}

func formatField(field string, ctx map[string]string) (string, error) {
	key, spec, _ := strings.Cut(field, ":")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("%w: empty placeholder", ErrTemplate)
	}
	value := ctx[key]
	if spec == "" {
		return value, nil
	}

	verb := spec[len(spec)-1]
	width := spec[:len(spec)-1]
	zero := strings.HasPrefix(width, "0")
	n := 0
	if width != "" {
		var err error
		if n, err = strconv.Atoi(width); err != nil || n < 0 {
			return "", fmt.Errorf("%w: bad width in {%s}", ErrTemplate, field)
		}
	}

	switch verb {
	case 'd':
		num, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			// absent or non-numeric values are kept as-is
			return value, nil
		}
		if zero {
			return fmt.Sprintf("%0*d", n, num), nil
		}
		return fmt.Sprintf("%*d", n, num), nil
	case 's':
		if zero {
			return "", fmt.Errorf("%w: zero padding on string in {%s}", ErrTemplate, field)
		}
		return fmt.Sprintf("%-*s", n, value), nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q in {%s}", ErrTemplate, spec, field)
	}
}
