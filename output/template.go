package output

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// tokenPattern matches {start_date} and {end_date} tokens, with an optional
// date format after a colon: {end_date:%Y-%m}.
var tokenPattern = regexp.MustCompile(`\{(start_date|end_date)(?::([^}]*))?\}`)

// anyTokenPattern matches every brace token, so placeholders outside the
// supported set can be rejected instead of leaking into the file name.
var anyTokenPattern = regexp.MustCompile(`\{([^{}:]*)(?::[^}]*)?\}`)

// defaultDateFormat is used for bare tokens without an explicit format.
const defaultDateFormat = "%Y-%m-%d"

// RenderPath expands the date tokens in a destination template against the
// resolved report range. An unknown placeholder or an unsupported date
// directive is an error.
func RenderPath(template string, start, end time.Time) (string, error) {
	for _, groups := range anyTokenPattern.FindAllStringSubmatch(template, -1) {
		if name := groups[1]; name != "start_date" && name != "end_date" {
			return "", fmt.Errorf("render %q: unknown placeholder {%s}", template, name)
		}
	}

	var renderErr error
	rendered := tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		groups := tokenPattern.FindStringSubmatch(match)

		t := start
		if groups[1] == "end_date" {
			t = end
		}
		format := groups[2]
		if format == "" {
			format = defaultDateFormat
		}

		s, err := formatDate(t, format)
		if err != nil && renderErr == nil {
			renderErr = fmt.Errorf("render %q: %w", template, err)
		}
		return s
	})
	if renderErr != nil {
		return "", renderErr
	}
	return rendered, nil
}

// formatDate formats t using a subset of strftime directives.
func formatDate(t time.Time, format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}

		i++
		if i >= len(format) {
			return "", fmt.Errorf("trailing %% in date format %q", format)
		}
		switch format[i] {
		case 'Y':
			fmt.Fprintf(&b, "%04d", t.Year())
		case 'y':
			fmt.Fprintf(&b, "%02d", t.Year()%100)
		case 'm':
			fmt.Fprintf(&b, "%02d", int(t.Month()))
		case 'd':
			fmt.Fprintf(&b, "%02d", t.Day())
		case 'H':
			fmt.Fprintf(&b, "%02d", t.Hour())
		case 'M':
			fmt.Fprintf(&b, "%02d", t.Minute())
		case 'S':
			fmt.Fprintf(&b, "%02d", t.Second())
		case 'j':
			fmt.Fprintf(&b, "%03d", t.YearDay())
		case '%':
			b.WriteByte('%')
		default:
			return "", fmt.Errorf("unsupported date directive %%%c in %q", format[i], format)
		}
	}
	return b.String(), nil
}
