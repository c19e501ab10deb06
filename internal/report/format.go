package report

import (
	"fmt"
	"strings"
)

// Format names an export format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatPDF, FormatMarkdown, FormatJSON}

// ParseFormat accepts a format name, case-insensitively. "markdown" is an
// alias for md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown report format %q", s)
}

// ParseFormats splits a comma-separated list. Duplicates collapse and blank
// entries are skipped.
func ParseFormats(list string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Filename suggests GEO_Report_<host>_<score>.<ext>. Characters outside
// [A-Za-z0-9.-] in host become underscores.
func Filename(host string, final float64, f Format) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, host)
	if safe == "" {
		safe = "page"
	}
	return fmt.Sprintf("GEO_Report_%s_%s.%s", safe, FormatScore(final), f)
}
