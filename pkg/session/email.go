package session

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// addressShape rejects whitespace, empty parts, stray @s, and dotless
// domains; the domain part is then checked against the public suffix list.
var addressShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidAddress reports whether addr is an acceptable report recipient.
func ValidAddress(addr string) bool {
	if !addressShape.MatchString(addr) {
		return false
	}
	host := addr[strings.LastIndex(addr, "@")+1:]
	if _, err := publicsuffix.Domain(strings.ToLower(host)); err != nil {
		return false
	}
	return true
}

// ComposeReport renders the run transcript as the HTML body of the report
// email, one paragraph per line, errors in red and warnings in amber.
func ComposeReport(transcript []string, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
	b.WriteString("<h2>dining-audit error report</h2>\n")
	fmt.Fprintf(&b, "<p>Generated %s</p>\n", generatedAt.Format(time.RFC1123))

	if len(transcript) == 0 {
		b.WriteString("<p>No errors or warnings were recorded.</p>\n")
	}
	for _, line := range transcript {
		color := "#1a1a1a"
		if strings.HasPrefix(line, "[ERROR]") {
			color = "#c0392b"
		} else if strings.HasPrefix(line, "[WARN]") {
			color = "#b8860b"
		}
		fmt.Fprintf(&b, "<p style=\"color:%s\">%s</p>\n", color, html.EscapeString(line))
	}

	b.WriteString("</body>\n</html>\n")
	return b.String()
}
