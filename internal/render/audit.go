package render

import (
	"fmt"
	"regexp"
)

// The audit pass runs over the final document, after template execution.
// Sanitization should already have removed everything these patterns match;
// a hit here means a template or sanitizer defect, and the digest content is
// withheld rather than shipped.
var (
	auditScriptPattern  = regexp.MustCompile(`(?i)<\s*/?\s*script`)
	auditHandlerPattern = regexp.MustCompile(`(?i)<[^>]*\bon\w+\s*=`)
	auditSchemePattern  = regexp.MustCompile(`(?i)\b(?:href|src)\s*=\s*["']?\s*(?:javascript|vbscript|data)\s*:`)
)

// audit scans rendered HTML for residual disallowed markup and returns one
// finding per pattern class that matched.
func audit(html string) []string {
	var findings []string
	if loc := auditScriptPattern.FindString(html); loc != "" {
		findings = append(findings, fmt.Sprintf("script tag: %q", loc))
	}
	if loc := auditHandlerPattern.FindString(html); loc != "" {
		findings = append(findings, fmt.Sprintf("inline event handler: %q", clip(loc, 80)))
	}
	if loc := auditSchemePattern.FindString(html); loc != "" {
		findings = append(findings, fmt.Sprintf("disallowed url scheme: %q", loc))
	}
	return findings
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
