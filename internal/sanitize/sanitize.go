package sanitize

import (
	"net/mail"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"newsreel/internal/services"
)

// SafeText is a string that has passed through EscapeText. The renderer
// accepts only SafeText, never raw strings.
type SafeText string

// String returns the sanitized text.
func (s SafeText) String() string { return string(s) }

// Default length limits per content class. Bound rendered payload size and
// block resource exhaustion via oversized fields.
const (
	MaxTitleLen           = 200
	MaxSynopsisLen        = 300
	MaxEpisodeSynopsisLen = 150
	MaxFieldLen           = 1000
)

var (
	// Dangerous substrings are stripped before escaping, case-insensitively,
	// even when they appear inside otherwise harmless text.
	scriptTagPattern    = regexp.MustCompile(`(?i)<\s*/?\s*script`)
	scriptSchemePattern = regexp.MustCompile(`(?i)(?:java|vb)script\s*:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)

	// entityPattern recognises an already-encoded character reference so a
	// second escape pass leaves it alone.
	entityPattern = regexp.MustCompile(`^&(?:[a-zA-Z][a-zA-Z0-9]{1,31}|#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6});`)

	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9\-]*[A-Za-z0-9])?)*\.[A-Za-z]{2,}$`)
)

// EscapeText HTML-escapes the string and neutralizes known dangerous
// substrings (script tags, javascript:/vbscript: schemes, inline event
// handlers) by stripping them before escaping. Total and idempotent:
// escaping already-escaped text changes nothing.
func EscapeText(value string) SafeText {
	return SafeText(escapeHTML(neutralize(stripControl(value))))
}

// neutralize removes dangerous substrings until none remain; stripping one
// match can expose another (e.g. "jav<scriptascript:"), so it loops to a
// fixed point with a hard iteration bound.
func neutralize(value string) string {
	for range 16 {
		next := scriptTagPattern.ReplaceAllString(value, "")
		next = scriptSchemePattern.ReplaceAllString(next, "")
		next = eventHandlerPattern.ReplaceAllString(next, "")
		if next == value {
			return next
		}
		value = next
	}
	return value
}

// stripControl drops control characters other than tab, newline, and
// carriage return.
func stripControl(value string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
}

// escapeHTML escapes the five HTML-significant characters, leaving an
// ampersand untouched when it already begins a character reference.
func escapeHTML(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '&':
			if entityPattern.MatchString(value[i:]) {
				b.WriteByte('&')
			} else {
				b.WriteString("&amp;")
			}
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&#34;")
		case '\'':
			b.WriteString("&#39;")
		default:
			b.WriteByte(value[i])
		}
	}
	return b.String()
}

// ClampLength truncates the text to at most maxLen runes. A non-positive
// maxLen clamps to empty.
func ClampLength(value SafeText, maxLen int) SafeText {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(string(value))
	if len(runes) <= maxLen {
		return value
	}
	return SafeText(runes[:maxLen])
}

// Text is the standard field pipeline: escape then clamp.
func Text(value string, maxLen int) SafeText {
	return ClampLength(EscapeText(value), maxLen)
}

// URL returns the URL unchanged when it parses and carries an http, https,
// or mailto scheme. Anything else yields ok=false and the field is omitted
// from the render rather than emitted as a dangerous link.
func URL(raw string) (SafeText, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > MaxFieldLen {
		return "", false
	}
	if strings.ContainsAny(trimmed, " \t\n\r\"'<>\\") {
		return "", false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto":
		return SafeText(trimmed), true
	default:
		return "", false
	}
}

// Email returns the address when it matches a conservative local@domain
// shape parseable as a single bare address.
func Email(raw string) (SafeText, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || len(trimmed) > 254 {
		return "", false
	}
	if !emailPattern.MatchString(trimmed) {
		return "", false
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", false
	}
	return SafeText(trimmed), true
}

// Path resolves requested against allowedRoot and fails when the resolved
// path is not a descendant of the root. Defends template selection against
// "../" escapes. The check is lexical; the root itself must be trusted.
func Path(requested, allowedRoot string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return "", services.Wrap(services.ErrPathTraversal, "sanitize", "path", "empty template name", nil)
	}
	root, err := filepath.Abs(allowedRoot)
	if err != nil {
		return "", services.Wrap(services.ErrPathTraversal, "sanitize", "path", "resolve template root", err)
	}
	resolved := filepath.Clean(filepath.Join(root, requested))
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", services.Wrap(services.ErrPathTraversal, "sanitize", "path",
			"template path escapes template root", nil)
	}
	return resolved, nil
}
