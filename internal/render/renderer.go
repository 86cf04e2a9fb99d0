package render

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"newsreel/internal/logging"
	"newsreel/internal/media"
	"newsreel/internal/sanitize"
	"newsreel/internal/services"
)

//go:embed templates/newsletter.html
var defaultTemplate string

// State names the renderer's position in its lifecycle. Useful in logs; the
// renderer itself only branches on success or failure.
type State string

const (
	StateIdle             State = "idle"
	StateTemplateResolved State = "template_resolved"
	StateContextSanitized State = "context_sanitized"
	StateRendered         State = "rendered"
	StateAudited          State = "audited"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Statics are the operator-supplied template fields, unsanitized.
type Statics struct {
	Language         string
	Subject          string
	Title            string
	Subtitle         string
	ServerURL        string
	ServerOwnerName  string
	UnsubscribeEmail string
}

// Output is the rendering result. When the audit pass finds residual unsafe
// markup, HTML holds the fallback document and Findings lists what was seen.
type Output struct {
	HTML     string
	Findings []string
}

// Clean reports whether the audit pass accepted the rendered document.
func (o Output) Clean() bool { return len(o.Findings) == 0 }

// Renderer binds sanitized digests into HTML templates.
type Renderer struct {
	templateDir     string
	maxContextBytes int
	logger          *slog.Logger
	state           State
}

// New constructs a renderer. templateDir may be empty, in which case only
// the embedded default template is available. maxContextBytes bounds the
// sanitized context size; zero or negative disables the ceiling.
func New(templateDir string, maxContextBytes int, logger *slog.Logger) *Renderer {
	return &Renderer{
		templateDir:     templateDir,
		maxContextBytes: maxContextBytes,
		logger:          logging.NewComponentLogger(logger, "render"),
		state:           StateIdle,
	}
}

// State returns the renderer's position after the last Render call.
func (r *Renderer) State() State { return r.state }

type templateData struct {
	Statics     sanitize.Statics
	Movies      []sanitize.Movie
	Shows       []sanitize.Show
	Totals      media.LibraryTotals
	GeneratedAt time.Time
}

// Render resolves the template, sanitizes the context, executes the
// template, and audits the result. templateName may be empty to use the
// embedded default. Content-shaped problems never error; only path
// traversal, a missing template, an unparseable template, or an oversized
// context do.
func (r *Renderer) Render(templateName string, digest media.Digest, statics Statics) (Output, error) {
	r.state = StateIdle

	text, err := r.resolveTemplate(templateName)
	if err != nil {
		r.state = StateFailed
		return Output{}, err
	}
	r.state = StateTemplateResolved

	data := templateData{
		Statics: sanitize.ForStatics(
			statics.Language,
			statics.Subject,
			statics.Title,
			statics.Subtitle,
			statics.ServerURL,
			statics.ServerOwnerName,
			statics.UnsubscribeEmail,
		),
		GeneratedAt: digest.GeneratedAt,
	}
	cleaned := sanitize.ForDigest(digest)
	data.Movies = cleaned.Movies
	data.Shows = cleaned.Shows
	data.Totals = cleaned.Totals

	if r.maxContextBytes > 0 {
		size := cleaned.ByteSize() + data.Statics.ByteSize()
		if size > r.maxContextBytes {
			r.state = StateFailed
			return Output{}, services.Wrap(services.ErrContextTooLarge, "render", "context ceiling",
				fmt.Sprintf("sanitized context is %d bytes, limit %d", size, r.maxContextBytes), nil)
		}
	}
	r.state = StateContextSanitized

	tmpl, err := template.New("newsletter").Funcs(templateFuncs()).Parse(text)
	if err != nil {
		r.state = StateFailed
		return Output{}, services.Wrap(services.ErrTemplateNotFound, "render", "parse template", templateName, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		r.state = StateFailed
		return Output{}, services.Wrap(services.ErrTemplateNotFound, "render", "execute template", templateName, err)
	}
	r.state = StateRendered

	html := buf.String()
	findings := audit(html)
	r.state = StateAudited
	if len(findings) > 0 {
		r.logger.Warn("audit rejected rendered output",
			logging.Args(logging.Int("findings", len(findings)))...)
		r.state = StateDone
		return Output{HTML: fallbackDocument(data.Statics), Findings: findings}, nil
	}

	r.state = StateDone
	return Output{HTML: html}, nil
}

// resolveTemplate returns the template text. Custom templates are read from
// the configured root only after path sanitization.
func (r *Renderer) resolveTemplate(templateName string) (string, error) {
	if templateName == "" {
		return defaultTemplate, nil
	}
	if r.templateDir == "" {
		return "", services.Wrap(services.ErrTemplateNotFound, "render", "resolve template",
			"template configured without a template directory", nil)
	}
	resolved, err := sanitize.Path(templateName, r.templateDir)
	if err != nil {
		return "", services.Wrap(services.ErrPathTraversal, "render", "resolve template", templateName, err)
	}
	body, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", services.Wrap(services.ErrTemplateNotFound, "render", "resolve template", templateName, err)
		}
		return "", services.Wrap(services.ErrTemplateNotFound, "render", "read template", templateName, err)
	}
	return string(body), nil
}

// templateFuncs exposes the two safe-conversion helpers plus formatting.
// SafeText has already been HTML-escaped by the sanitizer, so text marks it
// pre-escaped to avoid double escaping; url only ever receives values that
// passed URL or email validation.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"text": func(s sanitize.SafeText) template.HTML { return template.HTML(s) },
		"url":  func(s sanitize.SafeText) template.URL { return template.URL(s) },
		"date": func(t time.Time) string { return t.Format("January 2, 2006") },
		"rating": func(value float64) string {
			return fmt.Sprintf("%.1f/10", value)
		},
	}
}

// fallbackDocument is returned when the audit pass finds residual unsafe
// markup. It carries no digest content at all.
func fallbackDocument(statics sanitize.Statics) string {
	title := string(statics.Title)
	if title == "" {
		title = "Newsletter"
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<p>This edition could not be rendered safely. Please check the server logs.</p>
</body>
</html>
`, title)
}
