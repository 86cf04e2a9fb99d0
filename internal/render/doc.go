// Package render turns a sanitized digest into newsletter HTML.
//
// Rendering walks a fixed state machine: Idle, TemplateResolved,
// ContextSanitized, Rendered, Audited, then Done or Failed. The template is
// resolved through path sanitization against the configured template root,
// with an embedded default when none is configured. The context is
// deep-sanitized before binding and bounded by a byte ceiling. After
// html/template execution an audit scan looks for residual script tags,
// inline event handlers, and disallowed href/src schemes; any finding swaps
// the output for a minimal fallback document rather than failing the run.
// Only template resolution problems propagate as fatal errors.
package render
