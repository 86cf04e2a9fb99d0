// Package sanitize provides the pure functions applied to every
// externally-sourced string before it may reach the newsletter template.
//
// All functions are total: invalid input yields a safe replacement, never
// an error, with the single exception of Path which reports traversal
// attempts. Text that has passed through the sanitizer carries the
// SafeText type; the renderer accepts only SafeText, so an unsanitized
// string cannot reach a template by construction.
//
// Escaping is entity-aware so that sanitizing already-sanitized text is a
// no-op; grouping, caching, and rendering may therefore re-sanitize
// defensively without corrupting output.
package sanitize
