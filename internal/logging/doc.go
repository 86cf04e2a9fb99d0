// Package logging builds the slog loggers used across newsreel.
//
// Two output formats are supported: a compact human console format and
// JSON for machine consumption. File output rotates via lumberjack so a
// cron-driven installation never fills its log directory. Helper attr
// constructors keep call sites terse and a no-op logger backs tests and
// optional components.
package logging
