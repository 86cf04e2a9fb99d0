// Package notifications pushes run outcomes to an ntfy topic.
//
// When no topic is configured a noop service is returned, so callers never
// branch on whether notifications are enabled.
package notifications
