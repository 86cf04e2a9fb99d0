// Package collector gathers recently added items from the media-server
// library, scoped to the configured watched folders and the observation
// window, and deduplicates them by item identity.
//
// The collector owns no transport; it consumes the LibrarySource interface
// and treats retry exhaustion reported by the source as terminal for the
// run. Output ordering is the source's insertion order after filtering and
// dedup; items are not re-sorted at this stage.
package collector
