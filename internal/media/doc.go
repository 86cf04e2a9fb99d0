// Package media defines the domain model shared across the newsletter
// pipeline: raw library items as reported by the media server, and the
// enriched digest assembled from them.
//
// RawItem values are produced by the library source, consumed during
// collection and grouping, and discarded. The Digest and its nested
// movie/show/season/episode records are built once per run by the
// enricher and are treated as immutable afterwards; nothing mutates a
// digest after it has been handed to the renderer.
package media
