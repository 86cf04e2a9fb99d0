// Package enrich attaches secondary-source metadata (poster, synopsis,
// rating) to collected movies and shows and assembles the final digest.
//
// Lookups for distinct titles run concurrently through a bounded worker
// pool; the run-scoped cache collapses concurrent lookups for the same
// normalized key into a single remote call. Lookup failures are recorded
// per item and never abort the run: a missing poster must never block
// newsletter generation.
//
// The cache lives exactly as long as one run. It is created at run start,
// discarded at run end, and never persisted or shared across runs.
package enrich
