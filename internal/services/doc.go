// Package services defines the shared error taxonomy and context helpers
// consumed by the newsletter pipeline and its external integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     as fatal (abort the run) or per-item (absorbed and counted).
//   - Context helpers that stamp run and step identifiers for logging.
//
// Use these helpers when wiring new pipeline logic so error handling and
// observability stay uniform across steps.
package services
