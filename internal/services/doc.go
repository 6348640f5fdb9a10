// Package services defines shared utilities consumed by the query, timeline,
// and pipeline packages.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and record keys for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     configuration problems, decode failures, or external tool errors.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across a run.
package services
