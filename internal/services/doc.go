// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, track slugs, stage names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper, and Classify, which turns
//     a stage failure into the kind recorded in run history.
//
// Use these helpers when wiring new stage logic so failure handling and
// observability stay uniform across the pipeline.
package services
