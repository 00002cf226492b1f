// Package services defines shared utilities consumed by the processing
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp workout IDs, routine IDs, intake triggers, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is and decide whether a workout id is consumed.
//
// Subpackages hold the tracker client (hevy) and the language model
// generators (llm).
package services
