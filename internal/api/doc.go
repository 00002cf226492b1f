// Package api defines wire-format types and converters for the HTTP surface
// and the CLI. It translates pipeline results, sync summaries and tracker
// workouts into transport-friendly DTOs so consumers do not couple to
// internal types.
//
// DTOs use camelCase JSON tags, except for the webhook body whose shape is
// fixed by the tracker. Timestamps use RFC3339 with milliseconds.
package api
