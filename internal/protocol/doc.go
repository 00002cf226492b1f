// Package protocol is the text contract with the language model.
//
// BuildPrompt renders the completed workout, the routine template and any
// deload guidance into a single coaching prompt. ParseResponse extracts the
// JSON reply (optionally fenced), requires a well-formed updated_exercises
// array and defaults the ancillary week_number and routine_title fields.
package protocol
