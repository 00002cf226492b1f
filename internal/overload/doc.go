// Package overload orchestrates one progressive-overload transaction.
//
// Service.Process parses the cycle position from the workout title, builds
// deload context at block end, renders the prompt, calls the generator and
// validates the reply. BuildRoutineUpdate maps the resulting Plan to the
// tracker's write-side routine shape, attaching compact set summaries as
// exercise notes.
package overload
