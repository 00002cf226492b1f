// Package preflight provides readiness checks for the tracker API, the model
// provider settings and the directories the daemon writes to.
//
// The daemon logs RunAll results at startup without refusing to start, and
// `overloader config validate --check` prints them and fails when any check
// does not pass.
package preflight
