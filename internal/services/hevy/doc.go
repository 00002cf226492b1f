// Package hevy is a thin REST client for the Hevy workout tracker.
//
// It fetches completed workouts, pages through workout history, and reads and
// rewrites routines. Every request carries the api-key header; non-2xx replies
// surface as *StatusError with the status code and body text, and 401/403 are
// additionally tagged with services.ErrAuth.
package hevy
