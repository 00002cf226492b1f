// Package daemon coordinates the long-running overloader process.
//
// It hosts the webhook listener, the bounded background task set and the
// reconciliation scheduler under a single lifecycle, with flock-based locking
// to prevent multiple instances. Webhook deliveries are acknowledged as soon
// as they are handed to the task set; the pipeline itself lives in the intake,
// overload and reconcile packages.
package daemon
