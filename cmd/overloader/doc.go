// Command overloader is the operator CLI for the progressive overload daemon.
//
// It runs the daemon in the foreground (serve), drives one-shot pipeline runs
// (sync, process), inspects workout history and manages configuration. One-shot
// commands log to stderr and keep stdout for tables or --json output.
package main
