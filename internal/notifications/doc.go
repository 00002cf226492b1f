// Package notifications pushes pipeline events to the athlete via ntfy.
//
// The ntfy implementation posts plain-text messages to the configured topic
// URL and degrades to a no-op when no topic is set. Routine updates and
// failures can be switched off independently in the [notifications] config
// section; callers only depend on the Service interface.
package notifications
