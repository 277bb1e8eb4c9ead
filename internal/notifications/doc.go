// Package notifications publishes pipeline events to an ntfy topic. Batch,
// review, and error notifications can be toggled independently; when no topic
// is configured every notification is a no-op.
package notifications
