// Package notifications delivers batch events to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// the batch runner can publish unconditionally. Delivery failures are
// returned to the caller, which logs them and carries on; a notification
// never fails a batch.
package notifications
