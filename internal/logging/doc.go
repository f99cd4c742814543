// Package logging builds the slog loggers ripfeed components share.
//
// Two formats exist: a single-line console format that hoists the component
// name in front of the message, and JSON. Job runs tee records into a per-job
// file through TeeLogger and NewFileHandler. WarnWithContext and
// ErrorWithContext guarantee every problem report carries an event type and a
// hint for the operator.
package logging
