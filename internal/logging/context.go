package logging

import "log/slog"

// Standard attribute keys.
const (
	FieldComponent  = "component"
	FieldJobID      = "job_id"
	FieldRunID      = "run_id"
	FieldTitleIndex = "title_index"
	// FieldSourceKind records which source variant (disc or stream) is open.
	FieldSourceKind = "source_kind"
	// FieldEventType tags log lines with a stable machine-readable event name.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step after a failure.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// WithRunID returns a logger whose records all carry runID.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	if logger == nil || runID == "" {
		return logger
	}
	return logger.With(String(FieldRunID, runID))
}
