// Package pipeline owns one reader run end to end.
//
// Run attaches a bounded queue to every track of the job's title, starts
// the reader and one consumer per queue under an errgroup, closes the
// queues once the reader returns, waits for the consumers to drain, and
// marks the job done. Consumers either write each elementary stream to
// <output_dir>/<job_id>/<kind>-<id>.es or discard what they receive.
package pipeline
