// Package jobstate carries the state events a job publishes to the
// process-wide progress sink.
//
// The reader only emits the Working variant while scanning; Sink
// implementations here log sampled progress, record events for callers that
// summarise a run, or fan events out to several sinks.
package jobstate
