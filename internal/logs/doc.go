// Package logs reads ripfeed's log files for the CLI.
//
// Last returns the final lines of a file, Follow streams lines appended after
// an offset until its context ends, and Resolve maps a job id (or unique id
// prefix) to the per-job log written by the pipeline. Reads are line-based
// with a bounded scanner buffer so very long log lines fail loudly instead of
// exhausting memory.
package logs
