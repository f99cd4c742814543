// Package job models one transcoding job as seen by the reader: the chapter
// range to read, scan flags, the audio selection, the shared completion flag
// and the state sink.
package job
