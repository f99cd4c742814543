// Package reader implements the worker that feeds a job's elementary-stream
// queues.
//
// A Reader opens the title's source (disc first, stream second), resolves
// the job's logical chapter range to on-media chapters, then reads container
// units, demultiplexes them and routes each packet to the video, audio or
// subtitle queue chosen by the Dispatcher. Packets are sequence numbered in
// production order. Full queues are waited on; cancellation of the run
// context or completion of the job drops the pending packet and stops the
// worker. The source is stopped and closed exactly once on every exit path.
//
// In scan mode the reader counts subtitle packets per track, skips video and
// audio, and reports chapter-based progress to the job's state sink.
package reader
