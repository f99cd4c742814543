// Package title holds the read-only metadata describing one input title:
// its chapters, its audio tracks and its subtitle tracks.
//
// Titles are built before a job starts and never change afterwards, with one
// exception: SubtitleTrack hit counters are incremented by the reader during
// scan passes and read by the owning pipeline once the reader has stopped.
package title
