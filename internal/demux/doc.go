// Package demux splits MPEG program-stream container units into elementary
// packets tagged with their stream identifier.
//
// The reader treats demultiplexing as an external collaborator behind the
// Demuxer contract; PS is the implementation used for both disc packs and
// transport streams that the stream source has re-wrapped as packs. Pack
// builds program-stream packs and is shared by the stream source and the
// test fixtures.
package demux
