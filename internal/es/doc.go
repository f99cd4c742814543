// Package es defines elementary-stream identifiers and the packet type that
// flows from the reader into the per-stream queues.
//
// Identifiers follow program-stream conventions so one demuxer can serve
// every source: plain PES stream ids keep their id byte, private stream 1
// substreams are folded into sub<<8|0xBD.
package es
