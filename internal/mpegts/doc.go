// Package mpegts parses and writes MPEG transport streams.
//
// The reader side discovers programs through PAT and PMT sections and
// reassembles PES payloads per PID. The writer side produces the minimal
// single-program streams used by fixtures and stream sources.
package mpegts
