// Package source provides the two container sources the reader pulls from.
//
// A Disc is chapter addressable and must be started at a title and chapter
// before units can be read. A Stream is linear, reports a single chapter, and
// can be restricted to one audio elementary stream. Open tries the disc
// variant first and falls back to the stream variant.
//
// FileOpener implements both against the filesystem: disc images are
// directories described by a TOML manifest, streams are MPEG transport
// stream files whose PES packets are re-wrapped as program-stream packs so
// one demuxer serves both variants.
package source
