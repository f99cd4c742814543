// Package jobspec loads job definitions from TOML or YAML files.
//
// A job file has a [title] table describing the medium (locator, title
// index, primary video id, chapters and tracks) and a [job] table with the
// chapter range, audio selection and scan flags. Stream ids are written as
// integers, usually in hex: 0xE0 for MPEG video, 0x80BD for the first AC-3
// substream, 0x20BD for the first subpicture stream.
package jobspec
