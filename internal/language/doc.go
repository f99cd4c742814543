// Package language turns the ISO 639 codes carried by title tracks into
// canonical codes and display names.
//
// Codes are parsed with golang.org/x/text, so any registered ISO 639-1 or
// ISO 639-2 code (including bibliographic variants) is recognized. Streams
// occasionally carry the language as an English word; the small word table
// below covers those.
package language
