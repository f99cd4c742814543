// Package scanstore persists scan-pass results in SQLite.
//
// Each scan run is one row keyed by its run id, with one child row per
// subtitle track holding the packet count the reader observed. The schema
// is embedded and versioned; a database created by another version is
// rejected rather than migrated.
package scanstore
