// Package main hosts the ripfeed CLI entrypoint and command graph.
//
// The Cobra command tree loads a job file, runs the reader pipeline over the
// title it describes, and reports the outcome as tables. Scan passes can be
// stored in the scan database and listed later, and the watch command runs a
// scan whenever media is inserted into the configured drive.
//
// Configuration resolution and logger construction live in commandContext so
// subcommands only deal with their own flags and output.
package main
