// Package preflight provides readiness checks for the filesystem paths and
// media sources ripfeed depends on.
//
// These checks run in two contexts:
//   - The CLI "ripfeed check" command prints RunAll as a table.
//   - "ripfeed read" and "ripfeed scan" call CheckSourceReadable on the job's
//     locator before starting the pipeline so a bad path fails fast.
package preflight
