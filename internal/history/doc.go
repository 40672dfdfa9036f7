// Package history persists batch run outcomes in SQLite.
//
// Each batch records one runs row (identifier, timestamps, counts, exit
// status) and one items row per eligible track with its terminal state, the
// stage that failed, and the failure classification. The CLI "freestyle
// history" command reads these back; nothing in the pipeline depends on prior
// history, so deleting the database is always safe.
//
// Queries are built with squirrel and executed with busy-retry semantics so a
// long-running scheduled batch and an interactive history listing can share
// the file.
package history
