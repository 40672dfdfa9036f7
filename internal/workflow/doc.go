// Package workflow runs a batch: load sidecars, plan tracks, push each track
// through extraction, mastering and packaging, then write the manifest.
//
// Each track moves Extracting -> Mastering -> Packaging -> Recorded, or to
// Skipped on the first failing stage. Stages are attempted once. A skipped
// track never reaches the manifest and never affects its neighbours. With
// workflow.workers > 1 tracks run on a bounded pool, but outcomes are
// collected by position so the manifest order is the planned order.
//
// A batch holds an exclusive file lock in the work directory for its whole
// duration, records itself in the history store when one is configured, and
// publishes start, failure and completion events to the notifier.
package workflow
