// Package preflight provides readiness checks for the filesystem paths and
// external services a batch run depends on.
//
// These checks run in two contexts:
//   - The workflow runner calls RunAll before a batch. If any check fails the
//     batch stops before the first ffmpeg invocation.
//   - The CLI "freestyle deps" command renders the same results as a table.
//
// Publish checks are only included when Supabase credentials are configured.
package preflight
