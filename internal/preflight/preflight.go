package preflight

import (
	"context"

	"freestyle/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks a batch needs: readable input directories and
// writable output directories. Call after config.EnsureDirectories.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Video directory", cfg.Paths.VideoDir),
		CheckReadableDirectory("Metadata directory", cfg.Paths.MetadataDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
		CheckDirectoryAccess("Masters directory", cfg.Paths.MastersDir),
		CheckDirectoryAccess("Collection directory", cfg.CollectionDir()),
	}

	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, Result{Name: status.Name, Passed: status.Available || status.Optional, Detail: status.Detail})
	}
	return results
}

// Failed returns the subset of results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
