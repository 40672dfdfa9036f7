package workflow

import (
	"context"
	"sync"

	"freestyle/internal/catalog"
)

type trackFunc func(ctx context.Context, track catalog.Track) Outcome

// runTracks processes tracks with up to workers goroutines and returns the
// outcomes indexed like tracks. Tracks sharing a slug never run at the same
// time because they share on-disk paths.
func runTracks(ctx context.Context, tracks []catalog.Track, workers int, fn trackFunc) []Outcome {
	outcomes := make([]Outcome, len(tracks))
	if workers <= 1 || len(tracks) <= 1 {
		for i, track := range tracks {
			outcomes[i] = fn(ctx, track)
		}
		return outcomes
	}
	if workers > len(tracks) {
		workers = len(tracks)
	}

	slugLocks := make(map[string]*sync.Mutex, len(tracks))
	for _, track := range tracks {
		if _, ok := slugLocks[track.Slug]; !ok {
			slugLocks[track.Slug] = &sync.Mutex{}
		}
	}

	jobs := make(chan int, len(tracks))
	for i := range tracks {
		jobs <- i
	}
	close(jobs)

	type result struct {
		index   int
		outcome Outcome
	}
	results := make(chan result, len(tracks))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				track := tracks[i]
				mu := slugLocks[track.Slug]
				mu.Lock()
				out := fn(ctx, track)
				mu.Unlock()
				results <- result{index: i, outcome: out}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		outcomes[res.index] = res.outcome
	}
	return outcomes
}
