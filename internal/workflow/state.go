package workflow

import (
	"time"

	"freestyle/internal/catalog"
	"freestyle/internal/manifest"
	"freestyle/internal/packaging"
	"freestyle/internal/services"
)

// State is a track's position in the per-item state machine.
type State string

const (
	StateExtracting State = "extracting"
	StateMastering  State = "mastering"
	StatePackaging  State = "packaging"
	StateRecorded   State = "recorded"
	StateSkipped    State = "skipped"
)

// Outcome is the terminal result for one track.
type Outcome struct {
	Track       catalog.Track
	State       State
	FailedStage State
	FailureKind services.FailureKind
	Err         error
	RequestID   string
	Artifacts   packaging.Artifacts
	Entry       manifest.Entry
	Elapsed     time.Duration
}

// Recorded reports whether the track produced a manifest entry.
func (o Outcome) Recorded() bool {
	return o.State == StateRecorded
}

// Summary describes a finished batch.
type Summary struct {
	RunID        string
	StartedAt    time.Time
	Elapsed      time.Duration
	Eligible     int
	Recorded     int
	Skipped      int
	Outcomes     []Outcome
	Entries      []manifest.Entry
	ManifestPath string
}

// HasFailures reports whether any eligible track was skipped.
func (s Summary) HasFailures() bool {
	return s.Skipped > 0
}
