package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Requirement defines an external dependency freestyle relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries a batch run needs.
func Requirements(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Audio extraction, mastering, encoding, cover frames"},
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Duration probing of delivered audio"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// requiredFilters are the ffmpeg filters the mastering chain renders.
var requiredFilters = []string{
	"highpass", "lowshelf", "equalizer", "highshelf", "acompressor",
	"stereotools", "loudnorm", "alimiter",
}

// CheckFFmpegCapabilities asks ffmpeg for its encoder and filter lists and
// reports whether libmp3lame and every mastering filter are compiled in.
func CheckFFmpegCapabilities(ctx context.Context, ffmpegBinary string) Status {
	status := Status{
		Name:        "FFmpeg capabilities",
		Command:     strings.TrimSpace(ffmpegBinary),
		Description: "libmp3lame encoder and mastering filters",
	}
	if status.Command == "" {
		status.Detail = "command not configured"
		return status
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	encoders, err := exec.CommandContext(ctx, status.Command, "-hide_banner", "-encoders").Output()
	if err != nil {
		status.Detail = fmt.Sprintf("list encoders: %v", err)
		return status
	}
	filters, err := exec.CommandContext(ctx, status.Command, "-hide_banner", "-filters").Output()
	if err != nil {
		status.Detail = fmt.Sprintf("list filters: %v", err)
		return status
	}

	var missing []string
	if !hasToken(string(encoders), "libmp3lame") {
		missing = append(missing, "libmp3lame")
	}
	for _, name := range requiredFilters {
		if !hasToken(string(filters), name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		status.Detail = "missing: " + strings.Join(missing, ", ")
		return status
	}
	status.Available = true
	return status
}

// hasToken reports whether any line of listing carries name as a
// whitespace-separated field.
func hasToken(listing, name string) bool {
	for _, line := range strings.Split(listing, "\n") {
		for _, field := range strings.Fields(line) {
			if field == name {
				return true
			}
		}
	}
	return false
}
