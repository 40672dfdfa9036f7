package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"freestyle/internal/services"
)

// stderrTail bounds how much diagnostic text is attached to errors.
const stderrTail = 600

// run executes binary with args under timeout and returns captured stderr.
func run(ctx context.Context, stage, binary string, timeout time.Duration, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	configureProcessGroup(cmd)

	err := cmd.Run()
	diag := stderr.String()
	if err == nil {
		return diag, nil
	}

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return diag, services.Wrap(services.ErrTimeout, stage, binary, fmt.Sprintf("exceeded %s", timeout), ctx.Err())
	case errors.Is(ctx.Err(), context.Canceled):
		return diag, services.Wrap(services.ErrExternalTool, stage, binary, "canceled", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return diag, services.Wrap(services.ErrExternalTool, stage, binary,
			fmt.Sprintf("exit status %d: %s", exitErr.ExitCode(), tail(diag)), nil)
	}
	return diag, services.Wrap(services.ErrExternalTool, stage, binary, "start failed", err)
}

// requireOutput reports ErrMissingOutput unless path exists with content.
func requireOutput(stage, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrMissingOutput, stage, "verify output", path, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return services.Wrap(services.ErrMissingOutput, stage, "verify output", path+" is empty", nil)
	}
	return nil
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= stderrTail {
		return s
	}
	return "..." + s[len(s)-stderrTail:]
}
