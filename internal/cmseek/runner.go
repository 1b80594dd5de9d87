// Package cmseek drives the external CMSeeK scanner binary and converts its
// text output into raw detections.
package cmseek

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner defines the operations needed to drive cmseek.
type Runner interface {
	EnsureBinary() error
	Analyze(ctx context.Context, url string) ([]byte, error)
}

// CommandRunner executes the real cmseek binary on the host.
type CommandRunner struct {
	Binary string
}

// NewRunner returns a default command runner.
func NewRunner() Runner {
	return &CommandRunner{Binary: "cmseek"}
}

// EnsureBinary verifies that cmseek is discoverable on PATH.
func (r *CommandRunner) EnsureBinary() error {
	if _, err := exec.LookPath(r.Binary); err != nil {
		return fmt.Errorf("cmseek binary not found: %w", err)
	}
	return nil
}

// Analyze runs cmseek against one URL in non-interactive batch mode and
// returns its console output. Cancellation and timeouts are controlled by
// the caller's context.
func (r *CommandRunner) Analyze(ctx context.Context, url string) ([]byte, error) {
	args := []string{"-u", url, "-v", "--batch"}

	// Binary path is controlled by the application and args are constructed
	// programmatically from validated inputs, making command injection impossible.
	cmd := exec.CommandContext(ctx, r.Binary, args...) // #nosec G204

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// cmseek exits non-zero on some clean runs; only fail when nothing
		// usable was produced.
		if stdout.Len() == 0 {
			return nil, fmt.Errorf("cmseek failed: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
		}
	}
	return stdout.Bytes(), nil
}
