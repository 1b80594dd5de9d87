// Package whatweb drives the external whatweb scanner binary and converts
// its JSON log output into raw detections.
package whatweb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner defines the operations needed to drive whatweb.
type Runner interface {
	EnsureBinary() error
	Analyze(ctx context.Context, url string) ([]byte, error)
}

// CommandRunner executes the real whatweb binary on the host.
type CommandRunner struct {
	Binary string
}

// NewRunner returns a default command runner.
func NewRunner() Runner {
	return &CommandRunner{Binary: "whatweb"}
}

// EnsureBinary verifies that whatweb is discoverable on PATH.
func (r *CommandRunner) EnsureBinary() error {
	if _, err := exec.LookPath(r.Binary); err != nil {
		return fmt.Errorf("whatweb binary not found: %w", err)
	}
	return nil
}

// Analyze runs whatweb against one URL and returns its JSON log output.
// Cancellation and timeouts are controlled by the caller's context.
func (r *CommandRunner) Analyze(ctx context.Context, url string) ([]byte, error) {
	args := []string{"-q", "--log-json=-", url}

	// Binary path is controlled by the application and args are constructed
	// programmatically from validated inputs, making command injection impossible.
	cmd := exec.CommandContext(ctx, r.Binary, args...) // #nosec G204

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// whatweb writes partial JSON before some failures; only fail the
		// run when nothing usable was produced.
		if stdout.Len() == 0 {
			return nil, fmt.Errorf("whatweb failed: %w (%s)", err, bytes.TrimSpace(stderr.Bytes()))
		}
	}
	return stdout.Bytes(), nil
}
