package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/example/stackscan/internal/config"
)

func newInitTestCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	cmd := newInitCmd(loader)
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	return cmd, buf
}

func TestInitCommandPasses(t *testing.T) {
	outputDir := t.TempDir()

	cmd, buf := newInitTestCmd(t)
	cmd.SetArgs([]string{
		"--targets", "https://example.com",
		"--detectors", "pattern",
		"--output-dir", outputDir,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init command failed: %v", err)
	}
	if !strings.Contains(buf.String(), outputDir) {
		t.Errorf("output %q should mention the output dir", buf.String())
	}
}

func TestInitCommandRequiresTargets(t *testing.T) {
	cmd, _ := newInitTestCmd(t)
	cmd.SetArgs([]string{"--detectors", "pattern", "--output-dir", t.TempDir()})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when no targets are configured")
	}
}

func TestInitCommandSkipsBinaryCheck(t *testing.T) {
	cmd, _ := newInitTestCmd(t)
	cmd.SetArgs([]string{
		"--targets", "https://example.com",
		"--detectors", "whatweb",
		"--output-dir", t.TempDir(),
		"--skip-binary-check",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init with skip flag failed: %v", err)
	}
}
