package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/core"
	"github.com/example/stackscan/internal/report"
)

func seedAnalysisArtifact(t *testing.T, dir, domain string, technologies []core.MergedTechnology) {
	t.Helper()
	rep := report.DomainReport{
		Domain:       domain,
		URL:          "https://" + domain,
		GeneratedAt:  time.Now().UTC(),
		Technologies: technologies,
		Summary:      report.BuildSummary(technologies),
	}
	if err := report.WriteJSON(report.ArtifactPath(dir, domain), rep); err != nil {
		t.Fatalf("seed artifact for %s: %v", domain, err)
	}
}

func TestPropagateCommandWritesAdjustedArtifacts(t *testing.T) {
	dir := t.TempDir()

	// nginx appears on both domains from two sources, so it earns a
	// frequency bonus of 1 and a diversity bonus of 3.
	nginx := core.MergedTechnology{
		Name: "nginx", Confidence: 70, Category: "Web Server",
		Sources: []string{"pattern", "whatweb"},
	}
	seedAnalysisArtifact(t, dir, "one.test", []core.MergedTechnology{nginx})
	seedAnalysisArtifact(t, dir, "two.test", []core.MergedTechnology{nginx})

	profilesPath := filepath.Join(dir, "profiles.json")

	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	cmd := newPropagateCmd(loader)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input-dir", dir, "--profiles-file", profilesPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("propagate command failed: %v", err)
	}

	adjusted, err := report.Load(report.AdjustedPath(dir, "one.test"))
	if err != nil {
		t.Fatalf("load adjusted artifact: %v", err)
	}
	if got := adjusted.Technologies[0].Confidence; got != 74 {
		t.Errorf("adjusted confidence = %d, want 74", got)
	}

	data, err := os.ReadFile(profilesPath)
	if err != nil {
		t.Fatalf("read profiles: %v", err)
	}
	var profiles []core.TechnologyProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		t.Fatalf("parse profiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "nginx" {
		t.Fatalf("profiles = %+v, want one nginx entry", profiles)
	}
	if profiles[0].DomainOccurrences != 2 {
		t.Errorf("domain occurrences = %d, want 2", profiles[0].DomainOccurrences)
	}
}

func TestPropagateCommandEmptyDirectory(t *testing.T) {
	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	cmd := newPropagateCmd(loader)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input-dir", t.TempDir()})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a directory without artifacts")
	}
}

func TestPropagateCommandIdempotent(t *testing.T) {
	dir := t.TempDir()
	seedAnalysisArtifact(t, dir, "one.test", []core.MergedTechnology{
		{Name: "wordpress", Confidence: 80, Category: "CMS", Sources: []string{"pattern"}},
	})

	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	for i := 0; i < 2; i++ {
		cmd := newPropagateCmd(loader)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"--input-dir", dir})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("propagate run %d failed: %v", i+1, err)
		}
	}

	// A single-domain, single-source technology earns no bonus, and the
	// second run reads the original artifacts again, not the adjusted ones.
	adjusted, err := report.Load(report.AdjustedPath(dir, "one.test"))
	if err != nil {
		t.Fatalf("load adjusted artifact: %v", err)
	}
	if got := adjusted.Technologies[0].Confidence; got != 80 {
		t.Errorf("adjusted confidence = %d, want 80", got)
	}
}
