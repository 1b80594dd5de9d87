package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/stackscan/internal/config"
	"github.com/example/stackscan/internal/core"
	"github.com/example/stackscan/internal/report"
)

func TestReportCommandAggregatesArtifacts(t *testing.T) {
	dir := t.TempDir()
	seedAnalysisArtifact(t, dir, "one.test", []core.MergedTechnology{
		{Name: "nginx", Confidence: 75, Category: "Web Server", Sources: []string{"pattern"}},
		{Name: "wordpress", Confidence: 90, Category: "CMS", Sources: []string{"whatcms"}},
	})
	seedAnalysisArtifact(t, dir, "two.test", []core.MergedTechnology{
		{Name: "nginx", Confidence: 60, Category: "Web Server", Sources: []string{"whatweb"}},
	})

	summaryPath := filepath.Join(t.TempDir(), "summary.json")

	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	cmd := newReportCmd(loader)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input-dir", dir, "--summary-file", summaryPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("report command failed: %v", err)
	}

	data, err := os.ReadFile(summaryPath)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}

	var parsed struct {
		Domains           int            `json:"domains"`
		TotalTechnologies int            `json:"totalTechnologies"`
		Categories        map[string]int `json:"categories"`
		TopTechnologies   []struct {
			Name    string `json:"name"`
			Domains int    `json:"domains"`
		} `json:"topTechnologies"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("parse summary: %v", err)
	}

	if parsed.Domains != 2 {
		t.Errorf("domains = %d, want 2", parsed.Domains)
	}
	if parsed.TotalTechnologies != 3 {
		t.Errorf("total technologies = %d, want 3", parsed.TotalTechnologies)
	}
	if parsed.Categories["Web Server"] != 2 {
		t.Errorf("categories = %v, want two Web Server entries", parsed.Categories)
	}
	if len(parsed.TopTechnologies) == 0 || parsed.TopTechnologies[0].Name != "nginx" {
		t.Errorf("top technologies = %+v, want nginx first", parsed.TopTechnologies)
	}
}

func TestReportCommandEmptyDirectory(t *testing.T) {
	loader := &config.Loader{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}
	cmd := newReportCmd(loader)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--input-dir", t.TempDir()})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for a directory without artifacts")
	}
}

func TestAggregateStatsTopTechnologiesCapped(t *testing.T) {
	var reports []report.DomainReport
	techs := make([]core.MergedTechnology, 12)
	for i := range techs {
		techs[i] = core.MergedTechnology{
			Name:       string(rune('a' + i)),
			Confidence: 50,
			Sources:    []string{"pattern"},
		}
	}
	reports = append(reports, report.DomainReport{Domain: "one.test", Technologies: techs})

	stats := aggregateStats("dir", reports)

	data, err := json.Marshal(stats["topTechnologies"])
	if err != nil {
		t.Fatalf("marshal top technologies: %v", err)
	}
	var entries []map[string]interface{}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parse top technologies: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("top technologies = %d entries, want 10", len(entries))
	}
}
