package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	highColor   = color.New(color.FgGreen)
	mediumColor = color.New(color.FgYellow)
	lowColor    = color.New(color.FgRed)
	headerColor = color.New(color.FgCyan, color.Bold)
)

// PrintTable writes a human-readable ranked technology table.
func PrintTable(w io.Writer, rep DomainReport) {
	headerColor.Fprintf(w, "\n%s: %d technologies, %d categories\n",
		rep.Domain, rep.Summary.TotalTechnologies, rep.Summary.Categories)
	fmt.Fprintf(w, "%-28s %-11s %-22s %-16s %s\n", "TECHNOLOGY", "CONFIDENCE", "CATEGORY", "VERSIONS", "SOURCES")

	for _, tech := range rep.Technologies {
		versions := strings.Join(tech.Versions, ", ")
		if versions == "" {
			versions = "-"
		}
		confidenceColor(tech.Confidence).Fprintf(w, "%-28s %-11d %-22s %-16s %s\n",
			truncate(tech.Name, 28), tech.Confidence, truncate(tech.Category, 22),
			truncate(versions, 16), strings.Join(tech.Sources, ","))
	}
}

func confidenceColor(confidence int) *color.Color {
	switch {
	case confidence >= 80:
		return highColor
	case confidence >= 50:
		return mediumColor
	default:
		return lowColor
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
