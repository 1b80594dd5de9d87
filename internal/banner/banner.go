package banner

import (
	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Print writes the startup banner to stdout. Quiet runs skip it.
func Print(version string) {
	fig := figure.NewColorFigure("STACKSCAN", "doom", "cyan", true)
	fig.Print()

	cyan := color.New(color.FgCyan)
	white := color.New(color.FgWhite)

	_, _ = cyan.Println("════════════════════════════════════════════════")
	_, _ = white.Println("    web technology fingerprinting | v" + version)
	_, _ = cyan.Println("════════════════════════════════════════════════")
}
