package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	kindStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Text renders run as a human-readable report.
func Text(run Run) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Running %d scenario", run.Summary.Total)
	if run.Summary.Total != 1 {
		b.WriteString("s")
	}
	fmt.Fprintf(&b, " against %s\n\n", run.BaseURL)

	for _, r := range run.Results {
		label := passStyle.Render("PASS")
		if !r.Passed() {
			label = failStyle.Render("FAIL")
		}
		fmt.Fprintf(&b, "  %s  %s %s\n", label, r.Scenario, dimStyle.Render(fmt.Sprintf("(%v)", roundDuration(r.Duration))))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "        %s  %s\n", kindStyle.Render(f.Kind), f.Step)
			fmt.Fprintf(&b, "          %s\n", f.Message)
		}
	}

	fmt.Fprintf(&b, "\n%d of %d scenarios passed.", run.Summary.Passed, run.Summary.Total)
	if run.Summary.Failed > 0 {
		fmt.Fprintf(&b, " %s", failStyle.Render(fmt.Sprintf("%d failed.", run.Summary.Failed)))
	}
	b.WriteString("\n")
	return b.String()
}
