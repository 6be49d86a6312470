package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders run as a markdown document.
func Markdown(run Run) string {
	var b strings.Builder

	b.WriteString("# formcheck report\n\n")
	fmt.Fprintf(&b, "Base URL: `%s`\n\n", run.BaseURL)
	fmt.Fprintf(&b, "**%d of %d scenarios passed.**\n\n", run.Summary.Passed, run.Summary.Total)

	b.WriteString("| Scenario | Outcome | Duration |\n")
	b.WriteString("|---|---|---|\n")
	for _, r := range run.Results {
		fmt.Fprintf(&b, "| %s | %s | %v |\n", escapeCell(r.Scenario), r.Outcome, roundDuration(r.Duration))
	}

	if run.Summary.Failed == 0 {
		return b.String()
	}

	b.WriteString("\n## Failures\n")
	for _, r := range run.Results {
		if r.Passed() {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n\n", r.Scenario)
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "- **%s** `%s`: %s\n", f.Kind, f.Step, f.Message)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// RenderMarkdown renders md for a terminal. Without color it uses glamour's
// notty style, which keeps the layout but emits no escape sequences.
func RenderMarkdown(md string, width int, color bool) (string, error) {
	style := glamour.WithAutoStyle()
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
