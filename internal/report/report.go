// Package report renders scenario results for humans and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"formcheck/internal/scenario"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Format selects an output renderer.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatMarkdown}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of %v)", s, Formats)
}

// Run is everything a report needs about one execution of a suite.
type Run struct {
	BaseURL string            `json:"base_url"`
	Summary scenario.Summary  `json:"summary"`
	Results []scenario.Result `json:"results"`
}

// NewRun bundles results with their summary.
func NewRun(baseURL string, results []scenario.Result) Run {
	return Run{BaseURL: baseURL, Summary: scenario.Summarize(results), Results: results}
}

// DisableColor forces plain output for every lipgloss style.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Write renders run in the given format to w.
func Write(w io.Writer, f Format, run Run, color bool) error {
	var (
		out string
		err error
	)
	switch f {
	case FormatJSON:
		out, err = JSON(run)
	case FormatMarkdown:
		out, err = RenderMarkdown(Markdown(run), 100, color)
	default:
		out = Text(run)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// JSON renders run as indented JSON.
func JSON(run Run) (string, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data) + "\n", nil
}

func roundDuration(d time.Duration) time.Duration {
	return d.Round(time.Millisecond)
}
