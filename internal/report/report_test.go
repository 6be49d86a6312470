package report

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
	"time"

	"formcheck/internal/scenario"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	DisableColor()
	os.Exit(m.Run())
}

func sampleRun() Run {
	return NewRun("http://localhost:9000/#/", []scenario.Result{
		{
			Scenario: "page has title",
			Session:  "s-1",
			Outcome:  scenario.OutcomePass,
			Duration: 12 * time.Millisecond,
		},
		{
			Scenario: "data entry produces output",
			Session:  "s-2",
			Outcome:  scenario.OutcomePass,
			Duration: 1234567 * time.Microsecond,
		},
		{
			Scenario: "negative amount shows error",
			Session:  "s-3",
			Outcome:  scenario.OutcomeFail,
			Failures: []scenario.Failure{{
				Kind:    "AssertionTimeout",
				Step:    `visible: text="error" visible`,
				Message: `expected text="error" visible within 5s, observed not attached`,
			}},
			Duration: 5001300 * time.Microsecond,
		},
	})
}

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
}

func TestText_Golden(t *testing.T) {
	golden(t).Assert(t, "text", []byte(Text(sampleRun())))
}

func TestJSON_Golden(t *testing.T) {
	out, err := JSON(sampleRun())
	require.NoError(t, err)
	golden(t).Assert(t, "json", []byte(out))
}

func TestMarkdown_Golden(t *testing.T) {
	golden(t).Assert(t, "markdown", []byte(Markdown(sampleRun())))
}

func TestJSON_RoundTripsSummary(t *testing.T) {
	out, err := JSON(sampleRun())
	require.NoError(t, err)

	var decoded Run
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 3, decoded.Summary.Total)
	assert.Equal(t, 2, decoded.Summary.Passed)
	assert.Equal(t, 1, decoded.Summary.Failed)
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, "AssertionTimeout", decoded.Results[2].Failures[0].Kind)
}

func TestText_AllPassed(t *testing.T) {
	run := NewRun("http://app.test/", []scenario.Result{
		{Scenario: "only", Outcome: scenario.OutcomePass, Duration: time.Millisecond},
	})
	out := Text(run)
	assert.Contains(t, out, "Running 1 scenario against http://app.test/")
	assert.Contains(t, out, "1 of 1 scenarios passed.\n")
	assert.NotContains(t, out, "failed")
}

func TestMarkdown_NoFailuresSection(t *testing.T) {
	run := NewRun("http://app.test/", []scenario.Result{
		{Scenario: "a|b", Outcome: scenario.OutcomePass},
	})
	md := Markdown(run)
	assert.NotContains(t, md, "## Failures")
	assert.Contains(t, md, `| a\|b | pass |`)
}

func TestRenderMarkdown_Plain(t *testing.T) {
	out, err := RenderMarkdown(Markdown(sampleRun()), 100, false)
	require.NoError(t, err)
	assert.Contains(t, out, "formcheck report")
	assert.Contains(t, out, "negative amount shows error")
	assert.NotContains(t, out, "\x1b[")
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatText, "FAIL  negative amount shows error"},
		{FormatJSON, `"failed": 1`},
		{FormatMarkdown, "formcheck report"},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, tt.format, sampleRun(), false))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}
