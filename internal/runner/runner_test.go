package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"formcheck/internal/browser"
	"formcheck/internal/browser/browsertest"
	"formcheck/internal/metrics"
	"formcheck/internal/polling"
	"formcheck/internal/scenario"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastWait = polling.Policy{Timeout: 100 * time.Millisecond, Interval: 5 * time.Millisecond}

func newTestRunner(rt browser.Runtime, concurrency int) *Runner {
	return New(browser.NewManager(rt), Options{
		BaseURL:     scenario.DefaultBaseURL,
		Wait:        fastWait,
		Concurrency: concurrency,
	})
}

func outcomes(results []scenario.Result) map[string]scenario.Outcome {
	out := make(map[string]scenario.Outcome, len(results))
	for _, r := range results {
		out[r.Scenario] = r.Outcome
	}
	return out
}

func TestRun_LoanCalculatorSuitePasses(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	r := New(browser.NewManager(rt), Options{Wait: fastWait, Metrics: m})

	suite := scenario.LoanCalculator()
	results, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	require.Len(t, results, len(suite))

	for i, res := range results {
		assert.Equal(t, suite[i].Name, res.Scenario, "results keep input order")
		assert.True(t, res.Passed(), "%s: %v", res.Scenario, res.Failures)
		assert.NotEmpty(t, res.Session)
	}

	// One preflight session plus one per scenario, all closed again.
	assert.Equal(t, len(suite)+1, rt.Opened())
	assert.Equal(t, 0, rt.Live())
	assert.Equal(t, float64(len(suite)), testutil.ToFloat64(m.ScenariosTotal.WithLabelValues("pass")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SessionsActive))
}

func TestRun_EveryScenarioStartsFromBaseURL(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	_, err := r.Run(context.Background(), scenario.LoanCalculator())
	require.NoError(t, err)

	visited := rt.Visited()
	require.Len(t, visited, 5)
	for _, u := range visited {
		assert.Equal(t, scenario.DefaultBaseURL, u)
	}
}

func TestRun_PreflightFailureAborts(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	rt.Unreachable = true
	r := newTestRunner(rt, 1)

	results, err := r.Run(context.Background(), scenario.LoanCalculator())
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, IsNavigationError(err))
	assert.ErrorIs(t, err, browser.ErrNavigationFailed)
	assert.Equal(t, 1, rt.Opened(), "no scenario session may be opened after a failed preflight")
}

func TestRun_AssertionTimeoutCarriesDiagnostics(t *testing.T) {
	rt := browsertest.NewRuntime(func() *browsertest.Page {
		p := browsertest.LoanCalculator()
		p.Title = "Some Other App"
		return p
	})
	r := newTestRunner(rt, 1)

	res := r.RunScenario(context.Background(), scenario.LoanCalculator()[0])
	require.False(t, res.Passed())
	require.Len(t, res.Failures, 1)
	f := res.Failures[0]
	assert.Equal(t, KindAssertionTimeout, f.Kind)
	assert.Contains(t, f.Message, "Samson - Oneiro Task")
	assert.Contains(t, f.Message, `"Some Other App"`)
	assert.Contains(t, f.Message, "100ms")
}

func TestRun_FailureIsIsolated(t *testing.T) {
	// The error message never appears, so only the negative-amount scenario fails.
	rt := browsertest.NewRuntime(func() *browsertest.Page {
		p := browsertest.LoanCalculator()
		inner := p.Update
		p.Update = func(p *browsertest.Page) {
			inner(p)
			for _, n := range p.Nodes {
				if n.Role == "alert" {
					n.Attached = false
				}
			}
		}
		return p
	})
	r := newTestRunner(rt, 1)

	results, err := r.Run(context.Background(), scenario.LoanCalculator())
	require.NoError(t, err)

	got := outcomes(results)
	assert.Equal(t, scenario.OutcomeFail, got["negative amount shows error"])
	assert.Equal(t, scenario.OutcomePass, got["page has title"])
	assert.Equal(t, scenario.OutcomePass, got["data entry produces output"])
	assert.Equal(t, scenario.OutcomePass, got["calculate disabled when empty"])
}

func TestRun_ElementNotFoundSkipsAssertions(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	broken := scenario.Scenario{
		Name: "missing field",
		Setup: []scenario.Action{
			scenario.Fill(browser.ByRole("textbox", "Nickname"), "x"),
			scenario.Click(scenario.Calculate),
		},
		Assertions: []scenario.Assertion{
			scenario.ElementVisible(scenario.Output),
			scenario.TitleMatches("nope"),
		},
	}
	suite := append([]scenario.Scenario{broken}, scenario.LoanCalculator()...)

	results, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	require.Len(t, results[0].Failures, 1)
	f := results[0].Failures[0]
	assert.Equal(t, KindElementNotFound, f.Kind)
	assert.Contains(t, f.Message, `role=textbox[name="Nickname"]`)
	assert.Contains(t, f.Message, "not attached")

	for _, res := range results[1:] {
		assert.True(t, res.Passed(), "%s should not be affected", res.Scenario)
	}
}

func TestRun_ClickOnDisabledButtonTimesOut(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	res := r.RunScenario(context.Background(), scenario.Scenario{
		Name:       "click disabled",
		Setup:      []scenario.Action{scenario.Click(scenario.Calculate)},
		Assertions: []scenario.Assertion{scenario.ElementVisible(scenario.Output)},
	})
	require.Len(t, res.Failures, 1)
	assert.Equal(t, KindElementNotFound, res.Failures[0].Kind)
	assert.Contains(t, res.Failures[0].Message, "not interactable")
}

func TestRun_CollectsAllAssertionFailures(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	res := r.RunScenario(context.Background(), scenario.Scenario{
		Name: "several checks",
		Assertions: []scenario.Assertion{
			scenario.TitleMatches("Wrong Title"),
			scenario.ElementDisabled(scenario.Calculate),
			scenario.ElementVisible(scenario.Output),
			scenario.ElementHasText(scenario.Calculate, "Calculate"),
		},
	})
	assert.Equal(t, scenario.OutcomeFail, res.Outcome)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, KindAssertionTimeout, res.Failures[0].Kind)
	assert.Equal(t, KindAssertionTimeout, res.Failures[1].Kind)
	assert.Contains(t, res.Failures[1].Message, "not attached")
}

func TestRun_WaitsForDelayedVisibility(t *testing.T) {
	rt := browsertest.NewRuntime(func() *browsertest.Page {
		p := browsertest.LoanCalculator()
		p.Add(&browsertest.Node{CSS: ".banner", Attached: true, RevealAfter: 3})
		return p
	})
	r := newTestRunner(rt, 1)

	res := r.RunScenario(context.Background(), scenario.Scenario{
		Name:       "banner",
		Assertions: []scenario.Assertion{scenario.ElementVisible(browser.ByCSS(".banner"))},
	})
	assert.True(t, res.Passed(), "%v", res.Failures)
}

func TestRun_PerStepWaitOverridesDefault(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	a := scenario.ElementVisible(scenario.Output)
	a.Wait = polling.Policy{Timeout: 20 * time.Millisecond}
	res := r.RunScenario(context.Background(), scenario.Scenario{Name: "short", Assertions: []scenario.Assertion{a}})
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Message, "20ms")
}

func TestRun_Deterministic(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	suite := append(scenario.LoanCalculator(), scenario.Scenario{
		Name:       "always fails",
		Assertions: []scenario.Assertion{scenario.TitleMatches("^$")},
	})

	first, err := r.Run(context.Background(), suite)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, outcomes(first), outcomes(second))
}

func TestRun_PropertySuite(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 4)

	props := scenario.LoanCalculatorProperties()
	results, err := r.Run(context.Background(), props)
	require.NoError(t, err)
	require.Len(t, results, len(props))
	for i, res := range results {
		assert.Equal(t, props[i].Name, res.Scenario)
		assert.True(t, res.Passed(), "%s: %v", res.Scenario, res.Failures)
	}
	assert.Equal(t, 0, rt.Live())
}

func TestRun_ConcurrentMatchesSequential(t *testing.T) {
	suite := append(scenario.LoanCalculator(), scenario.Scenario{
		Name:       "bad title",
		Assertions: []scenario.Assertion{scenario.TitleMatches("Other")},
	})

	seq, err := newTestRunner(browsertest.NewRuntime(browsertest.LoanCalculator), 1).Run(context.Background(), suite)
	require.NoError(t, err)
	par, err := newTestRunner(browsertest.NewRuntime(browsertest.LoanCalculator), 3).Run(context.Background(), suite)
	require.NoError(t, err)

	assert.Equal(t, outcomes(seq), outcomes(par))
	for i := range suite {
		assert.Equal(t, suite[i].Name, par[i].Scenario)
	}
}

func TestRun_PanicBecomesFailure(t *testing.T) {
	rt := browsertest.NewRuntime(func() *browsertest.Page {
		p := browsertest.LoanCalculator()
		p.Add(&browsertest.Node{Role: "button", Name: "Explode", Attached: true, OnClick: func(*browsertest.Page, *browsertest.Node) {
			panic("kaboom")
		}})
		return p
	})
	r := newTestRunner(rt, 1)

	results, err := r.Run(context.Background(), []scenario.Scenario{
		{
			Name:       "explodes",
			Setup:      []scenario.Action{scenario.Click(browser.ByRole("button", "Explode"))},
			Assertions: []scenario.Assertion{scenario.TitleMatches("Samson")},
		},
		scenario.LoanCalculator()[0],
	})
	require.NoError(t, err)
	require.Len(t, results[0].Failures, 1)
	assert.Equal(t, KindPanic, results[0].Failures[0].Kind)
	assert.Contains(t, results[0].Failures[0].Message, "kaboom")
	assert.True(t, results[1].Passed())
	assert.Equal(t, 0, rt.Live(), "session is released even after a panic")
}

func TestRun_NavigateActionResolvesAgainstBase(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	res := r.RunScenario(context.Background(), scenario.Scenario{
		Name:       "route",
		Setup:      []scenario.Action{scenario.Navigate("/history")},
		Assertions: []scenario.Assertion{scenario.TitleMatches("Samson")},
	})
	require.True(t, res.Passed(), "%v", res.Failures)
	assert.Contains(t, rt.Visited(), "http://localhost:9000/#/history")
}

func TestRun_NavigateActionFailureIsScenarioLocal(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	rt.UnreachableURLs = []string{"broken"}
	r := newTestRunner(rt, 1)

	results, err := r.Run(context.Background(), []scenario.Scenario{
		{
			Name:       "broken route",
			Setup:      []scenario.Action{scenario.Navigate("broken")},
			Assertions: []scenario.Assertion{scenario.TitleMatches("Samson")},
		},
		scenario.LoanCalculator()[0],
	})
	require.NoError(t, err)
	require.Len(t, results[0].Failures, 1)
	assert.Equal(t, KindNavigationFailure, results[0].Failures[0].Kind)
	assert.True(t, results[1].Passed())
}

func TestRun_CancelledContext(t *testing.T) {
	rt := browsertest.NewRuntime(browsertest.LoanCalculator)
	r := newTestRunner(rt, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.Run(ctx, scenario.LoanCalculator())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsNavigationError(err))
	assert.Empty(t, results)
}

// stuck waits for an element that never appears.
func stuck(name string) scenario.Scenario {
	return scenario.Scenario{
		Name:       name,
		Setup:      []scenario.Action{scenario.Click(browser.ByCSS(".never-rendered"))},
		Assertions: []scenario.Assertion{scenario.TitleMatches("Samson")},
	}
}

func TestRun_CancelMidSuiteReportsOnlyStartedScenarios(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		scenarios   []scenario.Scenario
		want        []string
	}{
		{
			name:        "sequential",
			concurrency: 1,
			scenarios:   []scenario.Scenario{stuck("a"), scenario.LoanCalculator()[0]},
			want:        []string{"a"},
		},
		{
			name:        "pooled",
			concurrency: 2,
			scenarios:   []scenario.Scenario{stuck("a"), stuck("b"), scenario.LoanCalculator()[0], scenario.LoanCalculator()[3]},
			want:        []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := browsertest.NewRuntime(browsertest.LoanCalculator)
			m := metrics.NewMetrics(prometheus.NewRegistry())
			r := New(browser.NewManager(rt), Options{
				Wait:        polling.Policy{Timeout: 10 * time.Second, Interval: 10 * time.Millisecond},
				Concurrency: tt.concurrency,
				Metrics:     m,
			})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			time.AfterFunc(100*time.Millisecond, cancel)

			start := time.Now()
			results, err := r.Run(ctx, tt.scenarios)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the wait short")

			names := make([]string, 0, len(results))
			for _, res := range results {
				names = append(names, res.Scenario)
			}
			assert.Equal(t, tt.want, names)

			// Scenarios that never started are neither counted nor opened.
			assert.Equal(t, float64(len(tt.want)), testutil.ToFloat64(m.ScenariosTotal.WithLabelValues("fail")))
			assert.Equal(t, 0.0, testutil.ToFloat64(m.ScenariosTotal.WithLabelValues("pass")))
			assert.Equal(t, 1+len(tt.want), rt.Opened())
			assert.Equal(t, 0, rt.Live())
		})
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"http://localhost:9000/#/", "/history", "http://localhost:9000/#/history"},
		{"http://localhost:9000/#/", "history", "http://localhost:9000/#/history"},
		{"http://localhost:9000/#/", "#/history", "http://localhost:9000/#/history"},
		{"http://localhost:9000/#/", "https://example.com/x", "https://example.com/x"},
		{"http://localhost:9000/app/", "settings", "http://localhost:9000/app/settings"},
		{"http://localhost:9000/app/", "/root", "http://localhost:9000/root"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveURL(tt.base, tt.ref))
		})
	}
}
