package scenario

import (
	"fmt"
	"time"

	"formcheck/internal/browser"
	"formcheck/internal/polling"
)

// ActionKind names a UI manipulation.
type ActionKind string

const (
	ActionNavigate ActionKind = "navigate"
	ActionFill     ActionKind = "fill"
	ActionClick    ActionKind = "click"
)

// AssertionKind names an expected-state check.
type AssertionKind string

const (
	AssertTitle    AssertionKind = "title"
	AssertVisible  AssertionKind = "visible"
	AssertText     AssertionKind = "text"
	AssertDisabled AssertionKind = "disabled"
)

// Action is a single setup step.
type Action struct {
	Kind   ActionKind      `yaml:"action" json:"action"`
	URL    string          `yaml:"url,omitempty" json:"url,omitempty"`
	Target browser.Locator `yaml:"target,omitempty" json:"target,omitempty"`
	Value  string          `yaml:"value,omitempty" json:"value,omitempty"`
	Wait   polling.Policy  `yaml:"wait,omitempty" json:"wait,omitempty"`
}

// Navigate loads url, relative to the base URL when not absolute.
func Navigate(url string) Action {
	return Action{Kind: ActionNavigate, URL: url}
}

// Fill types value into the element found by target.
func Fill(target browser.Locator, value string) Action {
	return Action{Kind: ActionFill, Target: target, Value: value}
}

// Click clicks the element found by target.
func Click(target browser.Locator) Action {
	return Action{Kind: ActionClick, Target: target}
}

func (a Action) String() string {
	switch a.Kind {
	case ActionNavigate:
		return fmt.Sprintf("navigate %s", a.URL)
	case ActionFill:
		return fmt.Sprintf("fill %s with %q", a.Target, a.Value)
	case ActionClick:
		return fmt.Sprintf("click %s", a.Target)
	}
	return string(a.Kind)
}

// Assertion is a single expected-state check evaluated after setup.
type Assertion struct {
	Kind    AssertionKind   `yaml:"expect" json:"expect"`
	Pattern string          `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Target  browser.Locator `yaml:"target,omitempty" json:"target,omitempty"`
	Text    string          `yaml:"text,omitempty" json:"text,omitempty"`
	Wait    polling.Policy  `yaml:"wait,omitempty" json:"wait,omitempty"`
}

// TitleMatches expects the page title to match a regular expression.
func TitleMatches(pattern string) Assertion {
	return Assertion{Kind: AssertTitle, Pattern: pattern}
}

// ElementVisible expects target to be attached and visible.
func ElementVisible(target browser.Locator) Assertion {
	return Assertion{Kind: AssertVisible, Target: target}
}

// ElementHasText expects target's text content to contain text.
func ElementHasText(target browser.Locator, text string) Assertion {
	return Assertion{Kind: AssertText, Target: target, Text: text}
}

// ElementDisabled expects target to be disabled.
func ElementDisabled(target browser.Locator) Assertion {
	return Assertion{Kind: AssertDisabled, Target: target}
}

// Expected describes the state the assertion waits for.
func (a Assertion) Expected() string {
	switch a.Kind {
	case AssertTitle:
		return fmt.Sprintf("title matching /%s/", a.Pattern)
	case AssertVisible:
		return fmt.Sprintf("%s visible", a.Target)
	case AssertText:
		return fmt.Sprintf("%s containing %q", a.Target, a.Text)
	case AssertDisabled:
		return fmt.Sprintf("%s disabled", a.Target)
	}
	return string(a.Kind)
}

func (a Assertion) String() string {
	return string(a.Kind) + ": " + a.Expected()
}

// Scenario is one independent test case: setup actions plus assertions.
type Scenario struct {
	Name       string      `yaml:"name" json:"name"`
	Setup      []Action    `yaml:"setup,omitempty" json:"setup,omitempty"`
	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// Outcome is the verdict of one scenario run.
type Outcome string

const (
	OutcomePass Outcome = "pass"
	OutcomeFail Outcome = "fail"
)

// Failure records one thing that went wrong in a scenario.
type Failure struct {
	Kind    string `json:"kind"`
	Step    string `json:"step"`
	Message string `json:"message"`
}

// Result is the outcome of running one scenario.
type Result struct {
	Scenario string        `json:"scenario"`
	Session  string        `json:"session,omitempty"`
	Outcome  Outcome       `json:"outcome"`
	Failures []Failure     `json:"failures,omitempty"`
	Duration time.Duration `json:"duration_ns"`
}

// Passed reports whether the scenario passed.
func (r Result) Passed() bool {
	return r.Outcome == OutcomePass
}

// Reason joins failure messages into a single line.
func (r Result) Reason() string {
	if len(r.Failures) == 0 {
		return ""
	}
	if len(r.Failures) == 1 {
		return r.Failures[0].Message
	}
	return fmt.Sprintf("%s (and %d more)", r.Failures[0].Message, len(r.Failures)-1)
}

// Summary tallies a set of results.
type Summary struct {
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration_ns"`
}

// Summarize counts passes and failures across results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		s.Duration += r.Duration
	}
	return s
}
