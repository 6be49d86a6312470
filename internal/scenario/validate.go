package scenario

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate checks a single scenario for structural problems.
func (s Scenario) Validate() error {
	var problems []string
	if strings.TrimSpace(s.Name) == "" {
		problems = append(problems, "name is required")
	}
	for i, a := range s.Setup {
		if err := a.validate(); err != nil {
			problems = append(problems, fmt.Sprintf("setup[%d]: %v", i, err))
		}
	}
	if len(s.Assertions) == 0 {
		problems = append(problems, "at least one assertion is required")
	}
	for i, a := range s.Assertions {
		if err := a.validate(); err != nil {
			problems = append(problems, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("scenario %q: %s", s.Name, strings.Join(problems, "; "))
	}
	return nil
}

func (a Action) validate() error {
	switch a.Kind {
	case ActionNavigate:
		if strings.TrimSpace(a.URL) == "" {
			return errors.New("navigate needs a url")
		}
		return nil
	case ActionFill, ActionClick:
		return a.Target.Validate()
	case "":
		return errors.New("action kind is required")
	}
	return fmt.Errorf("unknown action %q", a.Kind)
}

func (a Assertion) validate() error {
	switch a.Kind {
	case AssertTitle:
		if a.Pattern == "" {
			return errors.New("title needs a pattern")
		}
		if _, err := regexp.Compile(a.Pattern); err != nil {
			return fmt.Errorf("title pattern: %w", err)
		}
		return nil
	case AssertVisible, AssertDisabled:
		return a.Target.Validate()
	case AssertText:
		if a.Text == "" {
			return errors.New("text needs expected text")
		}
		return a.Target.Validate()
	case "":
		return errors.New("assertion kind is required")
	}
	return fmt.Errorf("unknown assertion %q", a.Kind)
}

// ValidateAll validates every scenario and enforces unique names.
func ValidateAll(scenarios []Scenario) error {
	seen := make(map[string]bool, len(scenarios))
	var errs []error
	for _, s := range scenarios {
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[s.Name] {
			errs = append(errs, fmt.Errorf("duplicate scenario name %q", s.Name))
		}
		seen[s.Name] = true
	}
	return errors.Join(errs...)
}

// Filter keeps scenarios whose name contains any of the given substrings.
// No substrings means no filtering.
func Filter(scenarios []Scenario, only []string) []Scenario {
	if len(only) == 0 {
		return scenarios
	}
	var out []Scenario
	for _, s := range scenarios {
		name := strings.ToLower(s.Name)
		for _, o := range only {
			if strings.Contains(name, strings.ToLower(o)) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}
