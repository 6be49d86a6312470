package browser

import (
	"fmt"
	"strings"
)

// Locator describes how to find an element on the page. Exactly one of
// Role, Text or CSS selects the strategy; Name narrows a role lookup to
// its accessible name.
type Locator struct {
	Role  string `yaml:"role,omitempty" json:"role,omitempty"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty"`
	Text  string `yaml:"text,omitempty" json:"text,omitempty"`
	CSS   string `yaml:"css,omitempty" json:"css,omitempty"`
	Exact bool   `yaml:"exact,omitempty" json:"exact,omitempty"`
}

// ByRole locates an element by ARIA role and accessible name.
func ByRole(role, name string) Locator {
	return Locator{Role: role, Name: name}
}

// ByText locates an element by its text content.
func ByText(text string) Locator {
	return Locator{Text: text}
}

// ByCSS locates an element with a CSS selector.
func ByCSS(selector string) Locator {
	return Locator{CSS: selector}
}

// IsZero reports whether no strategy is set.
func (l Locator) IsZero() bool {
	return l.Role == "" && l.Text == "" && l.CSS == ""
}

// Validate checks that exactly one strategy is selected.
func (l Locator) Validate() error {
	n := 0
	for _, s := range []string{l.Role, l.Text, l.CSS} {
		if s != "" {
			n++
		}
	}
	switch {
	case n == 0:
		return fmt.Errorf("locator needs one of role, text or css")
	case n > 1:
		return fmt.Errorf("locator %s mixes strategies", l)
	case l.Name != "" && l.Role == "":
		return fmt.Errorf("locator %s: name is only valid with role", l)
	}
	return nil
}

// Matches compares candidate against want using the locator's matching rule:
// case-insensitive substring unless Exact is set.
func (l Locator) Matches(candidate, want string) bool {
	if l.Exact {
		return candidate == want
	}
	return strings.Contains(strings.ToLower(candidate), strings.ToLower(want))
}

func (l Locator) String() string {
	switch {
	case l.Role != "" && l.Name != "":
		return fmt.Sprintf("role=%s[name=%q]", l.Role, l.Name)
	case l.Role != "":
		return "role=" + l.Role
	case l.Text != "":
		return fmt.Sprintf("text=%q", l.Text)
	case l.CSS != "":
		return "css=" + l.CSS
	}
	return "<empty locator>"
}
