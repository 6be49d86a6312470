package scenario

import (
	"fmt"

	"formcheck/internal/browser"
)

// DefaultBaseURL is where the loan calculator is served during development.
const DefaultBaseURL = "http://localhost:9000/#/"

// TitlePattern is the expected page title.
const TitlePattern = "Samson - Oneiro Task"

// Locators for the loan calculator form.
var (
	StartDate     = browser.ByRole("textbox", "Start date")
	EndDate       = browser.ByRole("textbox", "End date")
	LoanAmount    = browser.ByRole("spinbutton", "Loan Amount")
	BaseRate      = browser.ByRole("spinbutton", "Base interest rate input")
	MarginRate    = browser.ByRole("spinbutton", "Margin rate input")
	Calculate     = browser.ByRole("button", "Calculate")
	Output        = browser.ByCSS(".container-output")
	ErrorText     = browser.ByText("error")
	CurrencyField = browser.ByCSS("label:nth-child(5) > .q-field__inner > .q-field__control > .q-field__control-container > .q-field__native")
)

// Field is one required input of the form together with a valid sample value.
type Field struct {
	Name  string
	Setup []Action
}

// RequiredFields lists the inputs that must all be set for Calculate to
// become enabled, with the sample values used by the data-entry scenario.
func RequiredFields() []Field {
	return []Field{
		{Name: "start date", Setup: []Action{Fill(StartDate, "2024-01-01")}},
		{Name: "end date", Setup: []Action{Fill(EndDate, "2024-01-30")}},
		{Name: "loan amount", Setup: []Action{Fill(LoanAmount, "1000")}},
		{Name: "currency", Setup: []Action{Click(CurrencyField), Click(browser.ByText("GBP"))}},
		{Name: "base rate", Setup: []Action{Fill(BaseRate, "1")}},
		{Name: "margin rate", Setup: []Action{Fill(MarginRate, "1")}},
	}
}

// LoanCalculator returns the built-in verification suite.
func LoanCalculator() []Scenario {
	var entry []Action
	for _, f := range RequiredFields() {
		entry = append(entry, f.Setup...)
	}
	entry = append(entry, Click(Calculate))

	return []Scenario{
		{
			Name:       "page has title",
			Assertions: []Assertion{TitleMatches(TitlePattern)},
		},
		{
			Name:       "data entry produces output",
			Setup:      entry,
			Assertions: []Assertion{ElementVisible(Output)},
		},
		{
			Name:       "negative amount shows error",
			Setup:      []Action{Fill(LoanAmount, "-0")},
			Assertions: []Assertion{ElementVisible(ErrorText)},
		},
		{
			Name:       "calculate disabled when empty",
			Assertions: []Assertion{ElementDisabled(Calculate)},
		},
	}
}

// NonPositiveAmounts are sample amounts that must all be rejected.
var NonPositiveAmounts = []string{"0", "-0", "-1", "-0.01", "-1000000"}

// LoanCalculatorProperties expands the two property checks into concrete
// scenarios: every proper subset of the required fields leaves Calculate
// disabled, and every non-positive amount shows an error.
func LoanCalculatorProperties() []Scenario {
	fields := RequiredFields()
	full := 1<<len(fields) - 1

	var out []Scenario
	for mask := 0; mask < full; mask++ {
		var setup []Action
		var names []string
		for i, f := range fields {
			if mask&(1<<i) != 0 {
				setup = append(setup, f.Setup...)
				names = append(names, f.Name)
			}
		}
		out = append(out, Scenario{
			Name:       fmt.Sprintf("calculate disabled with %s", describeSubset(names)),
			Setup:      setup,
			Assertions: []Assertion{ElementDisabled(Calculate)},
		})
	}

	for _, v := range NonPositiveAmounts {
		out = append(out, Scenario{
			Name:       fmt.Sprintf("amount %s shows error", v),
			Setup:      []Action{Fill(LoanAmount, v)},
			Assertions: []Assertion{ElementVisible(ErrorText)},
		})
	}
	return out
}

func describeSubset(names []string) string {
	if len(names) == 0 {
		return "no fields"
	}
	out := names[0]
	for _, n := range names[1:] {
		out += "+" + n
	}
	return out
}
