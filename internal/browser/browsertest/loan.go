package browsertest

import (
	"strconv"
	"strings"
)

// Currencies offered by the fake currency selector.
var Currencies = []string{"GBP", "USD", "EUR"}

// CurrencyControlCSS is the selector of the currency field's native input.
const CurrencyControlCSS = "label:nth-child(5) > .q-field__inner > .q-field__control > .q-field__control-container > .q-field__native"

// LoanCalculator builds a page that behaves like the loan calculator form:
// Calculate stays disabled until every input is set and the amount is
// positive, a non-positive amount shows an error, and a successful
// calculation reveals the output container.
func LoanCalculator() *Page {
	p := &Page{Title: "Samson - Oneiro Task"}

	start := p.Add(&Node{Role: "textbox", Name: "Start date", Attached: true})
	end := p.Add(&Node{Role: "textbox", Name: "End date", Attached: true})
	amount := p.Add(&Node{Role: "spinbutton", Name: "Loan Amount", Attached: true})
	currency := p.Add(&Node{Role: "combobox", Name: "Currency", CSS: CurrencyControlCSS, Attached: true})
	base := p.Add(&Node{Role: "spinbutton", Name: "Base interest rate input", Attached: true})
	margin := p.Add(&Node{Role: "spinbutton", Name: "Margin rate input", Attached: true})
	calc := p.Add(&Node{Role: "button", Name: "Calculate", Text: "Calculate", Attached: true, Disabled: true})
	errMsg := p.Add(&Node{Role: "alert", Text: "Loan amount error: value must be greater than zero"})
	output := p.Add(&Node{CSS: ".container-output", Text: "Repayment schedule"})

	var options []*Node
	for _, c := range Currencies {
		opt := &Node{Role: "option", Name: c, Text: c}
		opt.OnClick = func(p *Page, n *Node) {
			currency.Value = c
			for _, o := range options {
				o.Attached = false
			}
		}
		options = append(options, opt)
		p.Add(opt)
	}
	currency.OnClick = func(p *Page, n *Node) {
		for _, o := range options {
			o.Attached = true
		}
	}

	calc.OnClick = func(p *Page, n *Node) {
		output.Attached = true
	}

	p.Update = func(p *Page) {
		invalid := amount.Value != "" && !positive(amount.Value)
		errMsg.Attached = invalid

		missing := false
		for _, n := range []*Node{start, end, amount, currency, base, margin} {
			if strings.TrimSpace(n.Value) == "" {
				missing = true
			}
		}
		calc.Disabled = missing || invalid
	}
	return p
}

func positive(s string) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil && v > 0
}
