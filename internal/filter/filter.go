package filter

import "strings"

// Rule maps a lowercase product-name substring to a maximum acceptable
// price in PLN.
type Rule struct {
	Match    string `yaml:"match"`
	MaxPrice int    `yaml:"max_price"`
}

// Filter decides whether an offer is notification-worthy. Rules are scanned
// in table order and the first rule whose substring appears in the lowered
// title decides; a title matching several rules is judged only by the first.
type Filter struct {
	rules    []Rule
	required []string
}

// New creates a filter from a threshold table and an optional set of
// required keywords.
func New(rules []Rule, required []string) *Filter {
	return &Filter{
		rules:    rules,
		required: required,
	}
}

// Matches reports whether an offer with the given title and normalized
// price passes the threshold table. An absent price never matches.
func (f *Filter) Matches(title string, price *int) bool {
	if price == nil {
		return false
	}
	lowered := strings.ToLower(title)
	for _, rule := range f.rules {
		if strings.Contains(lowered, rule.Match) {
			return *price <= rule.MaxPrice
		}
	}
	return false
}

// ContainsRequired reports whether text contains every required keyword,
// case-insensitively. An empty keyword set always passes.
func (f *Filter) ContainsRequired(text string) bool {
	if len(f.required) == 0 {
		return true
	}
	lowered := strings.ToLower(text)
	for _, keyword := range f.required {
		if !strings.Contains(lowered, strings.ToLower(keyword)) {
			return false
		}
	}
	return true
}

// Rules returns the active threshold table
func (f *Filter) Rules() []Rule {
	return f.rules
}
