package filter

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// DefaultRules returns the built-in price-threshold table, used when no
// thresholds file is configured. Order matters: the first matching entry
// decides, so broader keys come before their more specific variants.
func DefaultRules() []Rule {
	return []Rule{
		{Match: "iphone 11", MaxPrice: 350},
		{Match: "iphone 11 pro", MaxPrice: 400},
		{Match: "iphone 12", MaxPrice: 400},
		{Match: "iphone 12 pro", MaxPrice: 750},
		{Match: "iphone 12 pro max", MaxPrice: 750},
		{Match: "iphone 13", MaxPrice: 700},
		{Match: "iphone 13 pro", MaxPrice: 1200},
		{Match: "iphone 13 pro max", MaxPrice: 1300},
		{Match: "iphone 14", MaxPrice: 1100},
		{Match: "iphone 14 pro", MaxPrice: 1500},
		{Match: "iphone 14 plus", MaxPrice: 1300},
		{Match: "iphone 14 pro max", MaxPrice: 1600},
		{Match: "iphone 15", MaxPrice: 1550},
		{Match: "iphone 15 pro", MaxPrice: 2400},
		{Match: "iphone 15 pro max", MaxPrice: 2700},
		{Match: "iphone 16", MaxPrice: 2900},
	}
}

// LoadRules reads a threshold table from a YAML file, a sequence of
// {match, max_price} entries whose file order defines the scan order.
func LoadRules(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thresholds file: %w", err)
	}
	defer f.Close()

	var rules []Rule
	if err := yaml.NewDecoder(f).Decode(&rules); err != nil {
		return nil, fmt.Errorf("failed to decode thresholds file: %w", err)
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("thresholds file %s contains no rules", path)
	}
	for i, rule := range rules {
		if rule.Match == "" || rule.MaxPrice <= 0 {
			return nil, fmt.Errorf("thresholds file %s: invalid rule at index %d", path, i)
		}
	}
	return rules, nil
}
