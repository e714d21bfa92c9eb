package rules

import (
	"strings"

	"github.com/xrash/smetrics"
)

// fuzzyThreshold is the minimum similarity for a fuzzy variant to count
// as present in the text.
const fuzzyThreshold = 0.85

// fuzzyContains reports whether text contains something close enough to
// one of the candidate phrases. Each candidate is compared against every
// window of the same token length in the text using Jaro-Winkler, which
// tolerates the transposed or dropped characters typical of informal
// banking shorthand ("restaurent", "flip cart").
func fuzzyContains(text string, candidates []string, threshold float64) (bool, string) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return false, ""
	}

	for _, cand := range candidates {
		cand = strings.ToLower(strings.TrimSpace(cand))
		if cand == "" {
			continue
		}
		width := len(strings.Fields(cand))
		if width == 0 || width > len(tokens) {
			continue
		}
		for i := 0; i+width <= len(tokens); i++ {
			window := strings.Join(tokens[i:i+width], " ")
			if smetrics.JaroWinkler(window, cand, 0.7, 4) >= threshold {
				return true, cand
			}
		}
	}
	return false, ""
}
