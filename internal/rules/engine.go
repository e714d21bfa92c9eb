// Package rules implements the deterministic pattern layer that can
// short-circuit classification before any model is consulted. Rules are
// plain (keywords, regexes, fuzzy variants, target label) rows evaluated
// in priority order, so every match is auditable and instantly
// explainable.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/transactai/transactai/internal/model"
)

// Rule scores one category against input text. Keywords add 1.0 each,
// regex patterns 1.5 each, a fuzzy variant hit adds FuzzyWeight. The raw
// score is divided by Norm and capped at 1.0 to yield a confidence.
type Rule struct {
	Category    string
	Keywords    []string
	Patterns    []string
	Fuzzy       []string
	FuzzyWeight float64
	Norm        float64
	Priority    int
}

const (
	keywordWeight = 1.0
	patternWeight = 1.5
	defaultNorm   = 3.0
)

// Engine evaluates an ordered rule table. Evaluation is pure: identical
// rules and identical input always yield an identical verdict.
type Engine struct {
	compiled map[string][]*regexp.Regexp
	rules    []Rule
}

// NewEngine creates a rule engine over the given rules, highest priority
// first. Invalid regex patterns are dropped at construction rather than
// failing per-request.
func NewEngine(ruleSet []Rule) *Engine {
	e := &Engine{
		rules:    make([]Rule, len(ruleSet)),
		compiled: make(map[string][]*regexp.Regexp, len(ruleSet)),
	}
	copy(e.rules, ruleSet)
	sort.SliceStable(e.rules, func(i, j int) bool {
		return e.rules[i].Priority > e.rules[j].Priority
	})

	for _, rule := range e.rules {
		for _, pat := range rule.Patterns {
			if re, err := regexp.Compile(pat); err == nil {
				e.compiled[rule.Category] = append(e.compiled[rule.Category], re)
			}
		}
	}
	return e
}

// Evaluate scores every rule against the raw and clean forms of the input
// and returns the best verdict. A zero verdict means nothing matched.
func (e *Engine) Evaluate(raw, clean string) model.RuleVerdict {
	texts := make([]string, 0, 2)
	if raw != "" {
		texts = append(texts, strings.ToLower(raw))
	}
	if clean != "" && clean != strings.ToLower(raw) {
		texts = append(texts, clean)
	}
	if len(texts) == 0 {
		return model.RuleVerdict{}
	}

	var best model.RuleVerdict
	for _, text := range texts {
		for _, rule := range e.rules {
			score, terms := e.scoreRule(text, rule)
			if score > best.Score {
				norm := rule.Norm
				if norm <= 0 {
					norm = defaultNorm
				}
				confidence := score / norm
				if confidence > 1.0 {
					confidence = 1.0
				}
				best = model.RuleVerdict{
					Category:     rule.Category,
					Confidence:   confidence,
					Score:        score,
					MatchedTerms: terms,
				}
			}
		}
	}
	return best
}

func (e *Engine) scoreRule(text string, rule Rule) (float64, []string) {
	var score float64
	var terms []string

	for _, kw := range rule.Keywords {
		if strings.Contains(text, kw) {
			score += keywordWeight
			terms = append(terms, kw)
		}
	}
	for _, re := range e.compiled[rule.Category] {
		if re.MatchString(text) {
			score += patternWeight
			terms = append(terms, re.String())
		}
	}
	if len(rule.Fuzzy) > 0 {
		if ok, term := fuzzyContains(text, rule.Fuzzy, fuzzyThreshold); ok {
			weight := rule.FuzzyWeight
			if weight <= 0 {
				weight = 1.0
			}
			score += weight
			terms = append(terms, term)
		}
	}
	return score, terms
}

// Categories returns the distinct target labels in rule order.
func (e *Engine) Categories() []string {
	seen := make(map[string]bool, len(e.rules))
	out := make([]string, 0, len(e.rules))
	for _, rule := range e.rules {
		if !seen[rule.Category] {
			seen[rule.Category] = true
			out = append(out, rule.Category)
		}
	}
	return out
}
