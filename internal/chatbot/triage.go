package chatbot

import (
	"sort"
	"strings"

	"vlxd/internal/model"
	"vlxd/internal/utils"
)

// Triage classifies chat messages without calling a model:
// comparison request, canned FAQ answer, catalog price lookup, or no match.
// A Triage is immutable after construction and safe for concurrent use.
type Triage struct {
	rules       []Rule
	quickPrices []QuickPriceRule
}

// NewTriage sorts a copy of rules by descending priority; ties keep table order.
func NewTriage(rules []Rule, quickPrices []QuickPriceRule) *Triage {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority > sorted[j].Priority
	})

	return &Triage{
		rules:       sorted,
		quickPrices: append([]QuickPriceRule(nil), quickPrices...),
	}
}

var defaultTriage = NewTriage(DefaultRules(), DefaultQuickPriceRules())

// Default returns the triage built from the store tables
func Default() *Triage {
	return defaultTriage
}

// CheckRuleBasedResponse runs the default triage
func CheckRuleBasedResponse(message string) *model.RuleBasedResult {
	return defaultTriage.Check(message)
}

// Check runs the steps in order, first match wins:
//  1. comparison detection
//  2. FAQ rules by priority
//  3. quick price keywords
func (t *Triage) Check(message string) *model.RuleBasedResult {
	result, _ := t.Classify(message)
	return result
}

// Classify is Check plus the name of the FAQ rule that produced the answer.
// The name is empty for every route other than RouteAnswer.
func (t *Triage) Classify(message string) (*model.RuleBasedResult, string) {
	normalized := utils.NormalizeVietnamese(message)

	if products, ok := detectComparison(normalized); ok {
		return &model.RuleBasedResult{
			Matched:            true,
			Route:              model.RouteComparison,
			RequiresComparison: true,
			ComparisonProducts: products,
			Suggestions:        append([]string(nil), comparisonSuggestions...),
		}, ""
	}

	if rule := t.matchRule(normalized); rule != nil {
		return &model.RuleBasedResult{
			Matched:     true,
			Route:       model.RouteAnswer,
			Response:    rule.Response,
			Suggestions: append([]string(nil), rule.Suggestions...),
		}, rule.Name
	}

	for _, qp := range t.quickPrices {
		if qp.Pattern.MatchString(normalized) {
			return &model.RuleBasedResult{
				Matched:               true,
				Route:                 model.RouteProductLookup,
				RequiresProductLookup: true,
				ProductKeyword:        qp.ProductKeyword,
				Suggestions:           append([]string(nil), qp.Suggestions...),
			}, ""
		}
	}

	return &model.RuleBasedResult{Matched: false, Route: model.RouteNone}, ""
}

func (t *Triage) matchRule(normalized string) *Rule {
	for i := range t.rules {
		for _, p := range t.rules[i].Patterns {
			if p.MatchString(normalized) {
				return &t.rules[i]
			}
		}
	}
	return nil
}

// DetectComparisonRequest reports whether message asks to compare products
// and returns the candidate names (normalized text, at least two).
func DetectComparisonRequest(message string) (bool, []string) {
	products, ok := detectComparison(utils.NormalizeVietnamese(message))
	return ok, products
}

func detectComparison(normalized string) ([]string, bool) {
	for _, p := range comparisonPatterns {
		m := p.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}

		var products []string
		for _, group := range m[1:] {
			group = strings.TrimSpace(group)
			if group == "" || connectorGroups[group] {
				continue
			}
			products = append(products, group)
		}
		if len(products) >= 2 {
			return products, true
		}
	}
	return nil, false
}
