// Package textsig extracts text-only signals from a report description:
// category-weighted keyword severity and sentiment-derived urgency. It
// runs regardless of the validation pipeline's outcome so priority stays
// computable for resubmission feedback.
package textsig

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/oracle"
)

// Signals holds every text-derived signal for one description.
type Signals struct {
	// Severities maps category name to severity in [0,1].
	Severities map[string]float64
	// Matches maps category name to the keywords that hit.
	Matches map[string][]string
	// SemanticScore is the maximum severity across categories with at
	// least one hit; 0.0 when nothing matched.
	SemanticScore float64
	// TopCategory is the category with highest severity, ties broken by
	// declaration order. Empty when nothing matched.
	TopCategory string
	// Polarity is the raw sentiment in [-1,1]; Urgency is its magnitude.
	Polarity float64
	Urgency  float64
}

// Extractor computes Signals against an immutable category table.
type Extractor struct {
	categories []config.Category
	oracles    *oracle.Failsafe
}

// NewExtractor builds an extractor over the configured categories.
func NewExtractor(categories []config.Category, oracles *oracle.Failsafe) *Extractor {
	return &Extractor{categories: categories, oracles: oracles}
}

// Extract computes all text signals for one description.
func (e *Extractor) Extract(ctx context.Context, description string) Signals {
	sig := Signals{
		Severities: make(map[string]float64, len(e.categories)),
		Matches:    make(map[string][]string, len(e.categories)),
	}
	lower := strings.ToLower(description)

	for _, cat := range e.categories {
		severity := 0.0
		var matched []string
		for kw, weight := range cat.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				severity += weight
				matched = append(matched, kw)
			}
		}
		if severity > 1.0 {
			severity = 1.0
		}
		sort.Strings(matched)
		sig.Severities[cat.Name] = severity
		if len(matched) > 0 {
			sig.Matches[cat.Name] = matched
			// Strict comparison keeps declaration order as tie-break.
			if severity > sig.Severities[sig.TopCategory] || sig.TopCategory == "" {
				sig.TopCategory = cat.Name
				sig.SemanticScore = severity
			}
		}
	}

	sig.Polarity = e.oracles.Polarity(ctx, description)
	sig.Urgency = math.Abs(sig.Polarity)

	return sig
}

// MatchKeywords returns the keywords present in text as a
// case-insensitive substring, preserving list order.
func MatchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			out = append(out, kw)
		}
	}
	return out
}
