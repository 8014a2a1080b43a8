package triage

import (
	"strings"

	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/model"
)

// DangerDetector is the corroboration layer for dangerous content.
// Hazards are evaluated in configured order; first match wins. A hazard
// fires only when a type keyword appears in the text AND an independent
// image-side signal corroborates it: civic similarity at or above the
// type threshold, or an explicit danger phrase. Keyword hits alone never
// flag, which suppresses false positives from exaggerated phrasing.
type DangerDetector struct {
	hazards []config.Hazard
}

// NewDangerDetector builds a detector over the configured hazard table.
func NewDangerDetector(hazards []config.Hazard) *DangerDetector {
	return &DangerDetector{hazards: hazards}
}

// Detect returns whether the report is dangerous and the hazard type.
func (d *DangerDetector) Detect(description string, civicSimilarity float64) (bool, model.DangerType) {
	lower := strings.ToLower(description)

	for _, h := range d.hazards {
		if !containsAny(lower, h.Keywords) {
			continue
		}
		if civicSimilarity >= h.CivicThreshold || containsAny(lower, h.DangerPhrases) {
			return true, model.DangerType(h.Type)
		}
	}
	return false, model.DangerNone
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}
