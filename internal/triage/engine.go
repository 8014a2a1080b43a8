// Package triage turns validated signals into a priority level, a
// bounded verification score, and a corroborated hazard flag.
package triage

import (
	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/model"
	"github.com/civicaudit/civicgate/internal/textsig"
)

// Engine is the triage decision engine. It holds no request-scoped
// state; one engine serves concurrent requests.
type Engine struct {
	policy PriorityPolicy
	danger *DangerDetector
}

// NewEngine builds an engine from configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		policy: PolicyFor(cfg),
		danger: NewDangerDetector(cfg.Hazards),
	}
}

// Policy exposes the active priority policy name for health reporting.
func (e *Engine) Policy() string { return e.policy.Name() }

// Evaluate produces the triage result for one report. The similarity
// inputs come from the validation verdict; for rejected reports they
// are zero, so only an explicit danger phrase can corroborate there.
func (e *Engine) Evaluate(sig textsig.Signals, description string, descSimilarity, civicSimilarity float64, keywordCount int) model.TriageResult {
	priority := e.policy.Decide(sig, description)
	dangerous, dangerType := e.danger.Detect(description, civicSimilarity)

	return model.TriageResult{
		Priority:          priority,
		Urgency:           sig.Urgency,
		VerificationScore: VerificationScore(descSimilarity, civicSimilarity, keywordCount),
		IsDangerous:       dangerous,
		DangerType:        dangerType,
	}
}

// EvaluateText is the image-free variant. Hazard corroboration is an
// image-derived signal, so with no image at all the detector is skipped
// entirely and is_dangerous stays false even for danger-phrase text.
func (e *Engine) EvaluateText(sig textsig.Signals, description string, keywordCount int) model.TriageResult {
	return model.TriageResult{
		Priority:          e.policy.Decide(sig, description),
		Urgency:           sig.Urgency,
		VerificationScore: VerificationScore(0, 0, keywordCount),
		IsDangerous:       false,
		DangerType:        model.DangerNone,
	}
}
