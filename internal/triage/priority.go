package triage

import (
	"strings"

	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/model"
	"github.com/civicaudit/civicgate/internal/textsig"
)

// PriorityPolicy decides a report's priority from text signals alone.
// Implementations must be pure: identical signals and description always
// yield an identical priority.
type PriorityPolicy interface {
	Name() string
	Decide(sig textsig.Signals, description string) model.Priority
}

// HierarchicalPolicy is the canonical policy: the winning category's
// configured tier decides, with an urgency fallback when nothing matched
// and an explicit downgrade carve-out for critical-tier categories whose
// vocabulary overlaps low-voltage lighting terms.
type HierarchicalPolicy struct {
	tiers          map[string]string
	downgradeTerms []string
	urgencyMedium  float64
}

// NewHierarchicalPolicy builds the canonical policy from configuration.
func NewHierarchicalPolicy(categories []config.Category, triage config.TriageConfig) *HierarchicalPolicy {
	tiers := make(map[string]string, len(categories))
	for _, c := range categories {
		tiers[c.Name] = c.Tier
	}
	urgencyMedium := triage.UrgencyMedium
	if urgencyMedium <= 0 {
		urgencyMedium = 0.6
	}
	return &HierarchicalPolicy{
		tiers:          tiers,
		downgradeTerms: triage.DowngradeTerms,
		urgencyMedium:  urgencyMedium,
	}
}

func (p *HierarchicalPolicy) Name() string { return "hierarchical" }

// Decide implements PriorityPolicy.
func (p *HierarchicalPolicy) Decide(sig textsig.Signals, description string) model.Priority {
	if sig.TopCategory == "" {
		if sig.Urgency > p.urgencyMedium {
			return model.PriorityMedium
		}
		return model.PriorityLow
	}

	switch p.tiers[sig.TopCategory] {
	case "critical":
		// Lighting-only mentions share electrical vocabulary but are
		// low-voltage; an explicit downgrade term forces LOW.
		if p.hasDowngradeTerm(description) {
			return model.PriorityLow
		}
		return model.PriorityCritical
	case "high":
		return model.PriorityHigh
	case "medium":
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

func (p *HierarchicalPolicy) hasDowngradeTerm(description string) bool {
	lower := strings.ToLower(description)
	for _, term := range p.downgradeTerms {
		if strings.Contains(lower, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// Blended score weights and cut-offs. Kept as fixed constants so the
// named alternative stays comparable across runs.
const (
	blendSemanticWeight = 0.7
	blendUrgencyWeight  = 0.3
	blendCriticalDirect = 0.85
	blendCriticalFinal  = 0.75
	blendHighFinal      = 0.50
	blendMediumFinal    = 0.30
)

// BlendedPolicy is the score-blended alternative found in the system's
// history. It is selectable for comparison and regression testing, never
// silently merged into the canonical policy.
type BlendedPolicy struct{}

func (BlendedPolicy) Name() string { return "blended" }

// Decide implements PriorityPolicy.
func (BlendedPolicy) Decide(sig textsig.Signals, _ string) model.Priority {
	final := blendSemanticWeight*sig.SemanticScore + blendUrgencyWeight*sig.Urgency

	switch {
	case sig.SemanticScore >= blendCriticalDirect || final >= blendCriticalFinal:
		return model.PriorityCritical
	case final >= blendHighFinal:
		return model.PriorityHigh
	case final >= blendMediumFinal:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// PolicyFor selects a policy by configured name, defaulting to the
// canonical hierarchical policy.
func PolicyFor(cfg *config.Config) PriorityPolicy {
	if cfg.Triage.Policy == "blended" {
		return BlendedPolicy{}
	}
	return NewHierarchicalPolicy(cfg.Categories, cfg.Triage)
}
