package model

import (
	"fmt"
	"sort"
	"strings"
)

// Priority ranks how urgently a report should be handled.
// Ordering is total: Low < Medium < High < Critical.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var priorityNames = map[Priority]string{
	PriorityLow:      "LOW",
	PriorityMedium:   "MEDIUM",
	PriorityHigh:     "HIGH",
	PriorityCritical: "CRITICAL",
}

func (p Priority) String() string {
	if s, ok := priorityNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// MarshalJSON encodes the priority as its canonical name.
func (p Priority) MarshalJSON() ([]byte, error) {
	return []byte(`"` + p.String() + `"`), nil
}

// ParsePriority maps a canonical name back to a Priority.
func ParsePriority(s string) (Priority, error) {
	for p, name := range priorityNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return PriorityLow, fmt.Errorf("unknown priority %q", s)
}

// DangerType identifies a corroborated hazard class.
type DangerType string

const (
	DangerNone       DangerType = "none"
	DangerFire       DangerType = "fire"
	DangerElectrical DangerType = "electrical"
	DangerFlood      DangerType = "flood"
	DangerStructural DangerType = "structural"
)

// DetectionSet is the set of object labels recognized in one image.
// Immutable once produced by the detection oracle.
type DetectionSet map[string]bool

// NewDetectionSet builds a set from raw labels, lowercased.
func NewDetectionSet(labels []string) DetectionSet {
	s := make(DetectionSet, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			s[l] = true
		}
	}
	return s
}

// Labels returns the set members in sorted order for deterministic output.
func (d DetectionSet) Labels() []string {
	out := make([]string, 0, len(d))
	for l := range d {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the sorted labels present in both d and other.
func (d DetectionSet) Intersect(other map[string]bool) []string {
	var out []string
	for l := range d {
		if other[l] {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return out
}

// Verdict is the outcome of the validation pipeline for one submission.
// Debug holds only scores from stages that were actually reached; once a
// gate rejects, no later-stage oracle is invoked and no later-stage key
// appears.
type Verdict struct {
	Accepted bool           `json:"accepted"`
	Reason   string         `json:"reason"`
	Debug    map[string]any `json:"debug"`

	// Stage outputs, zero-valued for stages not reached. Used by the
	// triage engine; the Debug map is the audit-facing view.
	DescScore     float64  `json:"-"`
	CivicScore    float64  `json:"-"`
	NonCivicScore float64  `json:"-"`
	Keywords      []string `json:"-"`
	Objects       []string `json:"-"`
}

// Trace appends one debug value. Keys are append-only per stage; an
// existing key is never overwritten.
func (v *Verdict) Trace(key string, val any) {
	if v.Debug == nil {
		v.Debug = make(map[string]any)
	}
	if _, exists := v.Debug[key]; exists {
		return
	}
	v.Debug[key] = val
}

// TriageResult holds the triage engine's decision for one report.
type TriageResult struct {
	Priority          Priority   `json:"priority"`
	Urgency           float64    `json:"urgency"`
	VerificationScore int        `json:"verification_score"`
	IsDangerous       bool       `json:"is_dangerous"`
	DangerType        DangerType `json:"danger_type"`
}

// Analysis is the assembled response payload for an accepted report.
type Analysis struct {
	Priority           Priority       `json:"priority"`
	IsCritical         bool           `json:"is_critical"`
	Urgency            float64        `json:"urgency"`
	VerificationScore  int            `json:"verification_score"`
	IsDangerous        bool           `json:"is_dangerous"`
	DangerType         DangerType     `json:"danger_type"`
	AutoVerify         bool           `json:"auto_verify"`
	VerificationReason string         `json:"verification_reason"`
	ValidationDetails  map[string]any `json:"validation_details"`
}
