// Package analyzer ties validation, signal extraction and triage into
// one decision per submission and records it in the audit log.
package analyzer

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicaudit/civicgate/internal/audit"
	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/judge"
	"github.com/civicaudit/civicgate/internal/model"
	"github.com/civicaudit/civicgate/internal/oracle"
	"github.com/civicaudit/civicgate/internal/pipeline"
	"github.com/civicaudit/civicgate/internal/textsig"
	"github.com/civicaudit/civicgate/internal/triage"
)

// Report is the full outcome for one image+text submission. Triage is
// populated even on rejection so the caller can surface a priority
// hint with the rejection message.
type Report struct {
	TraceID  string
	Verdict  model.Verdict
	Signals  textsig.Signals
	Triage   model.TriageResult
	Analysis *model.Analysis
}

// TextReport is the outcome of the text-only triage path.
type TextReport struct {
	TraceID string
	Signals textsig.Signals
	Triage  model.TriageResult
}

// Analyzer holds one immutable configuration snapshot and the
// components built from it. Hot reload replaces the whole analyzer.
type Analyzer struct {
	cfg        *config.Config
	configHash string
	pipeline   *pipeline.Pipeline
	extractor  *textsig.Extractor
	engine     *triage.Engine
	auditLog   *audit.Log
	log        *zap.Logger
}

// New wires an analyzer from a config snapshot. The judge may be nil
// when gate mode is configured; auditLog may be nil to disable audit
// recording.
func New(cfg *config.Config, configHash string, oracles *oracle.Failsafe, j judge.Judge, auditLog *audit.Log, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		cfg:        cfg,
		configHash: configHash,
		pipeline:   pipeline.New(cfg, oracles, j, log),
		extractor:  textsig.NewExtractor(cfg.Categories, oracles),
		engine:     triage.NewEngine(cfg),
		auditLog:   auditLog,
		log:        log,
	}
}

// ConfigHash returns the SHA-256 of the loaded configuration.
func (a *Analyzer) ConfigHash() string { return a.configHash }

// Mode returns the configured validation mode.
func (a *Analyzer) Mode() string {
	if a.cfg.Judge.Mode == "" {
		return "gates"
	}
	return a.cfg.Judge.Mode
}

// VisionURL returns the configured sidecar address.
func (a *Analyzer) VisionURL() string { return a.cfg.Oracles.VisionURL }

// Policy returns the active priority policy name.
func (a *Analyzer) Policy() string { return a.engine.Policy() }

// Analyze validates one submission and, regardless of the verdict,
// extracts text signals and runs triage. The analysis payload is only
// assembled for accepted reports.
func (a *Analyzer) Analyze(ctx context.Context, sub model.Submission) (Report, error) {
	if err := sub.Validate(); err != nil {
		return Report{}, err
	}

	rep := Report{TraceID: uuid.NewString()}
	rep.Verdict = a.pipeline.Validate(ctx, sub)

	// Text signals are extracted even for rejected submissions so the
	// citizen gets a priority hint for resubmission.
	rep.Signals = a.extractor.Extract(ctx, sub.Description)

	keywords := rep.Verdict.Keywords
	if keywords == nil {
		// Generative mode and early gate rejections never ran the
		// keyword gate.
		keywords = textsig.MatchKeywords(sub.Description, a.cfg.CivicKeywords)
	}

	rep.Triage = a.engine.Evaluate(rep.Signals, sub.Description,
		rep.Verdict.DescScore, rep.Verdict.CivicScore, len(keywords))

	if rep.Verdict.Accepted {
		rep.Analysis = a.assemble(rep, len(keywords))
	}

	a.record(rep)

	a.log.Info("submission analyzed",
		zap.String("trace_id", rep.TraceID),
		zap.Bool("accepted", rep.Verdict.Accepted),
		zap.String("priority", rep.Triage.Priority.String()),
		zap.Int("verification_score", rep.Triage.VerificationScore))

	return rep, nil
}

// AnalyzeText runs the text-only triage path: no image, no validation
// gates, priority from description signals alone. Hazards need an
// image-derived signal to corroborate, so they are never flagged here.
func (a *Analyzer) AnalyzeText(ctx context.Context, description string) (TextReport, error) {
	if err := model.ValidateText(description); err != nil {
		return TextReport{}, err
	}

	rep := TextReport{TraceID: uuid.NewString()}
	rep.Signals = a.extractor.Extract(ctx, description)
	keywords := textsig.MatchKeywords(description, a.cfg.CivicKeywords)
	rep.Triage = a.engine.EvaluateText(rep.Signals, description, len(keywords))

	a.log.Info("text triaged",
		zap.String("trace_id", rep.TraceID),
		zap.String("priority", rep.Triage.Priority.String()))

	return rep, nil
}

func (a *Analyzer) assemble(rep Report, keywordCount int) *model.Analysis {
	t := rep.Triage
	autoVerify := t.Priority == model.PriorityCritical &&
		t.IsDangerous &&
		t.VerificationScore >= a.cfg.Triage.AutoVerifyScore

	reason := fmt.Sprintf("score %d from description match %.3f, civic relevance %.3f, %d keyword hits",
		t.VerificationScore, rep.Verdict.DescScore, rep.Verdict.CivicScore, keywordCount)
	if autoVerify {
		reason = "auto-verified: critical dangerous report, " + reason
	}

	return &model.Analysis{
		Priority:           t.Priority,
		IsCritical:         t.Priority == model.PriorityCritical,
		Urgency:            round2(t.Urgency),
		VerificationScore:  t.VerificationScore,
		IsDangerous:        t.IsDangerous,
		DangerType:         t.DangerType,
		AutoVerify:         autoVerify,
		VerificationReason: reason,
		ValidationDetails:  rep.Verdict.Debug,
	}
}

func (a *Analyzer) record(rep Report) {
	if a.auditLog == nil {
		return
	}
	status := "rejected"
	if rep.Verdict.Accepted {
		status = "accepted"
	}
	entry := audit.Entry{
		TraceID:           rep.TraceID,
		Status:            status,
		Reason:            rep.Verdict.Reason,
		Priority:          rep.Triage.Priority.String(),
		VerificationScore: rep.Triage.VerificationScore,
		DangerType:        string(rep.Triage.DangerType),
		ConfigHash:        a.configHash,
	}
	if err := a.auditLog.Record(entry); err != nil {
		a.log.Error("audit record failed", zap.Error(err))
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
