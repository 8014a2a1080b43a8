// Package pipeline implements the ordered validation gates that decide
// whether an image and description form a genuine civic report.
//
// Gate order (must not be changed):
//  1. Junk-object gate: reject on junk labels, no similarity calls
//  2. Description match: reject below the description threshold
//  3. Civic relevance: absolute threshold, then relative margin
//  4. Keyword presence: reject when no civic keyword matches
//
// The first failing gate short-circuits. Later oracles are never
// invoked on a rejected submission.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/judge"
	"github.com/civicaudit/civicgate/internal/model"
	"github.com/civicaudit/civicgate/internal/oracle"
	"github.com/civicaudit/civicgate/internal/textsig"
)

// keywordSampleSize is how many expected keywords a keyword-gate
// rejection lists back to the citizen.
const keywordSampleSize = 8

// Pipeline orchestrates the validation gates over the capability
// oracles. All fields are immutable after construction; one pipeline
// serves concurrent submissions.
type Pipeline struct {
	cfg     *config.Config
	junk    map[string]bool
	oracles *oracle.Failsafe
	judge   judge.Judge
	policy  judge.FailurePolicy
	log     *zap.Logger
}

// New builds a pipeline. The judge may be nil when generative mode is
// not configured.
func New(cfg *config.Config, oracles *oracle.Failsafe, j judge.Judge, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		junk:    cfg.JunkSet(),
		oracles: oracles,
		judge:   j,
		policy:  judge.ParsePolicy(cfg.Judge.FailurePolicy),
		log:     log,
	}
}

// Validate runs the configured validation mode over one submission.
func (p *Pipeline) Validate(ctx context.Context, sub model.Submission) model.Verdict {
	if p.cfg.Judge.Mode == "generative" && p.judge != nil {
		return p.validateGenerative(ctx, sub)
	}
	return p.validateGates(ctx, sub)
}

func (p *Pipeline) validateGates(ctx context.Context, sub model.Submission) model.Verdict {
	v := model.Verdict{}

	// Gate 1: junk objects. Rejecting here means no similarity oracle
	// is ever invoked for this image.
	detected := p.oracles.DetectObjects(ctx, sub.Image)
	v.Objects = detected.Labels()
	v.Trace("detected_objects", v.Objects)

	if junk := detected.Intersect(p.junk); len(junk) > 0 {
		v.Reason = fmt.Sprintf(
			"Image contains non-civic objects: %s. Please upload an image related to a civic issue.",
			strings.Join(junk, ", "))
		return v
	}

	// Gate 2: image-description alignment.
	descScore := p.oracles.Similarity(ctx, sub.Image, sub.Description)
	v.DescScore = descScore
	v.Trace("description_match_score", round3(descScore))

	if descScore < p.cfg.Thresholds.DescriptionMatch {
		v.Trace("threshold", p.cfg.Thresholds.DescriptionMatch)
		v.Reason = fmt.Sprintf("Image and description do not match (similarity: %.3f)", descScore)
		return v
	}

	// Gate 3: civic relevance. The two reference scores are independent
	// oracle calls and may run concurrently; results are combined
	// deterministically below.
	var civicScore, nonCivicScore float64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		civicScore = p.oracles.Similarity(gctx, sub.Image, p.cfg.CivicPrompt)
		return nil
	})
	g.Go(func() error {
		nonCivicScore = p.oracles.Similarity(gctx, sub.Image, p.cfg.NonCivicPrompt)
		return nil
	})
	_ = g.Wait()

	v.CivicScore = civicScore
	v.NonCivicScore = nonCivicScore
	v.Trace("civic_score", round3(civicScore))
	v.Trace("non_civic_score", round3(nonCivicScore))

	if civicScore < p.cfg.Thresholds.CivicImage {
		v.Trace("threshold", p.cfg.Thresholds.CivicImage)
		v.Reason = fmt.Sprintf("Image does not appear to be civic-related (civic score: %.3f)", civicScore)
		return v
	}

	// Civic relevance must win the relative contest, not just clear the
	// absolute bar.
	if civicScore < nonCivicScore+p.cfg.Thresholds.CivicMargin {
		v.Reason = fmt.Sprintf(
			"Image appears more non-civic than civic (civic: %.3f, non-civic: %.3f)",
			civicScore, nonCivicScore)
		return v
	}

	// Gate 4: keyword presence. Trace a non-nil slice so the debug
	// payload marshals as [] rather than null when nothing matched.
	matched := textsig.MatchKeywords(sub.Description, p.cfg.CivicKeywords)
	v.Keywords = matched
	if matched == nil {
		v.Trace("keywords_found", []string{})
	} else {
		v.Trace("keywords_found", matched)
	}

	if len(matched) == 0 {
		sample := p.cfg.CivicKeywords
		if len(sample) > keywordSampleSize {
			sample = sample[:keywordSampleSize]
		}
		v.Reason = fmt.Sprintf(
			"Description does not contain civic-related keywords. Please mention specific issues like: %s, etc.",
			strings.Join(sample, ", "))
		return v
	}

	v.Accepted = true
	v.Reason = "Validated civic issue"
	return v
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
