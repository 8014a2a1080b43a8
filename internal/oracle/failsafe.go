package oracle

import (
	"context"

	"go.uber.org/zap"

	"github.com/civicaudit/civicgate/internal/model"
)

// Failsafe wraps the capability oracles with their declared fallback
// values so a failing oracle can never propagate an unhandled fault:
// detection falls back to an empty set, similarity and sentiment to 0.0.
// All three fallbacks are fail-closed for the relevance gates.
type Failsafe struct {
	detector  ObjectDetector
	scorer    SimilarityScorer
	sentiment SentimentScorer
	log       *zap.Logger
}

// NewFailsafe wraps the given oracles. A nil logger disables logging.
func NewFailsafe(d ObjectDetector, s SimilarityScorer, p SentimentScorer, log *zap.Logger) *Failsafe {
	if log == nil {
		log = zap.NewNop()
	}
	return &Failsafe{detector: d, scorer: s, sentiment: p, log: log}
}

// DetectObjects returns the detection set, or an empty set on failure.
// Fail-closed: with nothing detected, nothing is excluded and nothing is
// corroborated.
func (f *Failsafe) DetectObjects(ctx context.Context, image []byte) model.DetectionSet {
	labels, err := f.detector.DetectObjects(ctx, image)
	if err != nil {
		f.log.Warn("object detection failed, falling back to empty set", zap.Error(err))
		return model.DetectionSet{}
	}
	return model.NewDetectionSet(labels)
}

// Similarity returns the alignment score, or 0.0 on failure.
func (f *Failsafe) Similarity(ctx context.Context, image []byte, text string) float64 {
	score, err := f.scorer.Similarity(ctx, image, text)
	if err != nil {
		f.log.Warn("similarity scoring failed, falling back to 0.0", zap.Error(err))
		return 0.0
	}
	return score
}

// Polarity returns text polarity, or 0.0 on failure.
func (f *Failsafe) Polarity(ctx context.Context, text string) float64 {
	polarity, err := f.sentiment.Polarity(ctx, text)
	if err != nil {
		f.log.Warn("sentiment scoring failed, falling back to 0.0", zap.Error(err))
		return 0.0
	}
	return polarity
}
