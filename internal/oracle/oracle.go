// Package oracle defines the external capability interfaces the core
// consumes but does not implement, their concrete HTTP bindings, and the
// failsafe wrappers that apply each oracle's declared fallback.
package oracle

import "context"

// ObjectDetector returns the set of recognized object labels in an image.
type ObjectDetector interface {
	DetectObjects(ctx context.Context, image []byte) ([]string, error)
}

// SimilarityScorer returns the alignment between an image and a text
// prompt in [-1, 1]. Scores are tied to one (image, prompt) pair; each
// distinct prompt requires its own call.
type SimilarityScorer interface {
	Similarity(ctx context.Context, image []byte, text string) (float64, error)
}

// SentimentScorer returns text polarity in [-1, 1].
type SentimentScorer interface {
	Polarity(ctx context.Context, text string) (float64, error)
}
