package textsig

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/civicaudit/civicgate/internal/config"
	"github.com/civicaudit/civicgate/internal/oracle"
)

type stubDetector struct{ labels []string }

func (s stubDetector) DetectObjects(context.Context, []byte) ([]string, error) {
	return s.labels, nil
}

type stubScorer struct{ score float64 }

func (s stubScorer) Similarity(context.Context, []byte, string) (float64, error) {
	return s.score, nil
}

type stubSentiment struct {
	polarity float64
	err      error
}

func (s stubSentiment) Polarity(context.Context, string) (float64, error) {
	return s.polarity, s.err
}

func newExtractor(polarity float64) *Extractor {
	oracles := oracle.NewFailsafe(stubDetector{}, stubScorer{}, stubSentiment{polarity: polarity}, nil)
	return NewExtractor(config.Default().Categories, oracles)
}

func TestExtractSeverityCapped(t *testing.T) {
	e := newExtractor(0)
	// fire 0.9 + explosion 1.0 sums past the cap.
	sig := e.Extract(context.Background(), "fire and explosion near the factory")

	if sig.Severities["disaster"] != 1.0 {
		t.Errorf("expected disaster severity capped at 1.0, got %v", sig.Severities["disaster"])
	}
	if sig.TopCategory != "disaster" {
		t.Errorf("expected top category disaster, got %q", sig.TopCategory)
	}
	if sig.SemanticScore != 1.0 {
		t.Errorf("expected semantic score 1.0, got %v", sig.SemanticScore)
	}
}

func TestExtractCaseInsensitive(t *testing.T) {
	e := newExtractor(0)
	sig := e.Extract(context.Background(), "FIRE at the warehouse")

	if sig.Severities["disaster"] != 0.9 {
		t.Errorf("expected severity 0.9 for fire, got %v", sig.Severities["disaster"])
	}
}

func TestExtractTieBreakDeclarationOrder(t *testing.T) {
	e := newExtractor(0)
	// "wire" (electrical 0.5) and "crack" (road 0.5) tie; electrical is
	// declared first.
	sig := e.Extract(context.Background(), "a wire lying in a crack")

	if sig.Severities["electrical"] != sig.Severities["road"] {
		t.Fatalf("test premise broken: severities differ (%v vs %v)",
			sig.Severities["electrical"], sig.Severities["road"])
	}
	if sig.TopCategory != "electrical" {
		t.Errorf("tie must go to earlier category, got %q", sig.TopCategory)
	}
}

func TestExtractNoMatch(t *testing.T) {
	e := newExtractor(0)
	sig := e.Extract(context.Background(), "lovely weather today")

	if sig.TopCategory != "" {
		t.Errorf("expected no top category, got %q", sig.TopCategory)
	}
	if sig.SemanticScore != 0 {
		t.Errorf("expected semantic score 0, got %v", sig.SemanticScore)
	}
}

func TestExtractUrgencyIsMagnitude(t *testing.T) {
	e := newExtractor(-0.8)
	sig := e.Extract(context.Background(), "terrible garbage pile")

	if sig.Polarity != -0.8 {
		t.Errorf("expected polarity -0.8, got %v", sig.Polarity)
	}
	if sig.Urgency != 0.8 {
		t.Errorf("expected urgency 0.8, got %v", sig.Urgency)
	}
}

func TestExtractSentimentFailureFallsBack(t *testing.T) {
	oracles := oracle.NewFailsafe(stubDetector{}, stubScorer{},
		stubSentiment{err: errors.New("sidecar down")}, nil)
	e := NewExtractor(config.Default().Categories, oracles)

	sig := e.Extract(context.Background(), "pothole on the road")
	if sig.Urgency != 0 {
		t.Errorf("expected urgency 0 on sentiment failure, got %v", sig.Urgency)
	}
	if sig.TopCategory != "road" {
		t.Errorf("keyword extraction must still run, got %q", sig.TopCategory)
	}
}

func TestMatchKeywordsPreservesOrder(t *testing.T) {
	got := MatchKeywords("the STREET near the pothole floods with water",
		[]string{"road", "street", "pothole", "water", "sewage"})
	want := []string{"street", "pothole", "water"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("matches mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchKeywordsNone(t *testing.T) {
	if got := MatchKeywords("nothing civic here", []string{"pothole", "sewage"}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
