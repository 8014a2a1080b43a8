package oracle

import (
	"context"
	"errors"
	"testing"
)

type failingOracle struct{}

func (failingOracle) DetectObjects(context.Context, []byte) ([]string, error) {
	return nil, errors.New("connection refused")
}
func (failingOracle) Similarity(context.Context, []byte, string) (float64, error) {
	return 0, errors.New("connection refused")
}
func (failingOracle) Polarity(context.Context, string) (float64, error) {
	return 0, errors.New("connection refused")
}

type workingOracle struct{}

func (workingOracle) DetectObjects(context.Context, []byte) ([]string, error) {
	return []string{"Pothole", "ROAD"}, nil
}
func (workingOracle) Similarity(context.Context, []byte, string) (float64, error) {
	return 0.33, nil
}
func (workingOracle) Polarity(context.Context, string) (float64, error) {
	return -0.5, nil
}

func TestFailsafeFallbacks(t *testing.T) {
	f := NewFailsafe(failingOracle{}, failingOracle{}, failingOracle{}, nil)
	ctx := context.Background()

	if set := f.DetectObjects(ctx, []byte{1}); len(set) != 0 {
		t.Errorf("expected empty detection set on failure, got %v", set)
	}
	if score := f.Similarity(ctx, []byte{1}, "x"); score != 0 {
		t.Errorf("expected similarity 0 on failure, got %v", score)
	}
	if pol := f.Polarity(ctx, "x"); pol != 0 {
		t.Errorf("expected polarity 0 on failure, got %v", pol)
	}
}

func TestFailsafePassThrough(t *testing.T) {
	f := NewFailsafe(workingOracle{}, workingOracle{}, workingOracle{}, nil)
	ctx := context.Background()

	set := f.DetectObjects(ctx, []byte{1})
	if !set["pothole"] || !set["road"] {
		t.Errorf("labels must be lowercased into the set, got %v", set)
	}
	if score := f.Similarity(ctx, []byte{1}, "x"); score != 0.33 {
		t.Errorf("expected 0.33, got %v", score)
	}
	if pol := f.Polarity(ctx, "x"); pol != -0.5 {
		t.Errorf("expected -0.5, got %v", pol)
	}
}
