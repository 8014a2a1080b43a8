package model

import (
	"errors"
	"testing"
)

func TestNewSubmissionDefaults(t *testing.T) {
	sub := NewSubmission([]byte{0xff}, "", "  pothole on main street  ")

	if sub.MIMEType != "image/jpeg" {
		t.Errorf("expected default MIME image/jpeg, got %q", sub.MIMEType)
	}
	if sub.Description != "pothole on main street" {
		t.Errorf("description not trimmed: %q", sub.Description)
	}
}

func TestValidateMissingImage(t *testing.T) {
	sub := NewSubmission(nil, "", "pothole on main street")

	err := sub.Validate()
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if inputErr.Field != "image" {
		t.Errorf("expected image field error, got %q", inputErr.Field)
	}
}

func TestValidateEmptyDescription(t *testing.T) {
	sub := NewSubmission([]byte{0xff}, "", "   ")

	err := sub.Validate()
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
	if inputErr.Field != "description" {
		t.Errorf("expected description field error, got %q", inputErr.Field)
	}
}

func TestValidateShortDescription(t *testing.T) {
	sub := NewSubmission([]byte{0xff}, "", "ab")
	if sub.Validate() == nil {
		t.Error("expected error for description below minimum length")
	}
}

func TestValidateOK(t *testing.T) {
	sub := NewSubmission([]byte{0xff}, "image/png", "water leak near the school")
	if err := sub.Validate(); err != nil {
		t.Errorf("valid submission rejected: %v", err)
	}
}

func TestValidateText(t *testing.T) {
	if err := ValidateText("garbage pile near the park"); err != nil {
		t.Errorf("valid text rejected: %v", err)
	}
	if ValidateText("  ") == nil {
		t.Error("expected error for blank text")
	}
	if ValidateText("ok") == nil {
		t.Error("expected error for too-short text")
	}
}
