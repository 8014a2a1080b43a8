package model

import (
	"fmt"
	"strings"
)

// MinDescriptionLength is the shortest trimmed description accepted.
const MinDescriptionLength = 3

// Submission is one citizen report: an opaque image payload plus a
// free-text description. The description is trimmed on construction.
type Submission struct {
	Image       []byte
	MIMEType    string
	Description string
}

// NewSubmission trims the description and defaults the MIME type.
func NewSubmission(image []byte, mimeType, description string) Submission {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return Submission{
		Image:       image,
		MIMEType:    mimeType,
		Description: strings.TrimSpace(description),
	}
}

// InputError marks a submission that is malformed before any oracle call.
// It is a client fault, never a server error.
type InputError struct {
	Field string
	Msg   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// Validate rejects submissions with no image or an empty/too-short
// description. Runs before any oracle is consulted.
func (s Submission) Validate() error {
	if len(s.Image) == 0 {
		return &InputError{Field: "image", Msg: "image payload is required"}
	}
	if s.Description == "" {
		return &InputError{Field: "description", Msg: "description cannot be empty"}
	}
	if len(s.Description) < MinDescriptionLength {
		return &InputError{Field: "description", Msg: "description is too short"}
	}
	return nil
}

// ValidateText checks the text-only analysis variant.
func ValidateText(description string) error {
	d := strings.TrimSpace(description)
	if d == "" {
		return &InputError{Field: "description", Msg: "description cannot be empty"}
	}
	if len(d) < MinDescriptionLength {
		return &InputError{Field: "description", Msg: "description is too short"}
	}
	return nil
}
