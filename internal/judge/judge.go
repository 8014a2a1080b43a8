// Package judge isolates the generative alignment oracle: a single
// model call that decides whether an image and description describe the
// same civic issue. Free-form model output never leaves this package;
// callers only ever see the validated Result.
package judge

import "context"

// Result is the validated outcome of one alignment judgment.
type Result struct {
	IsMatch bool   `json:"is_match"`
	Reason  string `json:"reason"`
}

// Judge is the generative alignment oracle interface. Implementations
// may error or time out; the caller applies the configured FailurePolicy.
type Judge interface {
	JudgeAlignment(ctx context.Context, image []byte, mimeType, description string) (Result, error)
}

// FailurePolicy decides the verdict when the judge errors, times out, or
// returns unparsable output. The two defaults have materially different
// safety implications, so the choice is always explicit.
type FailurePolicy string

const (
	// FailOpen accepts the submission when the judge is unavailable.
	FailOpen FailurePolicy = "open"
	// FailClosed rejects the submission when the judge is unavailable.
	FailClosed FailurePolicy = "closed"
)

// ParsePolicy maps a config string to a policy, defaulting to FailOpen.
func ParsePolicy(s string) FailurePolicy {
	if s == string(FailClosed) {
		return FailClosed
	}
	return FailOpen
}
