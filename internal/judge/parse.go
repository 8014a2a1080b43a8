package judge

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResult extracts a Result from raw model output. It strips
// markdown fences, locates the outermost brace pair, and requires an
// explicit is_match field. Anything else is a parse error the caller
// maps through the failure policy.
func ParseResult(raw string) (Result, error) {
	cleaned := cleanFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return Result{}, fmt.Errorf("no JSON object in judge output: %s", truncate(cleaned, 200))
	}
	cleaned = cleaned[start : end+1]

	var parsed struct {
		IsMatch *bool  `json:"is_match"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return Result{}, fmt.Errorf("parse judge output: %w", err)
	}
	if parsed.IsMatch == nil {
		return Result{}, fmt.Errorf("judge output missing is_match field")
	}

	return Result{IsMatch: *parsed.IsMatch, Reason: strings.TrimSpace(parsed.Reason)}, nil
}

// cleanFences strips markdown code-fence markers and whitespace.
func cleanFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
