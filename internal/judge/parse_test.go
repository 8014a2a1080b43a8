package judge

import "testing"

func TestParseResultPlainJSON(t *testing.T) {
	res, err := ParseResult(`{"is_match": true, "reason": "pothole visible in image"}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.IsMatch {
		t.Error("expected is_match true")
	}
	if res.Reason != "pothole visible in image" {
		t.Errorf("unexpected reason: %q", res.Reason)
	}
}

func TestParseResultCodeFences(t *testing.T) {
	raw := "```json\n{\"is_match\": false, \"reason\": \"image shows a cat\"}\n```"
	res, err := ParseResult(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.IsMatch {
		t.Error("expected is_match false")
	}
}

func TestParseResultProseAroundJSON(t *testing.T) {
	raw := `Sure, here is my verdict: {"is_match": true, "reason": "matches"} Hope that helps!`
	res, err := ParseResult(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !res.IsMatch {
		t.Error("expected is_match true")
	}
}

func TestParseResultMissingIsMatch(t *testing.T) {
	if _, err := ParseResult(`{"reason": "looks fine"}`); err == nil {
		t.Error("expected error when is_match is absent")
	}
}

func TestParseResultNoJSON(t *testing.T) {
	if _, err := ParseResult("the image matches the description"); err == nil {
		t.Error("expected error for output with no JSON object")
	}
}

func TestParseResultMalformedJSON(t *testing.T) {
	if _, err := ParseResult(`{"is_match": true,`); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestParsePolicy(t *testing.T) {
	if ParsePolicy("closed") != FailClosed {
		t.Error("expected closed policy")
	}
	if ParsePolicy("open") != FailOpen {
		t.Error("expected open policy")
	}
	if ParsePolicy("") != FailOpen {
		t.Error("expected open as the default policy")
	}
}
