package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tempLog(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "audit.jsonl")
}

func record(t *testing.T, l *Log, traceID, status string) {
	t.Helper()
	if err := l.Record(Entry{
		TraceID:           traceID,
		Status:            status,
		Reason:            "test",
		Priority:          "HIGH",
		VerificationScore: 53,
		ConfigHash:        "sha256:abc",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
}

func TestChainStartsAtGenesis(t *testing.T) {
	path := tempLog(t)
	l, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	record(t, l, "t1", "accepted")
	l.Close()

	data, _ := os.ReadFile(path)
	var e Entry
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.PrevHash != GenesisHash {
		t.Errorf("first entry prev_hash must be genesis, got %s", e.PrevHash)
	}
}

func TestChainLinksEntries(t *testing.T) {
	path := tempLog(t)
	l, _ := Open(path)
	record(t, l, "t1", "accepted")
	record(t, l, "t2", "rejected")
	record(t, l, "t3", "accepted")
	l.Close()

	result := Verify(path)
	if !result.Valid {
		t.Fatalf("chain invalid: %s (line %d)", result.Error, result.ErrorLine)
	}
	if result.Lines != 3 {
		t.Errorf("expected 3 lines, got %d", result.Lines)
	}
}

func TestReopenContinuesChain(t *testing.T) {
	path := tempLog(t)
	l, _ := Open(path)
	record(t, l, "t1", "accepted")
	l.Close()

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	record(t, l2, "t2", "rejected")
	l2.Close()

	result := Verify(path)
	if !result.Valid {
		t.Errorf("reopened chain invalid: %s", result.Error)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	path := tempLog(t)
	l, _ := Open(path)
	record(t, l, "t1", "accepted")
	record(t, l, "t2", "rejected")
	l.Close()

	data, _ := os.ReadFile(path)
	tampered := strings.Replace(string(data), `"rejected"`, `"accepted"`, 1)
	os.WriteFile(path, []byte(tampered), 0600)

	result := Verify(path)
	if result.Valid {
		t.Error("tampered log must fail verification")
	}
}

func TestVerifyDetectsDeletedLine(t *testing.T) {
	path := tempLog(t)
	l, _ := Open(path)
	record(t, l, "t1", "accepted")
	record(t, l, "t2", "accepted")
	record(t, l, "t3", "accepted")
	l.Close()

	f, _ := os.Open(path)
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	f.Close()

	// Drop the middle entry.
	os.WriteFile(path, []byte(lines[0]+"\n"+lines[2]+"\n"), 0600)

	result := Verify(path)
	if result.Valid {
		t.Error("chain with a deleted entry must fail verification")
	}
	if result.ErrorLine != 2 {
		t.Errorf("expected break at line 2, got %d", result.ErrorLine)
	}
}

func TestSummarize(t *testing.T) {
	path := tempLog(t)
	l, _ := Open(path)
	l.Record(Entry{TraceID: "t1", Status: "accepted", Priority: "CRITICAL", DangerType: "fire"})
	l.Record(Entry{TraceID: "t2", Status: "accepted", Priority: "MEDIUM", DangerType: "none"})
	l.Record(Entry{TraceID: "t3", Status: "rejected", Priority: "LOW"})
	l.Close()

	s, err := Summarize(path)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Lines != 3 || s.Accepted != 2 || s.Rejected != 1 {
		t.Errorf("counts wrong: %+v", s)
	}
	if s.Dangerous != 1 {
		t.Errorf("expected 1 dangerous, got %d", s.Dangerous)
	}
	if s.ByPriority["CRITICAL"] != 1 || s.ByPriority["MEDIUM"] != 1 || s.ByPriority["LOW"] != 1 {
		t.Errorf("priority tally wrong: %v", s.ByPriority)
	}

	text := s.FormatText()
	if !strings.Contains(text, "2 accepted") || !strings.Contains(text, "1 CRITICAL") {
		t.Errorf("unexpected summary text:\n%s", text)
	}
}
