package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Summary aggregates an audit log into per-outcome counts for
// operational review.
type Summary struct {
	Lines          int            `json:"lines"`
	Accepted       int            `json:"accepted"`
	Rejected       int            `json:"rejected"`
	ByPriority     map[string]int `json:"by_priority"`
	Dangerous      int            `json:"dangerous"`
	FirstTimestamp string         `json:"first_ts,omitempty"`
	LastTimestamp  string         `json:"last_ts,omitempty"`
}

// Summarize reads a JSONL audit log and tallies decisions. Lines that
// fail to parse are counted but otherwise skipped; Summarize does not
// validate the hash chain (use Verify for that).
func Summarize(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open: %w", err)
	}
	defer f.Close()

	s := &Summary{ByPriority: map[string]int{}}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		s.Lines++

		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}

		switch e.Status {
		case "accepted":
			s.Accepted++
		case "rejected":
			s.Rejected++
		}
		if e.Priority != "" {
			s.ByPriority[e.Priority]++
		}
		if e.DangerType != "" && e.DangerType != "none" {
			s.Dangerous++
		}
		if s.FirstTimestamp == "" {
			s.FirstTimestamp = e.Timestamp
		}
		s.LastTimestamp = e.Timestamp
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("audit: scan: %w", err)
	}

	return s, nil
}

// FormatText renders a Summary as a short human-readable report.
func (s *Summary) FormatText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entries: %d (%d accepted, %d rejected)\n", s.Lines, s.Accepted, s.Rejected)
	if s.Dangerous > 0 {
		fmt.Fprintf(&b, "Dangerous: %d\n", s.Dangerous)
	}
	if len(s.ByPriority) > 0 {
		parts := make([]string, 0, len(s.ByPriority))
		for _, p := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"} {
			if n, ok := s.ByPriority[p]; ok {
				parts = append(parts, fmt.Sprintf("%d %s", n, p))
			}
		}
		fmt.Fprintf(&b, "Priority: %s\n", strings.Join(parts, ", "))
	}
	if s.FirstTimestamp != "" {
		fmt.Fprintf(&b, "Range: %s to %s\n", s.FirstTimestamp, s.LastTimestamp)
	}
	return b.String()
}
