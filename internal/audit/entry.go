package audit

// TimestampFormat is the wire format for entry timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// Entry is one line in the hash-chained JSONL audit log. All fields
// are scalars (no map[string]any) so json.Marshal field order is
// deterministic and line hashes are reproducible.
type Entry struct {
	Timestamp         string `json:"ts"`
	TraceID           string `json:"trace_id"`
	Status            string `json:"status"`
	Reason            string `json:"reason"`
	Priority          string `json:"priority,omitempty"`
	VerificationScore int    `json:"verification_score"`
	DangerType        string `json:"danger_type,omitempty"`
	ConfigHash        string `json:"config_hash"`
	PrevHash          string `json:"prev_hash"`
}
