package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/civicaudit/civicgate/internal/model"
)

// AnalyzeInput defines parameters for the civicgate_analyze tool.
type AnalyzeInput struct {
	ImageBase64 string `json:"image_base64" jsonschema:"report image, base64-encoded"`
	MIMEType    string `json:"mime_type,omitempty" jsonschema:"image MIME type, defaults to image/jpeg"`
	Text        string `json:"text" jsonschema:"report description"`
}

// AnalyzeOutput carries the validation verdict and, when accepted, the
// full triage analysis.
type AnalyzeOutput struct {
	Accepted     bool            `json:"accepted"`
	Reason       string          `json:"reason"`
	TraceID      string          `json:"trace_id"`
	PriorityHint string          `json:"priority_hint,omitempty"`
	Debug        map[string]any  `json:"debug,omitempty"`
	Analysis     *model.Analysis `json:"analysis,omitempty"`
}

// TriageInput defines parameters for the civicgate_triage tool.
type TriageInput struct {
	Text string `json:"text" jsonschema:"report description"`
}

// TriageOutput carries the text-only triage decision.
type TriageOutput struct {
	Priority          string             `json:"priority"`
	Urgency           float64            `json:"urgency"`
	VerificationScore int                `json:"verification_score"`
	TopCategory       string             `json:"top_category,omitempty"`
	Severities        map[string]float64 `json:"severities,omitempty"`
	TraceID           string             `json:"trace_id"`
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcpsdk.CallToolRequest, input AnalyzeInput) (*mcpsdk.CallToolResult, AnalyzeOutput, error) {
	image, err := base64.StdEncoding.DecodeString(input.ImageBase64)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, AnalyzeOutput{},
			fmt.Errorf("invalid image_base64: %w", err)
	}

	sub := model.NewSubmission(image, input.MIMEType, input.Text)
	rep, err := s.analyzer.Analyze(ctx, sub)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, AnalyzeOutput{}, err
	}

	out := AnalyzeOutput{
		Accepted: rep.Verdict.Accepted,
		Reason:   rep.Verdict.Reason,
		TraceID:  rep.TraceID,
	}
	if rep.Verdict.Accepted {
		out.Analysis = rep.Analysis
	} else {
		out.PriorityHint = rep.Triage.Priority.String()
		out.Debug = rep.Verdict.Debug
	}
	return nil, out, nil
}

func (s *Server) handleTriage(ctx context.Context, req *mcpsdk.CallToolRequest, input TriageInput) (*mcpsdk.CallToolResult, TriageOutput, error) {
	rep, err := s.analyzer.AnalyzeText(ctx, input.Text)
	if err != nil {
		return &mcpsdk.CallToolResult{IsError: true}, TriageOutput{}, err
	}

	return nil, TriageOutput{
		Priority:          rep.Triage.Priority.String(),
		Urgency:           rep.Triage.Urgency,
		VerificationScore: rep.Triage.VerificationScore,
		TopCategory:       rep.Signals.TopCategory,
		Severities:        rep.Signals.Severities,
		TraceID:           rep.TraceID,
	}, nil
}
