package judge

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const alignmentPrompt = `You are a civic-report gatekeeper. You receive a photo and a citizen's description of a public-infrastructure problem. Decide whether the photo and the description describe the SAME civic issue.

Reject contradictions. Examples of mismatches you MUST reject:
- A photo of an animal (cat, dog, cow) paired with text about fire or smoke
- A photo of food or an indoor room paired with text about potholes or flooding
- A selfie or portrait paired with any infrastructure complaint
- A scenic landscape paired with text about garbage dumps or broken wires

Accept only when the photo plausibly shows the problem the text describes.

Description: %q

Return ONLY valid JSON, no markdown fences, no commentary:
{"is_match": true|false, "reason": "<one short sentence>"}`

// GeminiJudge binds the alignment oracle to the Gemini API.
type GeminiJudge struct {
	client *genai.Client
	model  string
}

// NewGeminiJudge creates a judge using the given API key and model.
func NewGeminiJudge(ctx context.Context, apiKey, model string) (*GeminiJudge, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiJudge{client: client, model: model}, nil
}

// JudgeAlignment implements Judge. The caller bounds ctx with the
// configured timeout.
func (g *GeminiJudge) JudgeAlignment(ctx context.Context, image []byte, mimeType, description string) (Result, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(image, mimeType),
		genai.NewPartFromText(fmt.Sprintf(alignmentPrompt, description)),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return Result{}, fmt.Errorf("gemini alignment call: %w", err)
	}

	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return Result{}, fmt.Errorf("empty gemini response")
	}

	return ParseResult(raw)
}
