package oracle

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/civicaudit/civicgate/internal/config"
)

// VisionClient binds the detection, similarity, and sentiment oracles to
// the model sidecar's JSON API. One client is shared across concurrent
// requests; it holds no per-call state.
type VisionClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries uint64
}

// NewVisionClient creates a sidecar client from oracle configuration.
func NewVisionClient(cfg config.OracleConfig) *VisionClient {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &VisionClient{
		baseURL:    strings.TrimRight(cfg.VisionURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		maxRetries: uint64(retries),
	}
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Objects []string `json:"objects"`
}

// DetectObjects implements ObjectDetector.
func (c *VisionClient) DetectObjects(ctx context.Context, image []byte) ([]string, error) {
	var out detectResponse
	req := detectRequest{Image: base64.StdEncoding.EncodeToString(image)}
	if err := c.post(ctx, "/detect", req, &out); err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	return out.Objects, nil
}

type similarityRequest struct {
	Image string `json:"image"`
	Text  string `json:"text"`
}

type similarityResponse struct {
	Similarity float64 `json:"similarity"`
}

// Similarity implements SimilarityScorer.
func (c *VisionClient) Similarity(ctx context.Context, image []byte, text string) (float64, error) {
	var out similarityResponse
	req := similarityRequest{
		Image: base64.StdEncoding.EncodeToString(image),
		Text:  text,
	}
	if err := c.post(ctx, "/similarity", req, &out); err != nil {
		return 0, fmt.Errorf("similarity: %w", err)
	}
	if out.Similarity < -1 || out.Similarity > 1 {
		return 0, fmt.Errorf("similarity out of range: %v", out.Similarity)
	}
	return out.Similarity, nil
}

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Polarity float64 `json:"polarity"`
}

// Polarity implements SentimentScorer.
func (c *VisionClient) Polarity(ctx context.Context, text string) (float64, error) {
	var out sentimentResponse
	if err := c.post(ctx, "/sentiment", sentimentRequest{Text: text}, &out); err != nil {
		return 0, fmt.Errorf("sentiment: %w", err)
	}
	return out.Polarity, nil
}

// post sends one JSON request with fibonacci backoff on transient
// failures. 4xx responses are permanent; network errors and 5xx retry.
func (c *VisionClient) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(200*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("request failed: %w", err))
		}
		defer func() { _ = resp.Body.Close() }()

		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 500 {
			return retry.RetryableError(
				fmt.Errorf("sidecar HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sidecar HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}

		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}
