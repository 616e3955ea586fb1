package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kokonnect/konnect-back-sub000/config"
	"github.com/kokonnect/konnect-back-sub000/model"
)

const generateContentPath = "/v1beta/models/%s:generateContent"

// maxResponseBytes bounds how much of a generation response is read.
const maxResponseBytes = 20 * 1024 * 1024

// GenerationClient is the single chokepoint for the Gemini generateContent
// API. Every call resolves a tier through the quota tracker, records usage
// on success and accumulates token counts into the session counters.
type GenerationClient struct {
	config     *config.GeminiConfig
	quota      *QuotaTracker
	httpClient *http.Client

	inputTokens  atomic.Int64
	outputTokens atomic.Int64
	totalTokens  atomic.Int64
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
}

type geminiResponse struct {
	Candidates    []geminiCandidate `json:"candidates"`
	UsageMetadata *geminiUsage      `json:"usageMetadata,omitempty"`
	Error         *geminiError      `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content struct {
		Parts []geminiPart `json:"parts"`
	} `json:"content"`
}

type geminiUsage struct {
	PromptTokenCount     int64 `json:"promptTokenCount"`
	CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	TotalTokenCount      int64 `json:"totalTokenCount"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func NewGenerationClient(cfg *config.GeminiConfig, quota *QuotaTracker) *GenerationClient {
	return &GenerationClient{
		config: cfg,
		quota:  quota,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// ModelForTier maps a tier to the configured model name.
func (c *GenerationClient) ModelForTier(tier Tier) string {
	if tier == TierCapable {
		return c.config.CapableModel
	}
	return c.config.EconomyModel
}

// ResetSession zeroes the per-run token counters. Called at the start of
// each pipeline run.
func (c *GenerationClient) ResetSession() {
	c.inputTokens.Store(0)
	c.outputTokens.Store(0)
	c.totalTokens.Store(0)
}

// Session returns a snapshot of the token counters for the current run.
func (c *GenerationClient) Session() model.TokenUsage {
	return model.TokenUsage{
		Input:  c.inputTokens.Load(),
		Output: c.outputTokens.Load(),
		Total:  c.totalTokens.Load(),
	}
}

// GenerateText issues a text-only generation call on whichever tier the
// quota tracker resolves, preferring the capable tier when asked. The
// second return value names the model the call went to (empty when no
// tier resolved), so callers can audit per call rather than reading
// shared state.
func (c *GenerationClient) GenerateText(ctx context.Context, prompt string, temperature float64, maxTokens int, preferCapable bool) (string, string, error) {
	tier, ok := c.quota.Resolve(preferCapable)
	if !ok {
		return "", "", fmt.Errorf("%w: daily quota exhausted on all tiers", ErrServiceUnavailable)
	}

	parts := []geminiPart{{Text: prompt}}
	return c.call(ctx, tier, parts, temperature, maxTokens)
}

// GenerateVision issues a text+image call. Vision calls are pinned to the
// capable tier; exhaustion means no call is made.
func (c *GenerationClient) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string, temperature float64, maxTokens int) (string, string, error) {
	tier, ok := c.quota.ResolveVision()
	if !ok {
		return "", "", fmt.Errorf("%w: capable tier quota exhausted, vision calls cannot fall back", ErrServiceUnavailable)
	}

	parts := []geminiPart{
		{Text: prompt},
		{InlineData: &geminiInlineData{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}},
	}
	return c.call(ctx, tier, parts, temperature, maxTokens)
}

func (c *GenerationClient) call(ctx context.Context, tier Tier, parts []geminiPart, temperature float64, maxTokens int) (string, string, error) {
	modelName := c.ModelForTier(tier)

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
			TopP:            c.config.TopP,
			TopK:            c.config.TopK,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", modelName, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.config.APIURL + fmt.Sprintf(generateContentPath, modelName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", modelName, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", modelName, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", modelName, fmt.Errorf("%w: failed to read response: %v", ErrServiceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", modelName, fmt.Errorf("%w: status %d: %s", ErrServiceUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", modelName, fmt.Errorf("%w: malformed response: %v", ErrServiceUnavailable, err)
	}
	if result.Error != nil {
		return "", modelName, fmt.Errorf("%w: api error %d (%s): %s", ErrServiceUnavailable, result.Error.Code, result.Error.Status, result.Error.Message)
	}

	// Any structural deviation is a service failure, never an empty success.
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", modelName, fmt.Errorf("%w: response has no candidates", ErrServiceUnavailable)
	}
	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", modelName, fmt.Errorf("%w: response has no text part", ErrServiceUnavailable)
	}

	if result.UsageMetadata != nil {
		c.inputTokens.Add(result.UsageMetadata.PromptTokenCount)
		c.outputTokens.Add(result.UsageMetadata.CandidatesTokenCount)
		c.totalTokens.Add(result.UsageMetadata.TotalTokenCount)
	}

	c.quota.Record(tier)
	return text, modelName, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
