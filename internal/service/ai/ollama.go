package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/zhouzirui/bloomspace/backend/internal/config"
)

const maxResponseBytes = 1 << 20

// OllamaClient calls a local Ollama server's /api/generate endpoint in raw, non-streaming mode.
type OllamaClient struct {
	baseURL    string
	model      string
	options    ollamaOptions
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

type ollamaOptions struct {
	Temperature float64  `json:"temperature"`
	NumCtx      int      `json:"num_ctx"`
	NumPredict  int      `json:"num_predict"`
	Stop        []string `json:"stop"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Raw     bool          `json:"raw"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaClient creates a client bounded by cfg.Timeout.
func NewOllamaClient(cfg config.GenerationConfig, logger *zap.Logger) *OllamaClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OllamaClient{
		baseURL: strings.TrimSuffix(cfg.OllamaURL, "/"),
		model:   cfg.OllamaModel,
		options: ollamaOptions{
			Temperature: cfg.Temperature,
			NumCtx:      cfg.NumCtx,
			NumPredict:  cfg.MaxTokens,
			Stop:        StopSequences,
		},
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("ollama"),
	}
}

// Generate returns the model text, or ok=false on any transport or decode failure.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, bool) {
	text, err := c.generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("generation unavailable", zap.Error(err))
		return "", false
	}
	return text, true
}

func (c *OllamaClient) generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := sonic.Marshal(ollamaRequest{
		Model:   c.model,
		Prompt:  prompt,
		Stream:  false,
		Raw:     true,
		Options: c.options,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out ollamaResponse
	if err := sonic.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return text, nil
}
