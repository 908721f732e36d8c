package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/menupick/menupick/internal/config"
	"github.com/menupick/menupick/internal/llm"
)

// Client implements the llm.CompletionClient interface using Google's
// Gemini API.
type Client struct {
	// logger is used for structured logging
	logger *slog.Logger

	// config contains LLM-specific configuration
	config config.LLMConfig

	// client is the Gemini API client for making requests
	client *genai.Client

	// model is the name of the Gemini model to use
	model string
}

// NewClient creates a new Gemini-backed completion client with the provided
// dependencies.
//
// Returns a properly initialized Client or an error if initialization fails.
func NewClient(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", llm.ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", llm.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", llm.ErrInvalidConfig, err)
	}

	return &Client{
		logger: logger.With("component", "gemini_client", "model", cfg.ModelName),
		config: cfg,
		client: client,
		model:  cfg.ModelName,
	}, nil
}

// Complete sends the prompt (and the image bytes, when non-nil, inlined as
// a multimodal part) to the configured model and returns the generated
// text. Transient failures are retried up to MaxRetries times with
// exponential backoff and jitter; blocked content and empty responses are
// permanent and returned immediately.
func (c *Client) Complete(ctx context.Context, prompt string, image []byte) (string, error) {
	if prompt == "" {
		return "", llm.ErrEmptyPrompt
	}

	maxRetries := c.config.MaxRetries
	if maxRetries < 0 {
		c.logger.WarnContext(ctx, "invalid max retries value, using default", "max_retries", 3)
		maxRetries = 3
	}

	baseDelaySeconds := c.config.RetryDelaySeconds
	if baseDelaySeconds < 1 {
		c.logger.WarnContext(ctx, "invalid retry delay value, using default", "base_delay_seconds", 2)
		baseDelaySeconds = 2
	}

	contents := buildContents(prompt, image)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		c.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", maxRetries+1,
			"has_image", image != nil)

		text, err := c.generate(ctx, contents)
		if err == nil {
			return text, nil
		}

		c.logger.ErrorContext(ctx, "Gemini API call failed",
			"attempt", attemptNum,
			"error", err)

		// Permanent errors are not worth retrying.
		if errors.Is(err, llm.ErrContentBlocked) || errors.Is(err, llm.ErrInvalidResponse) {
			return "", err
		}

		if attempt >= maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				llm.ErrTransientFailure, maxRetries, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitterFactor := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitterFactor * float64(time.Second))

		c.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", llm.ErrTransientFailure, ctx.Err())
		}
	}
}

// generate performs a single GenerateContent call and classifies its outcome.
func (c *Client) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		// Transport and service errors are assumed transient; the retry
		// loop decides how far to take that assumption.
		return "", fmt.Errorf("%w: %v", llm.ErrTransientFailure, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", llm.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason %q", llm.ErrContentBlocked, candidate.FinishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty text in response", llm.ErrInvalidResponse)
	}

	c.logUsage(ctx, resp.UsageMetadata)

	return text, nil
}

// buildContents assembles the single-turn user content: the prompt text,
// plus the image inlined with a sniffed MIME type when present.
func buildContents(prompt string, image []byte) []*genai.Content {
	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if image != nil {
		parts = append(parts, genai.NewPartFromBytes(image, http.DetectContentType(image)))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// logUsage records token counts and an informational cost estimate from the
// configured per-token pricing. Never enforced as a budget.
func (c *Client) logUsage(ctx context.Context, usage *genai.GenerateContentResponseUsageMetadata) {
	if usage == nil {
		return
	}

	c.logger.InfoContext(ctx, "completion usage",
		"prompt_tokens", usage.PromptTokenCount,
		"output_tokens", usage.CandidatesTokenCount,
		"total_tokens", usage.TotalTokenCount,
		"estimated_cost_usd", EstimateCost(c.config, usage.PromptTokenCount, usage.CandidatesTokenCount))
}
