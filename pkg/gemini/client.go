// Package gemini provides a client for Google's Gemini AI API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash-lite"

// ErrNotConfigured is returned when neither an API key nor a GCP project is set.
var ErrNotConfigured = errors.New("gemini is not configured")

// Config configures New.
type Config struct {
	Logger            Logger
	Cache             Cache
	Observe           func(op string, took time.Duration, err error)
	APIKey            string
	Model             string
	GCPProject        string
	Location          string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client represents a Gemini API client.
type Client struct {
	models   contentGenerator
	logger   Logger
	cache    Cache
	limiter  *rate.Limiter
	observe  func(op string, took time.Duration, err error)
	model    string
	timeout  time.Duration
	attempts uint
}

// New creates a Gemini client. An API key selects the Gemini API backend;
// otherwise Vertex AI is used with Application Default Credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	var config *genai.ClientConfig
	switch {
	case cfg.APIKey != "":
		config = &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  cfg.APIKey,
		}
		cfg.Logger.Debug("using Gemini API with API key")
	case cfg.GCPProject != "":
		location := cfg.Location
		if location == "" {
			location = "us-central1"
		}
		config = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.GCPProject,
			Location: location,
		}
		cfg.Logger.Debug("using Vertex AI with Application Default Credentials", "project", cfg.GCPProject, "location", location)
	default:
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newWithGenerator(client.Models, cfg), nil
}

func newWithGenerator(models contentGenerator, cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	model := strings.TrimPrefix(cfg.Model, "models/")
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	return &Client{
		models:   models,
		logger:   cfg.Logger,
		cache:    cfg.Cache,
		observe:  cfg.Observe,
		model:    model,
		timeout:  timeout,
		attempts: 3,
		limiter:  rate.NewLimiter(rate.Limit(float64(rpm)/60.0), max(1, rpm/10)),
	}
}

// Model returns the model name in use.
func (c *Client) Model() string { return c.model }

type request struct {
	op          string
	prompt      string
	schema      *genai.Schema
	temperature float32
	cacheable   bool
}

// generate runs one structured call and decodes the JSON reply into out.
func (c *Client) generate(ctx context.Context, req request, out any) (err error) {
	start := time.Now()
	defer func() {
		if c.observe != nil {
			c.observe(req.op, time.Since(start), err)
		}
	}()

	cacheKey := fmt.Sprintf("genai:%s:%s:%s", c.model, req.op, req.prompt)
	if req.cacheable && c.cache != nil {
		if data, ok := c.cache.Get(cacheKey); ok {
			if err := json.Unmarshal(data, out); err == nil {
				c.logger.Debug("gemini cache hit", "op", req.op)
				return nil
			}
			c.logger.Debug("ignoring unreadable cached gemini response", "op", req.op)
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for gemini request budget: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: req.prompt}},
		},
	}
	temperature := req.temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  1024,
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.schema,
	}

	var resp *genai.GenerateContentResponse
	err = retry.Do(
		func() error {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			var callErr error
			resp, callErr = c.models.GenerateContent(callCtx, c.model, contents, config)
			return callErr
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(50*time.Millisecond),
		retry.RetryIf(isTransientError),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying gemini call", "op", req.op, "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("gemini %s: %w", req.op, err)
	}

	text, err := responseText(resp)
	if err != nil {
		return fmt.Errorf("gemini %s: %w", req.op, err)
	}
	c.logger.Debug("raw gemini response", "op", req.op, "response_text", text)

	if err := json.Unmarshal([]byte(text), out); err != nil {
		jsonText, extractErr := extractJSON(text)
		if extractErr != nil {
			return fmt.Errorf("failed to parse gemini %s response: %w", req.op, err)
		}
		if err := json.Unmarshal([]byte(jsonText), out); err != nil {
			return fmt.Errorf("failed to parse gemini %s response: %w", req.op, err)
		}
		text = jsonText
	}

	if req.cacheable && c.cache != nil {
		c.cache.Set(cacheKey, []byte(text))
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("empty response from Gemini API")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", errors.New("no content in Gemini response")
	}
	var b strings.Builder
	for _, p := range candidate.Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty text in Gemini response")
	}
	return b.String(), nil
}

// isTransientError determines if an error should trigger a retry.
func isTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	errStr := strings.ToLower(err.Error())
	transientIndicators := []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "resource_exhausted", "429", "500", "502", "503", "504",
	}
	for _, indicator := range transientIndicators {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

// extractJSON extracts JSON content from a response that may contain explanatory text.
func extractJSON(text string) (string, error) {
	if json.Valid([]byte(text)) {
		return text, nil
	}

	// Fenced blocks, with or without a language tag.
	for _, fence := range []string{"```json", "```"} {
		if start := strings.Index(text, fence); start != -1 {
			start += len(fence)
			if end := strings.Index(text[start:], "```"); end != -1 {
				jsonText := strings.TrimSpace(text[start : start+end])
				if json.Valid([]byte(jsonText)) {
					return jsonText, nil
				}
			}
		}
	}

	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		if start := strings.Index(text, pair[0]); start != -1 {
			if end := strings.LastIndex(text, pair[1]); end > start {
				jsonText := strings.TrimSpace(text[start : end+1])
				if json.Valid([]byte(jsonText)) {
					return jsonText, nil
				}
			}
		}
	}

	return "", errors.New("no valid JSON found in response")
}
