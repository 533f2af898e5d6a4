package gemini

import (
	"context"

	"google.golang.org/genai"
)

// Cache stores raw JSON responses keyed by model and prompt.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte)
}

// Logger defines the logging interface needed by the Gemini client
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// contentGenerator is the slice of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
