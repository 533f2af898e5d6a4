// Package fortune serves fortune-cookie messages with a fixed fallback.
package fortune

import (
	"context"
	"log/slog"
	"slices"

	"github.com/codeGROOVE-dev/vibetime/pkg/gemini"
)

// Fortune is one message and its lucky numbers.
type Fortune struct {
	Text         string `json:"fortune"`
	LuckyNumbers []int  `json:"lucky_numbers"`
	Fallback     bool   `json:"fallback,omitempty"`
}

// Fallback is served whenever generation fails.
func Fallback() Fortune {
	return Fortune{
		Text:         "The clock is ticking in your favor.",
		LuckyNumbers: []int{7, 12, 24, 60},
		Fallback:     true,
	}
}

// Generator produces fortunes, typically *gemini.Client.
type Generator interface {
	Fortune(ctx context.Context) (gemini.Fortune, error)
}

// Oracle wraps a Generator and never fails.
type Oracle struct {
	gen     Generator
	logger  *slog.Logger
	observe func(fallback bool)
}

// NewOracle returns an Oracle. gen may be nil, in which case every call
// returns the fallback.
func NewOracle(gen Generator, logger *slog.Logger, observe func(fallback bool)) *Oracle {
	if logger == nil {
		logger = slog.Default()
	}
	return &Oracle{gen: gen, logger: logger, observe: observe}
}

// Next returns a fresh fortune or the fallback.
func (o *Oracle) Next(ctx context.Context) Fortune {
	f := o.next(ctx)
	if o.observe != nil {
		o.observe(f.Fallback)
	}
	return f
}

func (o *Oracle) next(ctx context.Context) Fortune {
	if o.gen == nil {
		return Fallback()
	}
	g, err := o.gen.Fortune(ctx)
	if err != nil {
		o.logger.Warn("fortune generation failed, using fallback", "error", err)
		return Fallback()
	}
	if g.Text == "" {
		o.logger.Warn("fortune generation returned empty text, using fallback")
		return Fallback()
	}
	return Fortune{Text: g.Text, LuckyNumbers: slices.Clone(g.LuckyNumbers)}
}
