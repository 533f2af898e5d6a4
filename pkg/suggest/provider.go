// Package suggest turns partial city names into {city, country, timezone}
// candidates: popular table first, remote lookup for the long tail.
package suggest

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/vibetime/pkg/gemini"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

// MaxResults caps every lookup.
const MaxResults = 5

// localEnough is how many popular-table hits skip the remote lookup.
const localEnough = 3

// Suggestion is a validated candidate.
type Suggestion struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

// Source labels where a result set came from, for metrics.
type Source string

const (
	SourceCache  Source = "cache"
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
	SourceFailed Source = "fallback"
)

// Remote is the long-tail lookup, typically Gemini.
type Remote interface {
	CitySuggestions(ctx context.Context, partial string) ([]gemini.CitySuggestion, error)
}

// Provider answers lookups.
type Provider struct {
	remote  Remote
	cache   *otter.Cache[string, []Suggestion]
	logger  *slog.Logger
	observe func(Source)
	table   []Suggestion
}

// Option configures a Provider.
type Option func(*Provider)

// WithRemote sets the long-tail lookup. Without one only the table is used.
func WithRemote(r Remote) Option {
	return func(p *Provider) { p.remote = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// WithObserver is called with the source of every answered lookup.
func WithObserver(fn func(Source)) Option {
	return func(p *Provider) { p.observe = fn }
}

// WithTable replaces the popular table.
func WithTable(table []Suggestion) Option {
	return func(p *Provider) { p.table = table }
}

// NewProvider builds a Provider. Query results are cached for the life of the
// process; timezone mappings do not change within a session.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		logger: slog.Default(),
		table:  Popular,
		cache: otter.Must(&otter.Options[string, []Suggestion]{
			MaximumSize:     10_000,
			InitialCapacity: 256,
		}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) record(s Source) {
	if p.observe != nil {
		p.observe(s)
	}
}

// Local matches query against the popular table by case-insensitive substring
// on city or country.
func (p *Provider) Local(query string) []Suggestion {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Suggestion
	for _, s := range p.table {
		if strings.Contains(strings.ToLower(s.City), q) || strings.Contains(strings.ToLower(s.Country), q) {
			out = append(out, s)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}

// Lookup returns up to MaxResults candidates. It never fails: remote errors fall
// back to the local matches.
func (p *Provider) Lookup(ctx context.Context, partial string) []Suggestion {
	query := strings.ToLower(strings.TrimSpace(partial))
	if query == "" {
		return nil
	}
	if cached, ok := p.cache.GetIfPresent(query); ok {
		p.record(SourceCache)
		return cached
	}

	local := p.Local(query)
	if len(local) >= localEnough || p.remote == nil {
		p.record(SourceLocal)
		return local
	}

	remote, err := p.remote.CitySuggestions(ctx, strings.TrimSpace(partial))
	if err != nil {
		p.logger.Warn("remote city lookup failed, using local matches", "query", query, "error", err)
		p.record(SourceFailed)
		return local
	}

	merged := merge(local, p.validate(remote))
	p.cache.Set(query, merged)
	p.record(SourceRemote)
	return merged
}

// validate drops remote records whose timezone is not a real IANA zone.
func (p *Provider) validate(in []gemini.CitySuggestion) []Suggestion {
	out := make([]Suggestion, 0, len(in))
	for _, r := range in {
		city := strings.TrimSpace(r.City)
		zone := strings.TrimSpace(r.Timezone)
		if city == "" || !tzconvert.IsValidZone(zone) {
			p.logger.Debug("dropping invalid suggestion", "city", r.City, "timezone", r.Timezone)
			continue
		}
		out = append(out, Suggestion{City: city, Country: strings.TrimSpace(r.Country), Timezone: zone})
	}
	return out
}

// merge appends remote results not already present (same timezone and city),
// capped at MaxResults.
func merge(local, remote []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, MaxResults)
	out = append(out, local...)
	for _, r := range remote {
		dup := false
		for _, c := range out {
			if c.Timezone == r.Timezone && strings.EqualFold(c.City, r.City) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, r)
		}
	}
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}
