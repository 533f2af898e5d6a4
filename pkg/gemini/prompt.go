package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// CitySuggestion is one autocomplete candidate.
type CitySuggestion struct {
	City     string `json:"city"`
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

// Fortune is a generated fortune-cookie message.
type Fortune struct {
	Text         string `json:"fortune"`
	LuckyNumbers []int  `json:"lucky_numbers"`
}

// TimeQuery is the structured reading of a natural-language time request.
type TimeQuery struct {
	Time        string `json:"time"`
	City        string `json:"city"`
	Timezone    string `json:"timezone,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

const suggestionsPrompt = `Provide 5 popular city suggestions matching: %q.
Return a JSON array of objects with city name, country, and IANA timezone (for example "Asia/Tokyo").`

const fortunePrompt = `Generate a short, punchy, and modern 'Fortune Cookie' style piece of wisdom.
It should be mysterious, encouraging, and related to time, travel, or global synchronicity. Maximum 20 words.
Also give four lucky numbers between 1 and 99.`

const resolvePrompt = `Find the official IANA timezone for: %q. Return city, timezone, and country.`

const timeQueryPrompt = `Parse this natural language time request: %q.
The current time is %s. Return the target time as an ISO 8601 string with offset, the city mentioned,
its IANA timezone if identifiable, and a one-sentence explanation.`

func cityObjectSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"city":     {Type: genai.TypeString, Description: "City name"},
			"country":  {Type: genai.TypeString, Description: "Country name"},
			"timezone": {Type: genai.TypeString, Description: "IANA timezone identifier, e.g. 'Europe/London'"},
		},
		PropertyOrdering: []string{"city", "country", "timezone"},
		Required:         []string{"city", "timezone", "country"},
	}
}

// CitySuggestions returns up to five candidates for a partial city name.
// Results are cached per query.
func (c *Client) CitySuggestions(ctx context.Context, partial string) ([]CitySuggestion, error) {
	var out []CitySuggestion
	err := c.generate(ctx, request{
		op:          "suggest",
		prompt:      fmt.Sprintf(suggestionsPrompt, partial),
		schema:      &genai.Schema{Type: genai.TypeArray, Items: cityObjectSchema()},
		temperature: 0.1,
		cacheable:   true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return cleanSuggestions(out), nil
}

// ResolveCity maps a free-form place to its city, country and IANA timezone.
func (c *Client) ResolveCity(ctx context.Context, place string) (CitySuggestion, error) {
	var out CitySuggestion
	err := c.generate(ctx, request{
		op:          "resolve",
		prompt:      fmt.Sprintf(resolvePrompt, place),
		schema:      cityObjectSchema(),
		temperature: 0.1,
		cacheable:   true,
	}, &out)
	if err != nil {
		return CitySuggestion{}, err
	}
	cleaned := cleanSuggestions([]CitySuggestion{out})
	if len(cleaned) == 0 {
		return CitySuggestion{}, fmt.Errorf("gemini resolve: no timezone for %q", place)
	}
	return cleaned[0], nil
}

// Fortune generates a fortune. It is never cached.
func (c *Client) Fortune(ctx context.Context) (Fortune, error) {
	var out Fortune
	err := c.generate(ctx, request{
		op:     "fortune",
		prompt: fortunePrompt,
		schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"fortune":       {Type: genai.TypeString},
				"lucky_numbers": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeInteger}},
			},
			PropertyOrdering: []string{"fortune", "lucky_numbers"},
			Required:         []string{"fortune", "lucky_numbers"},
		},
		temperature: 0.9,
	}, &out)
	if err != nil {
		return Fortune{}, err
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return Fortune{}, fmt.Errorf("gemini fortune: empty text")
	}
	return out, nil
}

// ParseTimeQuery reads requests like "3pm in Tokyo next Friday" relative to now.
func (c *Client) ParseTimeQuery(ctx context.Context, query string, now time.Time) (TimeQuery, error) {
	var out TimeQuery
	err := c.generate(ctx, request{
		op:     "ask",
		prompt: fmt.Sprintf(timeQueryPrompt, query, now.Format(time.RFC3339)),
		schema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"time":        {Type: genai.TypeString, Description: "ISO 8601 formatted datetime string"},
				"city":        {Type: genai.TypeString, Description: "Target city name"},
				"timezone":    {Type: genai.TypeString, Description: "IANA Timezone ID if identifiable"},
				"explanation": {Type: genai.TypeString},
			},
			PropertyOrdering: []string{"time", "city", "timezone", "explanation"},
			Required:         []string{"time", "city"},
		},
		temperature: 0.1,
	}, &out)
	if err != nil {
		return TimeQuery{}, err
	}
	return out, nil
}

// Instant parses the Time field.
func (q TimeQuery) Instant() (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, strings.TrimSpace(q.Time)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", q.Time)
}

// cleanSuggestions trims fields and drops entries without a city or timezone.
func cleanSuggestions(in []CitySuggestion) []CitySuggestion {
	out := make([]CitySuggestion, 0, len(in))
	for _, s := range in {
		s.City = strings.TrimSpace(strings.ReplaceAll(s.City, "\n", " "))
		s.Country = strings.TrimSpace(strings.ReplaceAll(s.Country, "\n", " "))
		s.Timezone = strings.TrimSpace(s.Timezone)
		if s.City == "" || s.Timezone == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
