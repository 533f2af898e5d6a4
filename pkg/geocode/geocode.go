// Package geocode places cities on the world map via the Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/maypok86/otter/v2"

	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
)

// ErrNoAPIKey is returned when the client has no Google Maps key.
var ErrNoAPIKey = errors.New("google maps API key not configured")

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// LatLng is a geographic position.
type LatLng struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// HTTPClient interface for making HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client handles Google Maps API operations.
type Client struct {
	httpClient HTTPClient
	logger     *slog.Logger
	cache      *otter.Cache[string, LatLng]
	apiKey     string
	baseURL    string
	attempts   uint
}

// NewClient creates a new Google Maps API client.
func NewClient(apiKey string, httpClient HTTPClient, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
		baseURL:    defaultBaseURL,
		attempts:   3,
		cache: otter.Must(&otter.Options[string, LatLng]{
			MaximumSize:      1_000,
			ExpiryCalculator: otter.ExpiryWriting[string, LatLng](24 * time.Hour),
		}),
	}
}

// Enabled reports whether a key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Coords geocodes place and projects it onto the 0-100 map grid.
func (c *Client) Coords(ctx context.Context, place string) (*locations.Coords, error) {
	ll, err := c.Geocode(ctx, place)
	if err != nil {
		return nil, err
	}
	coords := Project(ll)
	return &coords, nil
}

// Project maps a position onto an equirectangular 0-100 grid, origin top-left.
func Project(ll LatLng) locations.Coords {
	clamp := func(v float64) float64 { return max(0, min(100, v)) }
	return locations.Coords{
		X: clamp((ll.Longitude + 180) / 360 * 100),
		Y: clamp((90 - ll.Latitude) / 180 * 100),
	}
}

// Geocode converts a location string to coordinates using Google Geocoding API.
func (c *Client) Geocode(ctx context.Context, place string) (LatLng, error) {
	if c.apiKey == "" {
		return LatLng{}, ErrNoAPIKey
	}
	key := strings.ToLower(strings.TrimSpace(place))
	if ll, ok := c.cache.GetIfPresent(key); ok {
		return ll, nil
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return LatLng{}, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("address", place)
	q.Set("key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return LatLng{}, err
	}

	body, err := c.doWithRetry(ctx, req)
	if err != nil {
		return LatLng{}, err
	}

	var result struct {
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return LatLng{}, fmt.Errorf("failed to parse geocoding response: %w", err)
	}
	if result.Status != "OK" || len(result.Results) == 0 {
		c.logger.Debug("geocoding failed", "place", place, "status", result.Status, "results_count", len(result.Results))
		return LatLng{}, fmt.Errorf("geocoding failed for %s: %s", place, result.Status)
	}

	first := result.Results[0]
	ll := LatLng{Latitude: first.Geometry.Location.Lat, Longitude: first.Geometry.Location.Lng}
	c.logger.Debug("geocoded", "place", place, "address", first.FormattedAddress, "lat", ll.Latitude, "lng", ll.Longitude)
	c.cache.Set(key, ll)
	return ll, nil
}

// doWithRetry performs the request with exponential backoff and jitter,
// retrying network errors and 5xx responses.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) ([]byte, error) {
	var body []byte
	err := retry.Do(
		func() error {
			resp, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return err
			}
			defer func() {
				if err := resp.Body.Close(); err != nil {
					c.logger.Debug("failed to close response body", "error", err)
				}
			}()
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("server error from %s: %d", req.URL.Host, resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("geocoding HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
			}
			body = data
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(50*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying geocoding request", "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}
