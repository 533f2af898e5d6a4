package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testClient(srv *httptest.Server) *Client {
	c := NewClient("test-key", srv.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.baseURL = srv.URL
	return c
}

func TestGeocodeAndCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing key in %s", r.URL)
		}
		if got := r.URL.Query().Get("address"); got != "Tokyo, Japan" {
			t.Errorf("address = %q", got)
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"formatted_address":"Tokyo, Japan","geometry":{"location":{"lat":35.68,"lng":139.69}}}]}`)
	}))
	defer srv.Close()

	c := testClient(srv)
	for range 2 {
		ll, err := c.Geocode(context.Background(), "Tokyo, Japan")
		if err != nil {
			t.Fatalf("Geocode() error = %v", err)
		}
		if ll.Latitude != 35.68 || ll.Longitude != 139.69 {
			t.Errorf("Geocode() = %+v", ll)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1", n)
	}
}

func TestGeocodeRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"status":"OK","results":[{"geometry":{"location":{"lat":51.5,"lng":-0.12}}}]}`)
	}))
	defer srv.Close()

	if _, err := testClient(srv).Geocode(context.Background(), "London"); err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}

func TestGeocodeZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"status":"ZERO_RESULTS","results":[]}`)
	}))
	defer srv.Close()

	if _, err := testClient(srv).Geocode(context.Background(), "Xyzzy"); err == nil {
		t.Error("Geocode() should fail on ZERO_RESULTS")
	}
}

func TestGeocodeNoKey(t *testing.T) {
	c := NewClient("", nil, nil)
	if c.Enabled() {
		t.Error("Enabled() with empty key")
	}
	if _, err := c.Coords(context.Background(), "Paris"); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Coords() error = %v", err)
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		ll    LatLng
		wantX float64
		wantY float64
	}{
		{LatLng{0, 0}, 50, 50},
		{LatLng{90, -180}, 0, 0},
		{LatLng{-90, 180}, 100, 100},
		{LatLng{45, 90}, 75, 25},
		{LatLng{120, 400}, 100, 0},
	}
	for _, tt := range tests {
		got := Project(tt.ll)
		if math.Abs(got.X-tt.wantX) > 1e-9 || math.Abs(got.Y-tt.wantY) > 1e-9 {
			t.Errorf("Project(%+v) = %+v, want {%v %v}", tt.ll, got, tt.wantX, tt.wantY)
		}
	}
}
