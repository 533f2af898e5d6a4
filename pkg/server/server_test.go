package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codeGROOVE-dev/vibetime/pkg/gemini"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/metrics"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
	"github.com/codeGROOVE-dev/vibetime/pkg/store"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
	"github.com/codeGROOVE-dev/vibetime/pkg/ticker"
)

var t0 = time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)

type staticLookup []suggest.Suggestion

func (s staticLookup) Lookup(_ context.Context, q string) []suggest.Suggestion {
	if q == "" {
		return nil
	}
	return s
}

type stubGeocoder struct{ calls int }

func (g *stubGeocoder) Coords(context.Context, string) (*locations.Coords, error) {
	g.calls++
	return &locations.Coords{X: 90, Y: 30}, nil
}

type stubAsker struct {
	query gemini.TimeQuery
	err   error
}

func (a stubAsker) ParseTimeQuery(context.Context, string, time.Time) (gemini.TimeQuery, error) {
	return a.query, a.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, mutate func(*Config)) (*httptest.Server, *session.Session) {
	t.Helper()
	logger := quietLogger()
	st, err := store.NewFileStore("", logger)
	if err != nil {
		t.Fatal(err)
	}
	sess, err := session.Open(context.Background(), st,
		session.WithLogger(logger),
		session.WithClock(func() time.Time { return t0 }),
		session.WithBootstrap("Europe/London", locations.DefaultCities),
	)
	if err != nil {
		t.Fatal(err)
	}
	cfg := Config{
		Session:           sess,
		Provider:          staticLookup{{City: "Sydney", Country: "Australia", Timezone: "Australia/Sydney"}},
		Logger:            logger,
		RequestsPerMinute: 6000,
		Burst:             1000,
		SearchDebounce:    time.Millisecond,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	ts := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(ts.Close)
	return ts, sess
}

func do(t *testing.T, ts *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck // test
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decoding %s: %v", data, err)
	}
	return v
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, body := do(t, ts, http.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, body)
	}
	for header, want := range map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
	} {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}

	resp, _ = do(t, ts, http.MethodGet, "/api/v1/theme", nil)
	if !strings.Contains(resp.Header.Get("Cache-Control"), "no-store") {
		t.Errorf("api Cache-Control = %q", resp.Header.Get("Cache-Control"))
	}
}

func TestPanicRecovery(t *testing.T) {
	s := New(Config{Logger: quietLogger()})
	h := s.wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/clock", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if body := decode[errorBody](t, rec.Body.Bytes()); body.Code != "internal" {
		t.Errorf("body = %+v", body)
	}
}

func TestClockOffsetPreviewDoesNotMoveSharedOffset(t *testing.T) {
	ts, sess := newTestServer(t, nil)
	resp, body := do(t, ts, http.MethodGet, "/api/v1/clock?offset=20000", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	got := decode[clockResponse](t, body)
	if got.OffsetMinutes != 10080 {
		t.Errorf("offset = %d, want clamp at 10080", got.OffsetMinutes)
	}
	if !got.Selected.Equal(t0.Add(7 * 24 * time.Hour)) {
		t.Errorf("selected = %v", got.Selected)
	}
	if len(got.Clocks) != 3 || !got.Clocks[0].IsBase || got.Clocks[0].Location.Name != "London" {
		t.Errorf("clocks = %+v", got.Clocks)
	}
	if sess.Offset().Minutes() != 0 {
		t.Errorf("shared offset moved to %d", sess.Offset().Minutes())
	}

	resp, _ = do(t, ts, http.MethodGet, "/api/v1/clock?offset=soon", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad offset status = %d", resp.StatusCode)
	}
}

func TestLocations(t *testing.T) {
	geo := &stubGeocoder{}
	ts, sess := newTestServer(t, func(c *Config) { c.Geocoder = geo })

	resp, body := do(t, ts, http.MethodPost, "/api/v1/locations", map[string]string{"query": "syd"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add by query = %d: %s", resp.StatusCode, body)
	}
	added := decode[locations.Location](t, body)
	if added.Name != "Sydney" || added.Timezone != "Australia/Sydney" || added.ID == "" {
		t.Errorf("added = %+v", added)
	}
	if added.Coords == nil || geo.calls != 1 {
		t.Errorf("coords = %v after %d geocoder calls", added.Coords, geo.calls)
	}

	resp, body = do(t, ts, http.MethodPost, "/api/v1/locations", map[string]string{"name": "Tokyo", "timezone": "Asia/Tokyo"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate = %d: %s", resp.StatusCode, body)
	}
	if e := decode[errorBody](t, body); e.Message != "Tokyo is already listed." {
		t.Errorf("duplicate message = %q", e.Message)
	}
	_, body = do(t, ts, http.MethodGet, "/api/v1/clock", nil)
	if c := decode[clockResponse](t, body); c.Notice == nil || c.Notice.Text != "Tokyo is already listed." {
		t.Errorf("clock notice = %+v", c.Notice)
	}

	resp, _ = do(t, ts, http.MethodPost, "/api/v1/locations", map[string]string{"name": "Nowhere", "timezone": "Mars/Olympus"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown zone status = %d", resp.StatusCode)
	}
	resp, _ = do(t, ts, http.MethodPost, "/api/v1/locations", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty add status = %d", resp.StatusCode)
	}

	base, _ := sess.Base()
	resp, _ = do(t, ts, http.MethodDelete, "/api/v1/locations/"+base.ID, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("removing base status = %d", resp.StatusCode)
	}
	resp, _ = do(t, ts, http.MethodDelete, "/api/v1/locations/"+added.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("remove status = %d", resp.StatusCode)
	}
	resp, _ = do(t, ts, http.MethodDelete, "/api/v1/locations/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("remove missing status = %d", resp.StatusCode)
	}

	// Replacing with a list that omits the base keeps it first.
	resp, body = do(t, ts, http.MethodPut, "/api/v1/locations", []locations.Location{{Name: "Paris", Timezone: "Europe/Paris"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace = %d: %s", resp.StatusCode, body)
	}
	list := decode[[]locations.Location](t, body)
	if len(list) != 2 || list[0].Timezone != "Europe/London" || list[1].Name != "Paris" {
		t.Errorf("replaced list = %+v", list)
	}
}

func TestOffsetEndpoints(t *testing.T) {
	ts, sess := newTestServer(t, nil)
	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"shift", http.MethodPut, "/api/v1/offset", map[string]int{"shift": 90}, 90},
		{"slider", http.MethodPut, "/api/v1/offset", map[string]int{"minutes": 45}, 45},
		{"absolute clamps", http.MethodPut, "/api/v1/offset", map[string]int{"minutes": -99999}, -10080},
		{"selected", http.MethodPut, "/api/v1/offset", map[string]time.Time{"selected": t0.Add(3 * time.Hour)}, 180},
		{"reset", http.MethodPost, "/api/v1/offset/reset", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, ts, tt.method, tt.path, tt.body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d: %s", resp.StatusCode, body)
			}
			if got := decode[offsetResponse](t, body); got.Minutes != tt.want {
				t.Errorf("minutes = %d, want %d", got.Minutes, tt.want)
			}
			if sess.Offset().Minutes() != tt.want {
				t.Errorf("session offset = %d, want %d", sess.Offset().Minutes(), tt.want)
			}
		})
	}

	resp, _ := do(t, ts, http.MethodPut, "/api/v1/offset", map[string]int{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty offset status = %d", resp.StatusCode)
	}
}

func TestPlanner(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, body := do(t, ts, http.MethodGet, "/api/v1/planner?date=2024-06-05", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	var grid struct {
		BaseZone string `json:"base_zone"`
		Rows     []struct {
			Cells []json.RawMessage `json:"cells"`
		} `json:"rows"`
		Day time.Time `json:"day"`
	}
	if err := json.Unmarshal(body, &grid); err != nil {
		t.Fatal(err)
	}
	if grid.BaseZone != "Europe/London" || len(grid.Rows) != 3 || len(grid.Rows[0].Cells) != 24 {
		t.Errorf("grid = %s rows %d", grid.BaseZone, len(grid.Rows))
	}
	if got := grid.Day.UTC(); !got.Equal(time.Date(2024, 6, 4, 23, 0, 0, 0, time.UTC)) {
		t.Errorf("day = %v, want London midnight of June 5", got)
	}

	resp, _ = do(t, ts, http.MethodGet, "/api/v1/planner?date=June", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad date status = %d", resp.StatusCode)
	}
}

func TestSuggestAndFortune(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	_, body := do(t, ts, http.MethodGet, "/api/v1/suggest?q=syd", nil)
	if got := decode[suggestResponse](t, body); len(got.Suggestions) != 1 || got.Suggestions[0].City != "Sydney" {
		t.Errorf("suggest = %+v", got)
	}
	_, body = do(t, ts, http.MethodGet, "/api/v1/suggest?q=", nil)
	if !strings.Contains(string(body), `"suggestions":[]`) {
		t.Errorf("empty suggest body = %s", body)
	}

	_, body = do(t, ts, http.MethodPost, "/api/v1/fortune", nil)
	var f struct {
		Fortune      string `json:"fortune"`
		LuckyNumbers []int  `json:"lucky_numbers"`
	}
	if err := json.Unmarshal(body, &f); err != nil {
		t.Fatal(err)
	}
	if f.Fortune != "The clock is ticking in your favor." || len(f.LuckyNumbers) != 4 {
		t.Errorf("fortune = %+v", f)
	}
}

func TestAsk(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	resp, _ := do(t, ts, http.MethodPost, "/api/v1/ask", askRequest{Query: "noon in Tokyo"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("unconfigured ask status = %d", resp.StatusCode)
	}

	ts, _ = newTestServer(t, func(c *Config) {
		c.Asker = stubAsker{query: gemini.TimeQuery{Time: "2024-06-04T12:00:00+09:00", City: "Tokyo", Timezone: "Asia/Tokyo"}}
	})
	resp, body := do(t, ts, http.MethodPost, "/api/v1/ask", askRequest{Query: "noon in Tokyo tomorrow"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ask status = %d: %s", resp.StatusCode, body)
	}
	got := decode[askResponse](t, body)
	if !got.Instant.Equal(time.Date(2024, 6, 4, 3, 0, 0, 0, time.UTC)) || len(got.Clocks) != 3 {
		t.Errorf("ask = %+v", got)
	}

	ts, _ = newTestServer(t, func(c *Config) { c.Asker = stubAsker{err: errors.New("quota")} })
	resp, _ = do(t, ts, http.MethodPost, "/api/v1/ask", askRequest{Query: "noon in Tokyo"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("failed ask status = %d", resp.StatusCode)
	}
}

func TestCountdowns(t *testing.T) {
	ts, sess := newTestServer(t, nil)
	target := t0.Add(49*time.Hour + 30*time.Minute)
	resp, body := do(t, ts, http.MethodPost, "/api/v1/countdowns", map[string]any{"title": "", "targetDate": target})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add = %d: %s", resp.StatusCode, body)
	}
	created := decode[countdownView](t, body)
	if created.Title != "Precision Tracker" {
		t.Errorf("title = %q, want default", created.Title)
	}
	if r := created.Remaining; r.Days != 2 || r.Hours != 1 || r.Minutes != 30 || r.Expired {
		t.Errorf("remaining = %+v", r)
	}

	resp, _ = do(t, ts, http.MethodPost, "/api/v1/countdowns", map[string]string{"title": "No target"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing target status = %d", resp.StatusCode)
	}

	resp, body = do(t, ts, http.MethodPut, "/api/v1/countdowns/"+created.ID, map[string]string{"title": "Launch"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update = %d: %s", resp.StatusCode, body)
	}
	if got := sess.Countdowns().All(); len(got) != 1 || got[0].Title != "Launch" || !got[0].Target.Equal(target) {
		t.Errorf("after update = %+v", got)
	}

	resp, _ = do(t, ts, http.MethodDelete, "/api/v1/countdowns/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = do(t, ts, http.MethodPut, "/api/v1/countdowns/"+created.ID, map[string]string{"title": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("update missing status = %d", resp.StatusCode)
	}
}

func TestTheme(t *testing.T) {
	ts, sess := newTestServer(t, nil)
	resp, _ := do(t, ts, http.MethodPut, "/api/v1/theme", map[string]string{"theme": "sepia"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown theme status = %d", resp.StatusCode)
	}
	resp, body := do(t, ts, http.MethodPut, "/api/v1/theme", map[string]string{"theme": "cyber"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("set theme = %d: %s", resp.StatusCode, body)
	}
	if sess.Theme() != session.ThemeCyber {
		t.Errorf("theme = %q", sess.Theme())
	}
	if got := decode[themeResponse](t, body); len(got.Themes) != 4 {
		t.Errorf("themes = %v", got.Themes)
	}
}

func TestCalc(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	tests := []struct {
		op     string
		body   calcRequest
		status int
		want   string
	}{
		{"diff", calcRequest{From: "2024-06-03", To: "2024-06-07"}, http.StatusOK, `"business_days":5`},
		{"diff", calcRequest{From: "2020-03-15", To: "2024-08-20"}, http.StatusOK, `"summary":"4 years, 5 months, 9 days"`},
		{"business", calcRequest{From: "2024-06-03", To: "2024-06-03"}, http.StatusOK, `"business_days":0`},
		{"add", calcRequest{Date: "2024-02-28", Days: 1}, http.StatusOK, `"date":"2024-02-29"`},
		{"info", calcRequest{Date: "2024-06-03"}, http.StatusOK, `"iso_week":23`},
		{"info", calcRequest{Date: "03/06/2024"}, http.StatusBadRequest, `"bad_date"`},
		{"modulo", calcRequest{}, http.StatusNotFound, `"unknown_op"`},
	}
	for _, tt := range tests {
		t.Run(tt.op+" "+tt.want, func(t *testing.T) {
			resp, body := do(t, ts, http.MethodPost, "/api/v1/calc/"+tt.op, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d: %s", resp.StatusCode, tt.status, body)
			}
			if !strings.Contains(string(body), tt.want) {
				t.Errorf("body %s missing %s", body, tt.want)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	ts, _ := newTestServer(t, func(c *Config) {
		c.RequestsPerMinute = 60
		c.Burst = 2
	})
	for i := range 2 {
		if resp, _ := do(t, ts, http.MethodGet, "/api/v1/theme", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	resp, body := do(t, ts, http.MethodGet, "/api/v1/theme", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}
	if e := decode[errorBody](t, body); e.Code != "rate_limited" {
		t.Errorf("body = %+v", e)
	}
	if resp, _ := do(t, ts, http.MethodGet, "/healthz", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("healthz should not be rate limited, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	ts, _ := newTestServer(t, func(c *Config) {
		c.Metrics = metrics.NewCollector(reg)
		c.Gatherer = reg
	})
	do(t, ts, http.MethodGet, "/api/v1/theme", nil)
	do(t, ts, http.MethodPost, "/api/v1/calc/nope", calcRequest{})

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "vibetime_http_status_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				counts[l.GetValue()] = m.GetCounter().GetValue()
			}
		}
	}
	if counts["200"] != 1 || counts["404"] != 1 {
		t.Errorf("status counts = %v", counts)
	}

	_, body := do(t, ts, http.MethodGet, "/metrics", nil)
	if !strings.Contains(string(body), "vibetime_http_status_total") {
		t.Error("/metrics does not expose the status counter")
	}
}

// dialWS connects to /ws and returns a reader that skips to the next message of
// the wanted type.
func dialWS(t *testing.T, ts *httptest.Server) (*websocket.Conn, func(string) json.RawMessage) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		resp.Body.Close() //nolint:errcheck,gosec // test
		conn.Close()      //nolint:errcheck,gosec // test
	})
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func(want string) json.RawMessage {
		t.Helper()
		for {
			var msg struct {
				Type    string          `json:"type"`
				Payload json.RawMessage `json:"payload"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("waiting for %s: %v", want, err)
			}
			if msg.Type == want {
				return msg.Payload
			}
		}
	}
	return conn, read
}

func TestWebSocket(t *testing.T) {
	ticks := ticker.New(time.Hour, ticker.WithLogger(quietLogger()))
	ts, sess := newTestServer(t, func(c *Config) { c.Ticks = ticks })

	conn, read := dialWS(t, ts)

	first := decode[clockResponse](t, read("tick"))
	if len(first.Clocks) != 3 {
		t.Errorf("initial tick clocks = %d", len(first.Clocks))
	}

	if err := conn.WriteJSON(map[string]any{"type": "search", "payload": map[string]string{"query": "syd"}}); err != nil {
		t.Fatal(err)
	}
	found := decode[wsSuggestionsPayload](t, read("suggestions"))
	if found.Query != "syd" || len(found.Suggestions) != 1 {
		t.Errorf("suggestions = %+v", found)
	}

	if err := conn.WriteJSON(map[string]any{"type": "offset", "payload": map[string]int{"shift": 60}}); err != nil {
		t.Fatal(err)
	}
	if got := decode[offsetResponse](t, read("offset")); got.Minutes != 60 {
		t.Errorf("offset = %d", got.Minutes)
	}

	later := t0.Add(time.Minute)
	ticks.Broadcast(later)
	tick := decode[clockResponse](t, read("tick"))
	if !tick.Now.Equal(later) || tick.OffsetMinutes != 60 {
		t.Errorf("tick = now %v offset %d", tick.Now, tick.OffsetMinutes)
	}
	if !sess.Selected().Equal(later.Add(time.Hour)) {
		t.Errorf("session selected = %v", sess.Selected())
	}

	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatal(err)
	}
	read("pong")
	if err := conn.WriteJSON(map[string]string{"type": "dance"}); err != nil {
		t.Fatal(err)
	}
	if e := decode[wsErrorPayload](t, read("error")); !strings.Contains(e.Error, "dance") {
		t.Errorf("error = %q", e.Error)
	}
}

func TestWebSocketDrag(t *testing.T) {
	ticks := ticker.New(time.Hour, ticker.WithLogger(quietLogger()))
	ts, sess := newTestServer(t, func(c *Config) { c.Ticks = ticks })
	conn, read := dialWS(t, ts)
	read("tick")

	tests := []struct {
		name    string
		msg     map[string]any
		want    int
		active  bool
		wantErr string
	}{
		{"move before start", map[string]any{"type": "drag_move", "payload": map[string]float64{"x": 50}}, 0, false, "no drag"},
		{"start", map[string]any{"type": "drag_start", "payload": map[string]float64{"x": 100}}, 0, true, ""},
		{"move right", map[string]any{"type": "drag_move", "payload": map[string]float64{"x": 190}}, 60, true, ""},
		{"move left half step", map[string]any{"type": "drag_move", "payload": map[string]float64{"x": 99.25}}, 0, true, ""},
		{"start without x", map[string]any{"type": "drag_start"}, 0, true, "requires x"},
		{"end with x", map[string]any{"type": "drag_end", "payload": map[string]float64{"x": 130}}, 20, false, ""},
		{"move after end", map[string]any{"type": "drag_move", "payload": map[string]float64{"x": 900}}, 20, false, "no drag"},
		{"slider", map[string]any{"type": "slider", "payload": map[string]int{"minutes": 300}}, 300, false, ""},
		{"slider clamps", map[string]any{"type": "slider", "payload": map[string]int{"minutes": 20000}}, 10080, false, ""},
		{"slider without minutes", map[string]any{"type": "slider", "payload": map[string]int{}}, 10080, false, "requires minutes"},
		{"offset minutes", map[string]any{"type": "offset", "payload": map[string]int{"minutes": -45}}, -45, false, ""},
	}
	for _, tt := range tests {
		if err := conn.WriteJSON(tt.msg); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if tt.wantErr != "" {
			if e := decode[wsErrorPayload](t, read("error")); !strings.Contains(e.Error, tt.wantErr) {
				t.Errorf("%s: error = %q, want %q", tt.name, e.Error, tt.wantErr)
			}
		} else if got := decode[offsetResponse](t, read("offset")); got.Minutes != tt.want {
			t.Errorf("%s: reply minutes = %d, want %d", tt.name, got.Minutes, tt.want)
		}
		if got := sess.Offset().Minutes(); got != tt.want {
			t.Errorf("%s: session offset = %d, want %d", tt.name, got, tt.want)
		}
		if got := sess.Gesture().Active(); got != tt.active {
			t.Errorf("%s: drag active = %v, want %v", tt.name, got, tt.active)
		}
	}
}
