package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codeGROOVE-dev/vibetime/pkg/countdown"
	"github.com/codeGROOVE-dev/vibetime/pkg/datecalc"
	"github.com/codeGROOVE-dev/vibetime/pkg/locations"
	"github.com/codeGROOVE-dev/vibetime/pkg/planner"
	"github.com/codeGROOVE-dev/vibetime/pkg/session"
	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
	"github.com/codeGROOVE-dev/vibetime/pkg/timeline"
	"github.com/codeGROOVE-dev/vibetime/pkg/tzconvert"
)

const maxBodyBytes = 64 << 10

// errorBody is the uniform error payload.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // client may be gone
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeDomainError maps package sentinels onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var dup *locations.DuplicateError
	switch {
	case errors.As(err, &dup):
		writeError(w, http.StatusConflict, "duplicate", dup.Notice())
	case errors.Is(err, tzconvert.ErrUnknownZone):
		writeError(w, http.StatusBadRequest, "unknown_zone", err.Error())
	case errors.Is(err, session.ErrUnknownTheme):
		writeError(w, http.StatusBadRequest, "unknown_theme", err.Error())
	case errors.Is(err, countdown.ErrInvalidTarget):
		writeError(w, http.StatusBadRequest, "invalid_target", err.Error())
	case errors.Is(err, locations.ErrNotFound), errors.Is(err, countdown.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "method", r.Method, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// refresh moves the session's live instant to now before a read.
func (s *Server) refresh() {
	s.sess.Tick(s.sess.Now())
}

type clockResponse struct {
	Now           time.Time       `json:"now"`
	Selected      time.Time       `json:"selected"`
	OffsetMinutes int             `json:"offset_minutes"`
	OffsetLabel   string          `json:"offset_label"`
	Clocks        []session.Clock `json:"clocks"`
	Notice        *session.Notice `json:"notice,omitempty"`
}

func (s *Server) clockAt(offset int) clockResponse {
	now := s.sess.Offset().Base()
	selected := now.Add(time.Duration(offset) * time.Minute)
	resp := clockResponse{
		Now:           now,
		Selected:      selected,
		OffsetMinutes: offset,
		OffsetLabel:   timeline.FormatOffset(offset),
		Clocks:        session.ClocksAt(s.sess.Locations(), selected),
	}
	if n, ok := s.sess.Notice(); ok {
		resp.Notice = &n
	}
	return resp
}

// handleClock projects every location. ?offset= previews another offset in
// minutes without changing the shared one.
func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	s.refresh()
	offset := s.sess.Offset().Minutes()
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "offset must be whole minutes")
			return
		}
		offset = timeline.Clamp(n)
	}
	writeJSON(w, http.StatusOK, s.clockAt(offset))
}

func (s *Server) handleListLocations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Locations())
}

type addLocationRequest struct {
	Query       string `json:"query"`
	Name        string `json:"name"`
	Timezone    string `json:"timezone"`
	CountryCode string `json:"countryCode"`
}

// handleAddLocation adds an explicit {name, timezone} or the first suggestion
// for {query}.
func (s *Server) handleAddLocation(w http.ResponseWriter, r *http.Request) {
	var req addLocationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	loc := locations.Location{Name: req.Name, Timezone: req.Timezone, CountryCode: req.CountryCode}
	if loc.Timezone == "" {
		if req.Query == "" {
			writeError(w, http.StatusBadRequest, "bad_request", "timezone or query is required")
			return
		}
		found := s.provider.Lookup(r.Context(), req.Query)
		if len(found) == 0 {
			writeError(w, http.StatusNotFound, "no_match", fmt.Sprintf("no city matches %q", req.Query))
			return
		}
		loc.Name, loc.Timezone = found[0].City, found[0].Timezone
	}
	s.attachCoords(r.Context(), &loc)

	added, err := s.sess.AddLocation(r.Context(), loc)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) attachCoords(ctx context.Context, loc *locations.Location) {
	if s.geocoder == nil || loc.Coords != nil {
		return
	}
	place := loc.Name
	if place == "" {
		place = tzconvert.CityFromZone(loc.Timezone)
	}
	coords, err := s.geocoder.Coords(ctx, place)
	if err != nil {
		s.logger.Warn("geocoding failed, adding without coordinates", "place", place, "error", err)
		return
	}
	loc.Coords = coords
}

func (s *Server) handleReplaceLocations(w http.ResponseWriter, r *http.Request) {
	var items []locations.Location
	if !decodeJSON(w, r, &items) {
		return
	}
	if err := s.sess.ReplaceLocations(r.Context(), items); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.sess.Locations())
}

func (s *Server) handleRemoveLocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if base, ok := s.sess.Base(); ok && base.ID == id {
		writeError(w, http.StatusConflict, "base_location", "the base location cannot be removed")
		return
	}
	if err := s.sess.RemoveLocation(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type offsetResponse struct {
	Base     time.Time `json:"base"`
	Selected time.Time `json:"selected"`
	Minutes  int       `json:"minutes"`
	Label    string    `json:"label"`
}

func (s *Server) offsetView() offsetResponse {
	o := s.sess.Offset()
	return offsetResponse{Base: o.Base(), Selected: o.Selected(), Minutes: o.Minutes(), Label: o.Label()}
}

func (s *Server) handleGetOffset(w http.ResponseWriter, _ *http.Request) {
	s.refresh()
	writeJSON(w, http.StatusOK, s.offsetView())
}

// offsetRequest sets exactly one of an absolute offset, a relative shift or a
// target instant. Out-of-range values are clamped.
type offsetRequest struct {
	Minutes  *int       `json:"minutes"`
	Shift    *int       `json:"shift"`
	Selected *time.Time `json:"selected"`
}

func (s *Server) handleSetOffset(w http.ResponseWriter, r *http.Request) {
	var req offsetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.refresh()
	o := s.sess.Offset()
	switch {
	case req.Minutes != nil:
		s.sess.Gesture().SetSlider(*req.Minutes)
	case req.Shift != nil:
		o.Shift(*req.Shift)
	case req.Selected != nil:
		o.SetSelected(*req.Selected)
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "one of minutes, shift or selected is required")
		return
	}
	writeJSON(w, http.StatusOK, s.offsetView())
}

func (s *Server) handleResetOffset(w http.ResponseWriter, _ *http.Request) {
	s.refresh()
	s.sess.Gesture().ReturnToPresent()
	writeJSON(w, http.StatusOK, s.offsetView())
}

// handlePlanner lays out ?date= (YYYY-MM-DD in the base zone) or the
// selected day.
func (s *Server) handlePlanner(w http.ResponseWriter, r *http.Request) {
	s.refresh()
	locs := s.sess.Locations()
	selected := s.sess.Selected()
	if date := r.URL.Query().Get("date"); date != "" {
		zone := "UTC"
		if len(locs) > 0 {
			zone = locs[0].Timezone
		}
		t, err := tzconvert.ParseLocal(date, "12:00", zone)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		selected = t
	}
	grid, err := planner.Build(locs, selected, s.sess.Now())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grid)
}

type suggestResponse struct {
	Query       string               `json:"query"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	found := s.provider.Lookup(r.Context(), q)
	if found == nil {
		found = []suggest.Suggestion{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{Query: q, Suggestions: found})
}

func (s *Server) handleFortune(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.oracle.Next(r.Context()))
}

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Query       string          `json:"query"`
	Instant     time.Time       `json:"instant"`
	City        string          `json:"city"`
	Timezone    string          `json:"timezone,omitempty"`
	Explanation string          `json:"explanation,omitempty"`
	Clocks      []session.Clock `json:"clocks"`
}

// handleAsk answers "3pm in Tokyo next Friday" style questions.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.asker == nil {
		writeError(w, http.StatusServiceUnavailable, "not_configured", "natural-language queries need a Gemini API key")
		return
	}
	var req askRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query is required")
		return
	}
	tq, err := s.asker.ParseTimeQuery(r.Context(), req.Query, s.sess.Now())
	if err != nil {
		s.logger.Warn("time query failed", "query", req.Query, "error", err)
		writeError(w, http.StatusBadGateway, "upstream", "could not interpret the question")
		return
	}
	instant, err := tq.Instant()
	if err != nil {
		s.logger.Warn("time query returned an unusable time", "query", req.Query, "time", tq.Time, "error", err)
		writeError(w, http.StatusBadGateway, "upstream", "could not interpret the question")
		return
	}
	writeJSON(w, http.StatusOK, askResponse{
		Query:       req.Query,
		Instant:     instant,
		City:        tq.City,
		Timezone:    tq.Timezone,
		Explanation: tq.Explanation,
		Clocks:      session.ClocksAt(s.sess.Locations(), instant),
	})
}

type countdownView struct {
	countdown.Countdown
	Remaining countdown.Breakdown `json:"remaining"`
}

func (s *Server) countdownViews(items []countdown.Countdown) []countdownView {
	now := s.sess.Now()
	out := make([]countdownView, len(items))
	for i, c := range items {
		out[i] = countdownView{Countdown: c, Remaining: countdown.Remaining(c.Target, now)}
	}
	return out
}

func (s *Server) handleListCountdowns(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.countdownViews(s.sess.Countdowns().All()))
}

type countdownRequest struct {
	Title  *string    `json:"title"`
	Target *time.Time `json:"targetDate"`
}

func (s *Server) handleAddCountdown(w http.ResponseWriter, r *http.Request) {
	var req countdownRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var title string
	var target time.Time
	if req.Title != nil {
		title = *req.Title
	}
	if req.Target != nil {
		target = *req.Target
	}
	c, err := s.sess.Countdowns().Add(title, target)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.countdownViews([]countdown.Countdown{c})[0])
}

func (s *Server) handleUpdateCountdown(w http.ResponseWriter, r *http.Request) {
	var req countdownRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Target != nil && req.Target.IsZero() {
		s.writeDomainError(w, r, countdown.ErrInvalidTarget)
		return
	}
	c, err := s.sess.Countdowns().Update(chi.URLParam(r, "id"), func(c *countdown.Countdown) {
		if req.Title != nil {
			c.Title = *req.Title
		}
		if req.Target != nil {
			c.Target = *req.Target
		}
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.countdownViews([]countdown.Countdown{c})[0])
}

func (s *Server) handleRemoveCountdown(w http.ResponseWriter, r *http.Request) {
	if err := s.sess.Countdowns().Remove(chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type themeResponse struct {
	Theme  session.Theme   `json:"theme"`
	Themes []session.Theme `json:"themes"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, themeResponse{Theme: s.sess.Theme(), Themes: session.Themes})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := s.sess.SetTheme(r.Context(), req.Theme)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse{Theme: t, Themes: session.Themes})
}

type calcRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Date string `json:"date"`
	Days int    `json:"days"`
}

type diffResponse struct {
	datecalc.Span
	BusinessDays int    `json:"business_days"`
	Summary      string `json:"summary"`
}

// handleCalc runs one date-calculator operation: diff, business, add or info.
func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	var req calcRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	parse := func(v, field string) (time.Time, bool) {
		d, err := datecalc.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_date", field+": "+err.Error())
			return time.Time{}, false
		}
		return d, true
	}

	switch op := chi.URLParam(r, "op"); op {
	case "diff", "business":
		a, ok := parse(req.From, "from")
		if !ok {
			return
		}
		b, ok := parse(req.To, "to")
		if !ok {
			return
		}
		if op == "business" {
			writeJSON(w, http.StatusOK, map[string]int{"business_days": datecalc.BusinessDays(a, b)})
			return
		}
		span := datecalc.Difference(a, b)
		writeJSON(w, http.StatusOK, diffResponse{Span: span, BusinessDays: datecalc.BusinessDays(a, b), Summary: span.String()})
	case "add":
		d, ok := parse(req.Date, "date")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, datecalc.Describe(datecalc.AddDays(d, req.Days)))
	case "info":
		d, ok := parse(req.Date, "date")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, datecalc.Describe(d))
	default:
		writeError(w, http.StatusNotFound, "unknown_op", fmt.Sprintf("unknown calculator operation %q", op))
	}
}
