package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codeGROOVE-dev/vibetime/pkg/suggest"
)

const (
	wsReadTimeout  = 120 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin accepts non-browser clients and pages served from this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// WSMessage is a client request.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSResponse is a server push.
type WSResponse struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type wsSearchPayload struct {
	Query string `json:"query"`
}

type wsSuggestionsPayload struct {
	Query       string               `json:"query"`
	Seq         uint64               `json:"seq"`
	Suggestions []suggest.Suggestion `json:"suggestions"`
}

type wsOffsetPayload struct {
	Minutes *int `json:"minutes"`
	Shift   *int `json:"shift"`
}

// wsDragPayload carries the pointer x in CSS pixels; drag_end may omit it.
type wsDragPayload struct {
	X *float64 `json:"x"`
}

type wsSliderPayload struct {
	Minutes *int `json:"minutes"`
}

type wsErrorPayload struct {
	Error string `json:"error"`
}

// handleWebSocket streams projected clocks on every shared tick and answers
// debounced city searches. Only the newest search result is forwarded.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close() //nolint:errcheck // already closing

	if s.metrics != nil {
		s.metrics.WSConnected()
		defer s.metrics.WSDisconnected()
	}
	s.logger.Debug("websocket connected", "client_ip", clientIP(r))

	ticks, unsubscribe := s.ticks.Subscribe()
	defer unsubscribe()
	searcher := suggest.NewSearcher(s.provider, s.debounce, s.minLen)
	defer searcher.Close()

	out := make(chan WSResponse, 8)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		s.wsWriter(conn, ticks, searcher, out, done)
	}()
	defer close(done)

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout)) //nolint:errcheck // next read reports it
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout)) //nolint:errcheck // next read reports it

		reply, ok := s.handleWSMessage(msg, searcher)
		if !ok {
			continue
		}
		select {
		case out <- reply:
		case <-stopped:
			return
		}
	}
}

// handleWSMessage applies one client request. ok is false when nothing is sent back.
func (s *Server) handleWSMessage(msg WSMessage, searcher *suggest.Searcher) (reply WSResponse, ok bool) {
	switch msg.Type {
	case "ping":
		return WSResponse{Type: "pong"}, true
	case "search":
		var p wsSearchPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return wsError("invalid search payload"), true
		}
		searcher.Query(p.Query)
		return WSResponse{}, false
	case "offset":
		var p wsOffsetPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return wsError("invalid offset payload"), true
		}
		o := s.sess.Offset()
		switch {
		case p.Minutes != nil:
			s.sess.Gesture().SetSlider(*p.Minutes)
		case p.Shift != nil:
			o.Shift(*p.Shift)
		default:
			return wsError("minutes or shift is required"), true
		}
		return WSResponse{Type: "offset", Payload: s.offsetView()}, true
	case "slider":
		var p wsSliderPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil || p.Minutes == nil {
			return wsError("slider requires minutes"), true
		}
		s.sess.Gesture().SetSlider(*p.Minutes)
		return WSResponse{Type: "offset", Payload: s.offsetView()}, true
	case "drag_start", "drag_move", "drag_end":
		return s.handleWSDrag(msg), true
	case "reset":
		s.sess.Gesture().ReturnToPresent()
		return WSResponse{Type: "offset", Payload: s.offsetView()}, true
	default:
		return wsError("unknown message type " + msg.Type), true
	}
}

// handleWSDrag feeds pointer events into the session gesture.
func (s *Server) handleWSDrag(msg WSMessage) WSResponse {
	var p wsDragPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return wsError("invalid " + msg.Type + " payload")
		}
	}
	g := s.sess.Gesture()
	switch msg.Type {
	case "drag_start":
		if p.X == nil {
			return wsError("drag_start requires x")
		}
		g.Begin(*p.X)
	case "drag_move":
		if p.X == nil {
			return wsError("drag_move requires x")
		}
		if !g.Active() {
			return wsError("no drag in progress")
		}
		g.Move(*p.X)
	case "drag_end":
		if p.X != nil {
			g.Move(*p.X)
		}
		g.End()
	}
	return WSResponse{Type: "offset", Payload: s.offsetView()}
}

func wsError(text string) WSResponse {
	return WSResponse{Type: "error", Payload: wsErrorPayload{Error: text}}
}

// wsWriter owns every write on conn.
func (s *Server) wsWriter(conn *websocket.Conn, ticks <-chan time.Time, searcher *suggest.Searcher, out <-chan WSResponse, done <-chan struct{}) {
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	send := func(resp WSResponse) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)) //nolint:errcheck // write reports it
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Debug("websocket write failed", "type", resp.Type, "error", err)
			return false
		}
		return true
	}

	if !send(WSResponse{Type: "tick", Payload: s.clockAt(s.sess.Offset().Minutes())}) {
		return
	}
	for {
		var ok bool
		select {
		case <-done:
			return
		case now, open := <-ticks:
			if !open {
				return
			}
			s.sess.Tick(now)
			ok = send(WSResponse{Type: "tick", Payload: s.clockAt(s.sess.Offset().Minutes())})
		case res, open := <-searcher.Results():
			if !open {
				return
			}
			if res.Seq != searcher.Latest() {
				continue
			}
			found := res.Suggestions
			if found == nil {
				found = []suggest.Suggestion{}
			}
			ok = send(WSResponse{Type: "suggestions", Payload: wsSuggestionsPayload{Query: res.Query, Seq: res.Seq, Suggestions: found}})
		case resp := <-out:
			ok = send(resp)
		case <-ping.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
			ok = err == nil
		}
		if !ok {
			_ = conn.Close() //nolint:errcheck // unblocks the reader
			return
		}
	}
}
