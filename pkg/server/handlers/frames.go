package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"deflect-hq/roicalc/pkg/calculator"
	"deflect-hq/roicalc/pkg/server/types"
	"deflect-hq/roicalc/pkg/sessions"
	"deflect-hq/roicalc/pkg/telemetry/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	maxMessageBytes = 4 << 10
)

// Frames streams a session's animated outputs over a WebSocket. A frame is
// sent on connect, then every FrameInterval until the display settles.
// Client messages change the plan or volume; the stream resumes from the
// value on screen. The stream goes quiet while settled.
func (a *API) Frames(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := a.cfg.Sessions.Get(id); err != nil {
		a.writeSessionError(w, r, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     a.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered with an HTTP error.
		a.logger.Debug("frame stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := logging.FromContext(logging.WithSession(r.Context(), id), a.logger)
	logger.Debug("frame stream opened")

	s := &frameStream{
		api:      a,
		conn:     conn,
		id:       id,
		changed:  make(chan struct{}, 1),
		problems: make(chan types.ErrorDetail, 8),
		done:     make(chan struct{}),
	}
	go s.read()
	s.write()

	logger.Debug("frame stream closed")
}

func (a *API) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(a.cfg.AllowedOrigins) == 0 || slices.Contains(a.cfg.AllowedOrigins, "*") {
		return true
	}
	if slices.Contains(a.cfg.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

type frameStream struct {
	api  *API
	conn *websocket.Conn
	id   string

	// changed is signalled after a client message is applied.
	changed chan struct{}

	// problems carries errors for the client. Only write touches the conn.
	problems chan types.ErrorDetail

	// done is closed when the client goes away.
	done chan struct{}
}

func (s *frameStream) read() {
	defer close(s.done)

	s.conn.SetReadLimit(maxMessageBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg types.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.report(types.ErrorDetail{
				Message: "Invalid JSON message",
				Type:    types.ErrorTypeInvalidRequest,
				Code:    types.CodeInvalidJSON,
			})
			continue
		}

		err = s.api.cfg.Sessions.Do(s.id, func(c *calculator.Controller) error {
			if msg.PlanID != "" {
				if err := c.SelectPlan(msg.PlanID); err != nil {
					return err
				}
			}
			if msg.Volume != nil {
				c.SetVolume(*msg.Volume)
			}
			return nil
		})
		switch {
		case err == nil:
			s.notify()
		case errors.Is(err, calculator.ErrUnknownPlan):
			s.report(types.ErrorDetail{
				Message: err.Error(),
				Type:    types.ErrorTypeInvalidRequest,
				Param:   "plan_id",
				Code:    types.CodeUnknownPlan,
			})
		default:
			// Session gone; write notices on its next frame.
			s.notify()
		}
	}
}

func (s *frameStream) report(detail types.ErrorDetail) {
	select {
	case s.problems <- detail:
	default:
	}
}

func (s *frameStream) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *frameStream) write() {
	ticker := time.NewTicker(s.api.cfg.FrameInterval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	pending := true
	for {
		var tick <-chan time.Time
		if pending {
			settled, err := s.sendFrame()
			if err != nil {
				return
			}
			pending = !settled
			if pending {
				tick = ticker.C
			}
		}

		select {
		case <-s.done:
			return
		case <-s.api.closing:
			s.close(websocket.CloseGoingAway, "server shutting down")
			return
		case <-s.changed:
			pending = true
		case detail := <-s.problems:
			if err := s.send(types.FrameMessage{Type: types.MessageError, Error: &detail}); err != nil {
				return
			}
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-tick:
		}
	}
}

// sendFrame writes the current frame and reports whether it was settled.
// A vanished session ends the stream with an error message.
func (s *frameStream) sendFrame() (bool, error) {
	var (
		state calculator.State
		frame calculator.Frame
	)
	err := s.api.cfg.Sessions.Do(s.id, func(c *calculator.Controller) error {
		state = c.State()
		frame = c.Current()
		return nil
	})
	if errors.Is(err, sessions.ErrNotFound) {
		_ = s.send(types.FrameMessage{Type: types.MessageError, Error: &types.ErrorDetail{
			Message: "Session not found or expired",
			Type:    types.ErrorTypeNotFound,
			Code:    types.CodeUnknownSession,
		}})
		s.close(websocket.CloseNormalClosure, "session ended")
		return false, err
	}
	if err != nil {
		return false, err
	}

	return frame.Settled, s.send(types.FrameMessage{Type: types.MessageFrame, State: &state, Frame: &frame})
}

func (s *frameStream) send(msg types.FrameMessage) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(msg)
}

func (s *frameStream) close(code int, text string) {
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, text), time.Now().Add(writeWait))
}
