package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/repository/fhir"
	"github.com/jwalitptl/clinic-dashboard/internal/search"
	"github.com/jwalitptl/clinic-dashboard/internal/service/patient"
	"github.com/jwalitptl/clinic-dashboard/internal/service/view"
	"github.com/jwalitptl/clinic-dashboard/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client actions.
const (
	ActionSet    = "set"
	ActionRemove = "remove"
	ActionClear  = "clear"
)

// Server frame types.
const (
	FrameState   = "state"
	FrameLoading = "loading"
	FrameResults = "results"
	FrameError   = "error"
)

// ClientFrame is one filter mutation sent by the browser.
type ClientFrame struct {
	Action string `json:"action"`
	Field  string `json:"field,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Results is the payload of a results frame.
type Results struct {
	Total    int            `json:"total"`
	Patients []patient.Card `json:"patients"`
	Stale    bool           `json:"stale,omitempty"`
}

type Frame struct {
	Type    string                `json:"type"`
	Session string                `json:"session,omitempty"`
	Filters []search.ActiveFilter `json:"filters,omitempty"`
	Loading bool                  `json:"loading"`
	Seq     uint64                `json:"seq,omitempty"`
	Results *Results              `json:"results,omitempty"`
	Message string                `json:"message,omitempty"`
}

// session is one live search over one socket. The panel debounces filter
// edits; view state keeps only the latest search result.
type session struct {
	id     string
	conn   *websocket.Conn
	svc    patient.PatientService
	remote bool

	panel *search.Panel
	state *view.State[Results]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
	send   chan Frame

	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func (s *session) emit(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.send <- f:
		s.metrics.SearchEmissions.WithLabelValues(f.Type).Inc()
	default:
		s.logger.Warn().Str("frame", f.Type).Msg("live search client too slow, frame dropped")
	}
}

// search runs one query in the background. Only the latest ticket may
// publish results.
func (s *session) search(params model.PatientSearchParams) {
	t := s.state.Begin()
	s.emit(Frame{Type: FrameLoading, Loading: true})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		res, err := s.svc.Search(s.ctx, &params, s.remote)
		if res == nil {
			res = &patient.Result{}
		}
		payload := Results{
			Total:    res.Total,
			Patients: patient.Cards(res.Patients),
			Stale:    res.Stale,
		}

		msg := ""
		if err != nil {
			msg = res.Error
			if msg == "" {
				msg = fhir.Describe(err)
			}
		}

		if !s.state.Finish(t, payload, msg) {
			s.logger.Debug().Uint64("ticket", uint64(t)).Msg("discarding superseded search results")
			return
		}

		snap := s.state.Snapshot()
		s.emit(Frame{Type: FrameResults, Loading: snap.Loading, Seq: snap.Seq, Results: &snap.Data})
		if snap.Error != "" {
			s.emit(Frame{Type: FrameError, Loading: snap.Loading, Seq: snap.Seq, Message: snap.Error})
		}
	}()
}

func (s *session) clear() {
	s.search(model.PatientSearchParams{})
}

func (s *session) apply(frame ClientFrame) error {
	switch frame.Action {
	case ActionSet:
		return s.panel.Set(frame.Field, frame.Value)
	case ActionRemove:
		return s.panel.Remove(frame.Field)
	case ActionClear:
		return s.panel.Clear()
	default:
		return fmt.Errorf("unknown action %q", frame.Action)
	}
}

func (s *session) emitState() {
	s.emit(Frame{
		Type:    FrameState,
		Session: s.id,
		Filters: s.panel.ActiveFilters(),
		Loading: s.state.Loading(),
	})
}

// readPump applies client frames until the socket fails or closes.
func (s *session) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("live search socket closed unexpectedly")
			}
			return
		}

		var frame ClientFrame
		if err := json.Unmarshal(message, &frame); err != nil {
			s.emit(Frame{Type: FrameError, Message: "Malformed message."})
			continue
		}

		if err := s.apply(frame); err != nil {
			if errors.Is(err, search.ErrClosed) {
				return
			}
			s.emit(Frame{Type: FrameError, Message: err.Error()})
			continue
		}
		s.emitState()
	}
}

// writePump is the only writer on the socket.
func (s *session) writePump(done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case frame, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(frame); err != nil {
				s.logger.Debug().Err(err).Msg("live search write failed")
				_ = s.conn.Close()
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = s.conn.Close()
				return
			}
		}
	}
}

// shutdown stops the panel, waits for in-flight searches and closes the
// send queue so the write pump exits.
func (s *session) shutdown() {
	s.panel.Close()
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.closed = true
	close(s.send)
	s.mu.Unlock()
}
