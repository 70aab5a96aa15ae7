package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gmusic/internal/shared"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// StreamRequest is a command sent by a streaming client.
type StreamRequest struct {
	Op     string `json:"op"` // "search" or "resolve"
	QID    string `json:"qid,omitempty"`
	Query  string `json:"query,omitempty"`
	Artist string `json:"artist,omitempty"`
	Album  string `json:"album,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Stream serves the resolver over a WebSocket at /ws.
//
// Clients send [StreamRequest] messages and receive one [Event] per result list as the resolver delivers
// it, followed by a done event for the query id. This mirrors the in-process contract, where results
// arrive asynchronously and tagged with the caller's id.
type Stream struct {
	resolver  Querier
	collector *Collector
	logger    *log.Logger
	upgrader  websocket.Upgrader
	newQID    func() string
}

var _ Handler = (*Stream)(nil)

// NewStream creates a streaming handler sharing the bridge's resolver and collector.
func NewStream(opts BridgeOpts) *Stream {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Stream{
		resolver:  opts.Resolver,
		collector: opts.Collector,
		logger:    shared.WithLogger(logger, "component", "stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The bridge listens on loopback for a local host application.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		newQID: uuid.NewString,
	}
}

// Routes returns the HTTP routes this handler serves.
func (s *Stream) Routes() []string {
	return []string{"/ws"}
}

// ServeHTTP upgrades the connection and runs the session until the client disconnects.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	sess := &streamSession{
		stream: s,
		conn:   conn,
		out:    make(chan Event, 256),
		closed: make(chan struct{}),
		qids:   make(map[string]struct{}),
	}
	sess.run()
}

type streamSession struct {
	stream *Stream
	conn   *websocket.Conn
	out    chan Event
	closed chan struct{}

	mu   sync.Mutex
	qids map[string]struct{}
}

func (s *streamSession) run() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writePump()
	}()

	s.readPump()
	close(s.closed)
	wg.Wait()

	s.mu.Lock()
	for qid := range s.qids {
		s.stream.collector.Finish(qid)
	}
	s.qids = nil
	s.mu.Unlock()

	s.conn.Close()
}

func (s *streamSession) emit(ev Event) {
	select {
	case s.out <- ev:
	case <-s.closed:
	}
}

func (s *streamSession) fail(qid string, err error) {
	s.emit(Event{QID: qid, Kind: EventError, Error: err.Error()})
}

func (s *streamSession) readPump() {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.stream.logger.Warn("websocket read error", "err", err)
			}
			return
		}

		var req StreamRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.fail("", fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
			continue
		}
		s.handle(req)
	}
}

func (s *streamSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(ev); err != nil {
				s.stream.logger.Warn("websocket write error", "err", err)
				s.conn.Close()
				return
			}
			if ev.Kind == EventDone {
				s.release(ev.QID)
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.conn.Close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *streamSession) handle(req StreamRequest) {
	qid := req.QID
	if qid == "" {
		qid = s.stream.newQID()
	}

	if !s.stream.resolver.Configured() {
		s.fail(qid, shared.ErrNotConfigured)
		return
	}

	if s.inFlight(qid) {
		s.fail(qid, fmt.Errorf("%w: query id %q already in flight", shared.ErrInvalidInput, qid))
		return
	}

	switch req.Op {
	case "search":
		if req.Query == "" {
			s.fail(qid, fmt.Errorf("%w: query", shared.ErrMissingArgument))
			return
		}
		s.track(qid)
		s.stream.resolver.Search(qid, req.Query)
	case "resolve":
		if req.Artist == "" && req.Album == "" && req.Title == "" {
			s.fail(qid, fmt.Errorf("%w: one of artist, album or title", shared.ErrMissingArgument))
			return
		}
		s.track(qid)
		s.stream.resolver.Resolve(qid, req.Artist, req.Album, req.Title)
	default:
		s.fail(qid, fmt.Errorf("%w: unknown op %q", shared.ErrInvalidInput, req.Op))
	}
}

func (s *streamSession) inFlight(qid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.qids[qid]
	return ok
}

func (s *streamSession) track(qid string) {
	s.mu.Lock()
	s.qids[qid] = struct{}{}
	s.mu.Unlock()

	s.stream.collector.BeginStream(qid, s.emit)
}

func (s *streamSession) release(qid string) {
	s.mu.Lock()
	delete(s.qids, qid)
	s.mu.Unlock()

	s.stream.collector.Finish(qid)
}
