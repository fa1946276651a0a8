package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/liveboard"
	"github.com/jpalmerr/liveboard/internal/publish"
)

const (
	// streamWriteTimeout is the maximum time allowed for a single SSE or
	// websocket write. Must be <= shutdown timeout to ensure clean shutdown.
	streamWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second
)

// TaskLister reports the crawler's registered poll tasks.
type TaskLister interface {
	Tasks() []liveboard.TaskInfo
}

// Feed is the in-process view of published snapshots.
type Feed interface {
	GetAll() []publish.Message
	Subscribe() <-chan publish.Message
	Unsubscribe(ch <-chan publish.Message)
}

// Server exposes crawler status over HTTP.
//
// Routes:
//   - GET /healthz: liveness
//   - GET /api/tasks: registered poll tasks as JSON
//   - GET /api/boards: latest snapshot per channel as JSON
//   - GET /api/sse: Server-Sent Events stream of snapshots
//   - GET /ws: websocket stream of snapshot payloads
//   - GET /metrics: Prometheus exposition
//
// The stream and boards routes accept ?event=<match id> to select one event.
type Server struct {
	tasks      TaskLister
	feed       Feed
	gatherer   prometheus.Gatherer
	port       int
	httpServer *http.Server
	upgrader   websocket.Upgrader
	logger     *slog.Logger
}

// NewServer creates a new HTTP [Server]. gatherer may be nil, in which case
// /metrics is not served.
//
// The server is not started until [Server.Start] is called.
func NewServer(tasks TaskLister, feed Feed, gatherer prometheus.Gatherer, port int, logger *slog.Logger) *Server {
	return &Server{
		tasks:    tasks,
		feed:     feed,
		gatherer: gatherer,
		port:     port,
		upgrader: websocket.Upgrader{
			// read-only status feed
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/tasks", s.handleTasks)
	mux.HandleFunc("/api/boards", s.handleBoards)
	mux.HandleFunc("/api/sse", s.handleSSE)
	mux.HandleFunc("/ws", s.handleWS)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start returns once the listener is bound. The server runs until ctx is
// cancelled, then shuts down with a 5-second grace period.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end with ctx so streaming handlers return on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.logger.Info("status server listening", "addr", ln.Addr().String())

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// handleTasks returns the registered poll tasks as JSON.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.tasks.Tasks())
}

// handleBoards returns the latest published message per channel.
func (s *Server) handleBoards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	channel, err := channelFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	boards := s.feed.GetAll()
	if channel != "" {
		filtered := boards[:0]
		for _, msg := range boards {
			if msg.Channel == channel {
				filtered = append(filtered, msg)
			}
		}
		boards = filtered
	}
	s.writeJSON(w, boards)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// handleSSE streams published messages via Server-Sent Events.
//
// Every write carries a deadline so that a slow or vanished client cannot
// park the handler past shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	channel, err := channelFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	ch := s.feed.Subscribe()
	defer s.feed.Unsubscribe(ch)

	for _, msg := range s.feed.GetAll() {
		if !matches(msg, channel) {
			continue
		}
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !matches(msg, channel) {
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on client disconnect and on server shutdown (BaseContext)
			return
		}
	}
}

// handleWS streams snapshot payloads over a websocket. Each text frame is
// one payload exactly as it was published.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	channel, err := channelFilter(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Debug("ws client connected", "remote", r.RemoteAddr, "channel", channel)

	ch := s.feed.Subscribe()
	defer s.feed.Unsubscribe(ch)

	// the read loop only notices the peer going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(msg publish.Message) error {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, msg.Payload)
	}

	for _, msg := range s.feed.GetAll() {
		if !matches(msg, channel) {
			continue
		}
		if err := send(msg); err != nil {
			return
		}
	}

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if !matches(msg, channel) {
				continue
			}
			if err := send(msg); err != nil {
				return
			}

		case <-gone:
			s.logger.Debug("ws client disconnected", "remote", r.RemoteAddr)
			return

		case <-r.Context().Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(time.Second))
			return
		}
	}
}

// channelFilter returns the channel selected by ?event=, or "" for all.
func channelFilter(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("event")
	if raw == "" {
		return "", nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid event id %q", raw)
	}
	return liveboard.ChannelFor(id), nil
}

func matches(msg publish.Message, channel string) bool {
	return channel == "" || msg.Channel == channel
}
