// Package webterm serves the browser terminal: an xterm.js page and a
// websocket that carries one shell session per connection.
package webterm

import (
	"context"
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/semaphore"

	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/session"
	"github.com/starford/termblog/internal/shell"
)

//go:embed static/index.html
var indexHTML []byte

const (
	defaultCols         = 80
	defaultRows         = 24
	maxDimension        = 1000
	defaultPingInterval = 30 * time.Second
	defaultMaxSessions  = 100
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Handler serves the terminal page and its websocket.
type Handler struct {
	lib          *catalog.Library
	sh           *shell.Shell
	sem          *semaphore.Weighted
	logger       *slog.Logger
	pingInterval time.Duration
	baseURL      string
}

// Option configures a Handler.
type Option func(*Handler)

// WithMaxSessions bounds the number of concurrent sessions.
func WithMaxSessions(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.sem = semaphore.NewWeighted(n)
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithPingInterval sets how often idle connections are pinged.
func WithPingInterval(d time.Duration) Option {
	return func(h *Handler) { h.pingInterval = d }
}

// WithBaseURL sets the prefix of post links printed in sessions. Empty
// keeps them relative to the page.
func WithBaseURL(u string) Option {
	return func(h *Handler) { h.baseURL = u }
}

// New creates a Handler. Every session starts on the library's current
// catalog.
func New(lib *catalog.Library, sh *shell.Shell, opts ...Option) *Handler {
	h := &Handler{
		lib:          lib,
		sh:           sh,
		sem:          semaphore.NewWeighted(defaultMaxSessions),
		logger:       slog.Default(),
		pingInterval: defaultPingInterval,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Page serves the terminal page. It is mounted on "/" and "/post/{slug}";
// the page passes its own path to the websocket.
func (h *Handler) Page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(indexHTML)
}

// frame is a control message from the page.
type frame struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
	Data string `json:"data"`
}

// ServeWS upgrades the request and runs a session until either side goes
// away.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	if !h.sem.TryAcquire(1) {
		http.Error(w, "too many sessions", http.StatusServiceUnavailable)
		return
	}
	defer h.sem.Release(1)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("webterm: upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	q := r.URL.Query()
	term := newWSTerminal(conn, dimension(q.Get("cols"), defaultCols), dimension(q.Get("rows"), defaultRows), h.logger)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := session.New(h.sh, term, h.lib.Current(),
		session.WithDeepLink(q.Get("path")),
		session.WithBaseURL(h.baseURL),
		session.WithLogger(h.logger),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()
	go h.keepAlive(ctx, conn, term)

	h.logger.Debug("webterm: session started", slog.String("remote", r.RemoteAddr))
	h.readLoop(conn, term, s)
	cancel()
	<-done
	term.close(websocket.CloseNormalClosure, "bye")
	h.logger.Debug("webterm: session ended", slog.String("remote", r.RemoteAddr))
}

func (h *Handler) keepAlive(ctx context.Context, conn *websocket.Conn, term *wsTerminal) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := term.ping(); err != nil {
				h.logger.Debug("webterm: ping failed", slog.String("error", err.Error()))
				_ = conn.Close()
				return
			}
		}
	}
}

// readLoop feeds frames to the session until the connection fails.
func (h *Handler) readLoop(conn *websocket.Conn, term *wsTerminal, s *session.Session) {
	pongWait := 2 * h.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("webterm: read failed", slog.String("error", err.Error()))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var f frame
		if json.Unmarshal(data, &f) == nil && f.Type != "" {
			switch f.Type {
			case "resize":
				if f.Cols > 0 && f.Rows > 0 {
					term.setSize(min(f.Cols, maxDimension), min(f.Rows, maxDimension))
					s.Resize()
				}
			case "input":
				if f.Data != "" {
					s.Input(f.Data)
				}
			case "command":
				if f.Data != "" {
					s.RunCommand(f.Data)
				}
			default:
				h.logger.Debug("webterm: unknown frame", slog.String("type", f.Type))
			}
			continue
		}
		if len(data) > 0 {
			s.Input(string(data))
		}
	}
}

func dimension(v string, def int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxDimension)
}
