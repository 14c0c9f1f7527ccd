package webterm

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// wsTerminal is a terminal.Terminal backed by a websocket connection.
// Writes from the session loop, a running command and the pinger are
// serialised by mu.
type wsTerminal struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.Mutex
	cols   atomic.Int32
	rows   atomic.Int32
	broken atomic.Bool
}

func newWSTerminal(conn *websocket.Conn, cols, rows int, logger *slog.Logger) *wsTerminal {
	t := &wsTerminal{conn: conn, logger: logger}
	t.setSize(cols, rows)
	return t
}

func (t *wsTerminal) Write(s string) {
	if s == "" || t.broken.Load() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := t.conn.WriteMessage(websocket.TextMessage, []byte(s)); err != nil {
		t.broken.Store(true)
		t.logger.Debug("webterm: write failed", slog.String("error", err.Error()))
	}
}

func (t *wsTerminal) Size() (int, int) {
	return int(t.cols.Load()), int(t.rows.Load())
}

func (t *wsTerminal) setSize(cols, rows int) {
	t.cols.Store(int32(cols))
	t.rows.Store(int32(rows))
}

func (t *wsTerminal) ping() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (t *wsTerminal) close(code int, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_ = t.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
}
