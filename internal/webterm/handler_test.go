package webterm

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/starford/termblog/internal/ansi"
	"github.com/starford/termblog/internal/catalog"
	"github.com/starford/termblog/internal/shell"
	"github.com/starford/termblog/internal/storage"
	"github.com/starford/termblog/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	store, err := storage.NewFS(testutil.WriteContent(t, testutil.Blog()))
	if err != nil {
		t.Fatal(err)
	}
	lib, err := catalog.NewLibrary(store, "/media")
	if err != nil {
		t.Fatal(err)
	}
	sh := shell.New(shell.DefaultCommands(), shell.Config{User: "visitor", Host: "blog.test"}, shell.WithLogger(quietLogger()))
	h := New(lib, sh, append([]Option{WithLogger(quietLogger())}, opts...)...)

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Page)
	mux.HandleFunc("/ws", h.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil collects output until its visible text contains want.
func readUntil(t *testing.T, conn *websocket.Conn, want string) string {
	t.Helper()
	return ansi.Strip(readRawUntil(t, conn, want))
}

// readRawUntil is readUntil without stripping escape sequences.
func readRawUntil(t *testing.T, conn *websocket.Conn, want string) string {
	t.Helper()
	var out strings.Builder
	deadline := time.Now().Add(3 * time.Second)
	for !strings.Contains(ansi.Strip(out.String()), want) {
		_ = conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for %q: %v; got %q", want, err, ansi.Strip(out.String()))
		}
		out.Write(data)
	}
	return out.String()
}

func send(t *testing.T, conn *websocket.Conn, f frame) {
	t.Helper()
	b, err := json.Marshal(f)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatal(err)
	}
}

func TestPage(t *testing.T) {
	srv := newServer(t)
	resp, err := http.Get(srv.URL + "/post/hello-world")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "xterm") || !strings.Contains(string(body), "/ws?cols=") {
		t.Error("page does not load the terminal")
	}
}

func TestServeWS_RoundTrip(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "?cols=100&rows=30")

	readUntil(t, conn, "visitor@blog.test:~$ ")

	send(t, conn, frame{Type: "input", Data: "pwd\r"})
	readUntil(t, conn, "/home/visitor")

	// Plain text frames are raw input.
	if err := conn.WriteMessage(websocket.TextMessage, []byte("cd posts\r")); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, "visitor@blog.test:~/posts$ ")
}

func TestServeWS_ResizeReachesPager(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "")
	readUntil(t, conn, "visitor@blog.test:~$ ")

	send(t, conn, frame{Type: "command", Data: "less hello-world"})
	readUntil(t, conn, "(q to quit)")

	send(t, conn, frame{Type: "resize", Cols: 40, Rows: 10})
	readUntil(t, conn, "(q to quit)")

	send(t, conn, frame{Type: "input", Data: "q"})
	readUntil(t, conn, "visitor@blog.test:~$ ")
}

func TestServeWS_DeepLink(t *testing.T) {
	srv := newServer(t)
	conn := dial(t, srv, "?path=%2Fpost%2Fvim-tips")
	out := readUntil(t, conn, "(q to quit)")
	if !strings.Contains(out, "less vim-tips") {
		t.Errorf("deep link command not echoed: %q", out)
	}
}

func TestServeWS_BaseURL(t *testing.T) {
	srv := newServer(t, WithBaseURL("https://blog.test"))
	conn := dial(t, srv, "")
	out := readRawUntil(t, conn, "visitor@blog.test:~$ ")
	if !strings.Contains(out, "https://blog.test/post/vim-tips") {
		t.Errorf("banner links are not absolute: %q", out)
	}
}

func TestServeWS_SessionLimit(t *testing.T) {
	srv := newServer(t, WithMaxSessions(1))
	conn := dial(t, srv, "")
	readUntil(t, conn, "visitor@blog.test:~$ ")

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("second session accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("resp = %v, want 503", resp)
	}
	_ = resp.Body.Close()
}

func TestDimension(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 80},
		{"abc", 80},
		{"-3", 80},
		{"120", 120},
		{"5000", maxDimension},
	}
	for _, c := range cases {
		if got := dimension(c.in, 80); got != c.want {
			t.Errorf("dimension(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
