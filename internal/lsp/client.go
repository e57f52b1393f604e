package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoSession is returned when an operation needs a running language
// server but the client has not been started (or has already stopped).
var ErrNoSession = errors.New("lsp: no active session")

// DocumentURI converts an absolute file path to a file:// URI, the canonical
// document key exchanged with the server.
func DocumentURI(absPath string) string {
	return "file://" + filepath.ToSlash(absPath)
}

// Client manages one language-server process. It owns the process lifecycle
// (spawn, initialize handshake, shutdown) and multiplexes request/response
// pairs over the stdio connection. A Client is an explicit value passed to
// whoever needs the session; there is no process-wide singleton.
type Client struct {
	command   []string
	workspace string

	mu    sync.Mutex
	cmd   *exec.Cmd
	conn  *Conn
	ready bool
	done  chan struct{} // closed when the read loop exits

	nextID   atomic.Int64
	pending  map[int]chan *Message
	pendMu   sync.Mutex
	versions map[string]int // document URI -> last didOpen version
	verMu    sync.Mutex
}

// NewClient creates a client that will run command with workspace as its
// working directory. Start must be called before any document operation.
func NewClient(command []string, workspace string) *Client {
	return &Client{
		command:   command,
		workspace: workspace,
		pending:   make(map[int]chan *Message),
		versions:  make(map[string]int),
		done:      make(chan struct{}),
	}
}

// Start spawns the server process and performs the initialize/initialized
// handshake. Calling Start on a running client is a no-op.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}
	if len(c.command) == 0 {
		return fmt.Errorf("lsp: no server command configured")
	}
	if _, err := exec.LookPath(c.command[0]); err != nil {
		return fmt.Errorf("lsp: server binary not found: %s", c.command[0])
	}

	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	cmd.Dir = c.workspace
	cmd.Stderr = os.Stderr // server stderr passes through for debugging

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("lsp: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("lsp: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("lsp: start process: %w", err)
	}

	c.cmd = cmd
	c.conn = NewConn(stdioPipe{stdin: stdin, stdout: stdout})
	c.done = make(chan struct{})

	// The read loop must be running before initialize is sent, or the
	// response would never be dispatched.
	go c.readLoop(c.conn)

	if err := c.initialize(ctx); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("lsp: initialize: %w", err)
	}

	c.ready = true
	slog.Info("language server started",
		"command", c.command[0], "pid", cmd.Process.Pid, "workspace", c.workspace)
	return nil
}

// StartWithConn attaches the client to an already-established connection
// instead of spawning a process. Used by tests to wire a fake server.
func (c *Client) StartWithConn(ctx context.Context, conn *Conn) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ready {
		return nil
	}
	c.conn = conn
	c.done = make(chan struct{})
	go c.readLoop(conn)

	if err := c.initialize(ctx); err != nil {
		return fmt.Errorf("lsp: initialize: %w", err)
	}
	c.ready = true
	return nil
}

// Ready reports whether the session is established and usable.
func (c *Client) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Stop performs the shutdown/exit sequence, waiting up to timeout for the
// process to exit before killing it.
func (c *Client) Stop(ctx context.Context, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn := c.conn
	if conn == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := c.call(shutdownCtx, conn, "shutdown", nil); err != nil {
		slog.Warn("lsp shutdown request failed", "error", err)
	}
	_ = conn.Notify("exit", nil)
	_ = conn.Close()

	if c.cmd != nil && c.cmd.Process != nil {
		exited := make(chan error, 1)
		go func() { exited <- c.cmd.Wait() }()
		select {
		case <-exited:
		case <-shutdownCtx.Done():
			slog.Warn("language server did not exit, killing", "pid", c.cmd.Process.Pid)
			_ = c.cmd.Process.Kill()
		}
	}

	c.ready = false
	c.conn = nil
	c.cmd = nil
	<-c.done

	slog.Info("language server stopped")
	return nil
}

// OpenDocument pushes the full text of a document into the server via
// textDocument/didOpen. Opening an already-open URI replaces its text, so
// repeated calls always leave the server seeing the latest contents; the
// version number increments on each call to make the replacement explicit.
func (c *Client) OpenDocument(ctx context.Context, uri, languageID, text string) error {
	conn, err := c.session()
	if err != nil {
		return err
	}

	c.verMu.Lock()
	c.versions[uri]++
	version := c.versions[uri]
	c.verMu.Unlock()

	return conn.Notify("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": languageID,
			"version":    version,
			"text":       text,
		},
	})
}

// Hover issues a single textDocument/hover query. A nil result with nil
// error means the server had no information for the position; callers must
// not treat that as a failure.
func (c *Client) Hover(ctx context.Context, uri string, pos Position) (*Hover, error) {
	conn, err := c.session()
	if err != nil {
		return nil, err
	}

	result, err := c.call(ctx, conn, "textDocument/hover", map[string]any{
		"textDocument": map[string]string{"uri": uri},
		"position":     map[string]int{"line": pos.Line, "character": pos.Character},
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 || string(result) == "null" {
		return nil, nil
	}

	var hover Hover
	if err := json.Unmarshal(result, &hover); err != nil {
		return nil, fmt.Errorf("lsp: unmarshal hover: %w", err)
	}
	return &hover, nil
}

// session returns the live connection or ErrNoSession.
func (c *Client) session() (*Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.ready {
		return nil, ErrNoSession
	}
	return c.conn, nil
}

// initialize sends the initialize request and the initialized notification.
// Caller holds c.mu.
func (c *Client) initialize(ctx context.Context) error {
	params := map[string]any{
		"processId": os.Getpid(),
		"rootUri":   DocumentURI(c.workspace),
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"synchronization": map[string]any{},
				"hover":           map[string]any{},
			},
		},
	}

	if _, err := c.call(ctx, c.conn, "initialize", params); err != nil {
		return fmt.Errorf("initialize request: %w", err)
	}
	if err := c.conn.Notify("initialized", map[string]any{}); err != nil {
		return fmt.Errorf("initialized notification: %w", err)
	}
	return nil
}

// call sends a request over conn and blocks for the matching response. The
// conn travels as an argument for the same reason readLoop captures it.
func (c *Client) call(ctx context.Context, conn *Conn, method string, params any) (json.RawMessage, error) {
	id := int(c.nextID.Add(1))
	ch := make(chan *Message, 1)

	c.pendMu.Lock()
	c.pending[id] = ch
	c.pendMu.Unlock()
	defer func() {
		c.pendMu.Lock()
		delete(c.pending, id)
		c.pendMu.Unlock()
	}()

	if err := conn.Call(id, method, params); err != nil {
		return nil, fmt.Errorf("send %s: %w", method, err)
	}

	select {
	case msg := <-ch:
		if msg.Error != nil {
			return nil, msg.Error
		}
		return msg.Result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("lsp: connection closed")
	}
}

// readLoop dispatches responses to pending callers and drops everything
// else. Server-initiated notifications (diagnostics and the like) are
// outside this client's capability set. The conn is captured at start so
// Stop clearing c.conn cannot be observed mid-iteration.
func (c *Client) readLoop(conn *Conn) {
	defer close(c.done)

	for {
		msg, err := conn.Read()
		if err != nil {
			// Connection closed, normal during shutdown.
			return
		}

		if msg.ID != nil && msg.Method == "" {
			c.pendMu.Lock()
			ch, ok := c.pending[*msg.ID]
			c.pendMu.Unlock()
			if ok {
				ch <- msg
			}
			continue
		}

		slog.Debug("lsp notification ignored", "method", msg.Method)
	}
}

// stdioPipe glues the child's stdin (writes) and stdout (reads) into one
// io.ReadWriteCloser for the framed connection.
type stdioPipe struct {
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p stdioPipe) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p stdioPipe) Write(b []byte) (int, error) { return p.stdin.Write(b) }
func (p stdioPipe) Close() error {
	_ = p.stdin.Close()
	return p.stdout.Close()
}
