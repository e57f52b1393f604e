package lsp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// Message is a JSON-RPC 2.0 envelope. The same shape carries requests,
// responses, and notifications; which one it is depends on which fields
// are populated.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id,omitempty"`     // nil for notifications
	Method  string          `json:"method,omitempty"` // requests/notifications only
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is a JSON-RPC 2.0 error object returned by the server.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Conn speaks JSON-RPC 2.0 with Content-Length header framing over an
// io.ReadWriteCloser, typically the stdin/stdout pair of a spawned
// language-server process.
type Conn struct {
	rwc    io.ReadWriteCloser
	reader *bufio.Reader
	mu     sync.Mutex // serializes writes
}

// NewConn wraps rwc in a framed JSON-RPC connection.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{
		rwc:    rwc,
		reader: bufio.NewReaderSize(rwc, 64*1024),
	}
}

// Call writes a request with the given ID, method, and params.
func (c *Conn) Call(id int, method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	return c.write(Message{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
		Params:  raw,
	})
}

// Respond writes a response to the request with the given ID. Exactly one
// of result and respErr should be set.
func (c *Conn) Respond(id int, result any, respErr *ResponseError) error {
	msg := Message{
		JSONRPC: "2.0",
		ID:      &id,
		Error:   respErr,
	}
	if respErr == nil {
		raw, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		msg.Result = raw
	}
	return c.write(msg)
}

// Notify writes a notification: no ID, no response expected.
func (c *Conn) Notify(method string, params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	return c.write(Message{
		JSONRPC: "2.0",
		Method:  method,
		Params:  raw,
	})
}

// Read blocks until one full framed message is available, then decodes it.
func (c *Conn) Read() (*Message, error) {
	body, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return &msg, nil
}

// Close closes the underlying stream.
func (c *Conn) Close() error {
	return c.rwc.Close()
}

func (c *Conn) write(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(data))
	if _, err := io.WriteString(c.rwc, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := c.rwc.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// readFrame reads headers until the blank line, then exactly
// Content-Length bytes of body.
func (c *Conn) readFrame() ([]byte, error) {
	contentLength := -1
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("parse Content-Length %q: %w", v, err)
			}
			contentLength = n
		}
		// Other headers (Content-Type) are ignored.
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(c.reader, body); err != nil {
		return nil, fmt.Errorf("read body (%d bytes): %w", contentLength, err)
	}
	return body, nil
}
