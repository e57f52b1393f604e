// Package session coordinates one semantic query against the language
// server: it synchronizes a document's on-disk text into the server, waits
// out a fixed settling delay, issues the positional hover request, and
// normalizes the response for presentation.
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/codenav/internal/lsp"
	"github.com/dusk-indust/codenav/internal/position"
)

// DefaultSettleDelay is the pause between opening a document and querying
// it. The server gives no readiness signal for a freshly opened document;
// this fixed delay approximates one. Known latency/correctness trade-off.
const DefaultSettleDelay = time.Second

// Coordinator issues hover queries through an explicit client session. No
// document state is cached across calls; every query re-reads the file and
// re-opens it in the server.
type Coordinator struct {
	client     *lsp.Client
	languageID string
	settle     time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithSettleDelay overrides the post-open settling delay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.settle = d }
}

// New creates a Coordinator that queries through client, opening documents
// with the given language identifier.
func New(client *lsp.Client, languageID string, opts ...Option) *Coordinator {
	c := &Coordinator{
		client:     client,
		languageID: languageID,
		settle:     DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Point is a one-based line/column pair for presentation.
type Point struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Span is a one-based range for presentation.
type Span struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// HoverInfo is the normalized payload of a successful hover query.
type HoverInfo struct {
	Contents string `json:"contents"`
	Range    Span   `json:"range"`
}

// Result is the outcome of one hover lookup. A nil Hover means the server
// had no information for the position; that is a success, not a failure.
type Result struct {
	Message string     `json:"message"`
	Hover   *HoverInfo `json:"hover"`
}

// Hover resolves desc against the file's current on-disk text, synchronizes
// the document into the server, and issues one hover query at the resolved
// position.
func (c *Coordinator) Hover(ctx context.Context, root string, desc position.Descriptor) (*Result, error) {
	if c.client == nil || !c.client.Ready() {
		return nil, lsp.ErrNoSession
	}

	absPath := desc.FilePath
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(root, absPath)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", desc.FilePath, err)
	}
	text := string(data)
	lines := strings.Split(text, "\n")

	pos, err := position.Resolve(lines, desc)
	if err != nil {
		return nil, err
	}

	uri := lsp.DocumentURI(absPath)
	if err := c.client.OpenDocument(ctx, uri, c.languageID, text); err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	// Let the server finish indexing the just-opened document. This is a
	// suspension point, not a busy wait; cancellation comes only from the
	// caller's context.
	select {
	case <-time.After(c.settle):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	hover, err := c.client.Hover(ctx, uri, lsp.Position{Line: pos.Line, Character: pos.Character})
	if err != nil {
		return nil, fmt.Errorf("hover query: %w", err)
	}

	location := fmt.Sprintf("%s:%d:%d", desc.FilePath, pos.Line+1, pos.Character+1)
	if hover == nil {
		return &Result{
			Message: fmt.Sprintf("No hover information available for %q at %s", desc.Target, location),
		}, nil
	}

	contents := hover.Text()
	message := fmt.Sprintf("Hover information for %q at %s", desc.Target, location)
	if contents != "" {
		message += "\n\n" + contents
	}

	return &Result{
		Message: message,
		Hover: &HoverInfo{
			Contents: contents,
			Range:    presentRange(hover.Range, lines),
		},
	}, nil
}

// presentRange converts a server range to one-based coordinates. When the
// server returned no range, a synthetic whole-file span stands in: it
// signals "no specific span, treat the entire file as context", not a
// literal server answer.
func presentRange(r *lsp.Range, lines []string) Span {
	if r != nil {
		return Span{
			Start: Point{Line: r.Start.Line + 1, Column: r.Start.Character + 1},
			End:   Point{Line: r.End.Line + 1, Column: r.End.Character + 1},
		}
	}
	last := len(lines) - 1
	return Span{
		Start: Point{Line: 1, Column: 1},
		End:   Point{Line: last + 1, Column: len(lines[last])},
	}
}
