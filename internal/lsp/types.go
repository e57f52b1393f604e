// Package lsp is a minimal Language Server Protocol client: it manages a
// single server process over JSON-RPC 2.0 stdio and exposes exactly the two
// capabilities the rest of this program needs, document open/replace and
// positional hover. The server is treated as a black box; no attempt is made
// to model its internal protocol state.
package lsp

import (
	"encoding/json"
	"strings"
)

// Position is a zero-based line/character coordinate in a document.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans two positions in a document.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Hover is the raw payload of a textDocument/hover response. Contents is
// kept raw because the protocol allows three shapes there; use Text to
// flatten it.
type Hover struct {
	Contents json.RawMessage `json:"contents"`
	Range    *Range          `json:"range,omitempty"`
}

// Text normalizes the hover contents union into one plain string. The
// protocol permits a bare string, an array of strings and {language, value}
// fragments, or a single {kind, value} markup object; all three collapse to
// fragment values joined by newlines. Structured fragments contribute their
// value field only.
func (h *Hover) Text() string {
	return flattenContents(h.Contents)
}

func flattenContents(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil {
		parts := make([]string, 0, len(arr))
		for _, item := range arr {
			if v := fragmentValue(item); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, "\n")
	}

	if v := fragmentValue(raw); v != "" {
		return v
	}
	return string(raw)
}

// fragmentValue extracts a plain string from a single fragment, which is
// either a bare string or an object carrying a value field (MarkedString or
// MarkupContent).
func fragmentValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}
