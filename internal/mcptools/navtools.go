package mcptools

import "github.com/dusk-indust/codenav/internal/session"

// --- MCP Tool Input Types ---
// These structs define the JSON schema for each MCP tool's input.
// The MCP Go SDK auto-generates JSON schemas from struct tags.

// HoverSymbolInput is the input for the hover_symbol MCP tool.
type HoverSymbolInput struct {
	Root     string `json:"root" jsonschema:"absolute path to the project root"`
	FilePath string `json:"filePath" jsonschema:"path of the file to inspect, relative to root"`
	Line     any    `json:"line,omitempty" jsonschema:"1-based line number, or a substring identifying the line. Omit to search the whole file for the target"`
	Target   string `json:"target" jsonschema:"the identifier to look up"`
}

// HoverSymbolOutput is the result of the hover_symbol MCP tool. Hover is
// null when the server had no information for the position; that is not an
// error.
type HoverSymbolOutput struct {
	Message string             `json:"message"`
	Hover   *session.HoverInfo `json:"hover"`
}

// MoveFileInput is the input for the move_file MCP tool.
type MoveFileInput struct {
	Root      string `json:"root" jsonschema:"absolute path to the project root"`
	OldPath   string `json:"oldPath" jsonschema:"current path of the file, relative to root"`
	NewPath   string `json:"newPath" jsonschema:"destination path, relative to root"`
	Overwrite bool   `json:"overwrite,omitempty" jsonschema:"replace an existing file at newPath (default: false)"`
}

// MoveFileOutput is the result of the move_file MCP tool.
type MoveFileOutput struct {
	Message      string   `json:"message"`
	ChangedFiles []string `json:"changedFiles"`
}
