// Package project holds a tracked set of source files and performs the
// structural half of a file move: relocating the file and rewriting every
// import specifier in the project that pointed at it. Edits accumulate in
// memory and hit disk only on Save.
package project

import (
	"context"
	"errors"
)

// Sentinel errors surfaced by the move primitive.
var (
	// ErrFileNotFound means the source of a move is not tracked and could
	// not be loaded from disk.
	ErrFileNotFound = errors.New("project: file not found")

	// ErrDestinationExists means the move destination already exists and
	// overwrite was not requested.
	ErrDestinationExists = errors.New("project: destination file already exists")
)

// MoveRequest asks for one file relocation. Paths are absolute.
type MoveRequest struct {
	OldFilename string
	NewFilename string
	Overwrite   bool
}

// MoveResult reports one completed (in-memory) move. ChangedFiles lists
// absolute paths: the moved file first, then every importer whose
// specifiers were rewritten. The result is transient; it feeds one report
// and is not persisted.
type MoveResult struct {
	Message      string
	ChangedFiles []string
}

// Model is the narrow contract the move engine consumes: track files,
// perform a move with import fix-up, and persist pending edits.
type Model interface {
	// Tracked reports whether the absolute path is in the tracked set.
	Tracked(absPath string) bool

	// LoadFile reads absPath from disk into the tracked set, replacing any
	// stale tracked text.
	LoadFile(absPath string) error

	// Move relocates a tracked file and rewrites affected import
	// specifiers in memory.
	Move(ctx context.Context, req MoveRequest) (*MoveResult, error)

	// Save commits all pending edits to disk.
	Save(ctx context.Context) error
}
