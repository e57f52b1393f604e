// Package mover performs a file relocation as one logical transaction —
// preflight, delegated move with import fix-up, persistence — and then
// independently re-derives a human-auditable change report from the
// resulting files.
package mover

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/dusk-indust/codenav/internal/project"
)

// Engine drives move operations against a project model rooted at root.
type Engine struct {
	model project.Model
	root  string
}

// NewEngine creates an Engine over model with root as the base for
// relative request paths.
func NewEngine(model project.Model, root string) *Engine {
	return &Engine{model: model, root: root}
}

// Moved couples a move result with the absolute endpoints of the
// relocation, which the reporting step needs to reconstruct old import
// lines.
type Moved struct {
	Result      *project.MoveResult
	OldFilename string
	NewFilename string
}

// Move relocates oldPath to newPath (both resolved against the engine
// root), delegating the mechanical import fix-up to the project model and
// committing the resulting edits to disk as one logical unit.
func (e *Engine) Move(ctx context.Context, oldPath, newPath string, overwrite bool) (*Moved, error) {
	oldAbs := e.abs(oldPath)
	newAbs := e.abs(newPath)

	// Preflight: the source must be tracked before the move is attempted;
	// pick up fresh content when it is not.
	if !e.model.Tracked(oldAbs) {
		if err := e.model.LoadFile(oldAbs); err != nil {
			return nil, err
		}
	}

	res, err := e.model.Move(ctx, project.MoveRequest{
		OldFilename: oldAbs,
		NewFilename: newAbs,
		Overwrite:   overwrite,
	})
	if err != nil {
		return nil, err
	}

	if err := e.model.Save(ctx); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	return &Moved{
		Result:      res,
		OldFilename: oldAbs,
		NewFilename: newAbs,
	}, nil
}

func (e *Engine) abs(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(e.root, path)
}
