package mcptools

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/dusk-indust/codenav/internal/mover"
	"github.com/dusk-indust/codenav/internal/position"
	"github.com/dusk-indust/codenav/internal/project"
	"github.com/dusk-indust/codenav/internal/session"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NavService holds the session coordinator and project opener used by MCP
// tool handlers.
type NavService struct {
	coordinator *session.Coordinator
	excludeDirs []string

	// openProject builds the project model for a move operation. A seam so
	// tests can substitute a pre-built model.
	openProject func(root string) (project.Model, error)
}

// NewNavService creates a NavService that queries through coord and opens
// a fresh project model per move request.
func NewNavService(coord *session.Coordinator) *NavService {
	s := &NavService{coordinator: coord}
	s.openProject = func(root string) (project.Model, error) {
		return project.Open(root, s.excludeDirs)
	}
	return s
}

// SetExcludeDirs sets the directories skipped when tracking project files.
func (s *NavService) SetExcludeDirs(dirs []string) {
	s.excludeDirs = dirs
}

// SetProjectOpener replaces the project-model factory. Used by tests.
func (s *NavService) SetProjectOpener(open func(root string) (project.Model, error)) {
	s.openProject = open
}

// HoverSymbol resolves a fuzzy location descriptor to an exact position and
// queries the language server for hover information there.
func (s *NavService) HoverSymbol(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input HoverSymbolInput,
) (*mcp.CallToolResult, HoverSymbolOutput, error) {
	if input.Root == "" {
		return nil, HoverSymbolOutput{}, fmt.Errorf("root is required")
	}
	if input.FilePath == "" {
		return nil, HoverSymbolOutput{}, fmt.Errorf("filePath is required")
	}
	if input.Target == "" {
		return nil, HoverSymbolOutput{}, fmt.Errorf("target is required")
	}

	line, err := lineSpec(input.Line)
	if err != nil {
		return nil, HoverSymbolOutput{}, err
	}

	res, err := s.coordinator.Hover(ctx, input.Root, position.Descriptor{
		FilePath: input.FilePath,
		Line:     line,
		Target:   input.Target,
	})
	if err != nil {
		return nil, HoverSymbolOutput{}, err
	}

	return nil, HoverSymbolOutput{
		Message: res.Message,
		Hover:   res.Hover,
	}, nil
}

// MoveFile relocates a file, repairs import statements across the project,
// and reports what changed.
func (s *NavService) MoveFile(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MoveFileInput,
) (*mcp.CallToolResult, MoveFileOutput, error) {
	if input.Root == "" {
		return nil, MoveFileOutput{}, fmt.Errorf("root is required")
	}
	if input.OldPath == "" || input.NewPath == "" {
		return nil, MoveFileOutput{}, fmt.Errorf("oldPath and newPath are required")
	}

	root, err := filepath.Abs(input.Root)
	if err != nil {
		return nil, MoveFileOutput{}, fmt.Errorf("resolve root: %w", err)
	}

	model, err := s.openProject(root)
	if err != nil {
		return nil, MoveFileOutput{}, fmt.Errorf("open project: %w", err)
	}

	engine := mover.NewEngine(model, root)
	moved, err := engine.Move(ctx, input.OldPath, input.NewPath, input.Overwrite)
	if err != nil {
		return nil, MoveFileOutput{}, err
	}

	reports := engine.Report(ctx, moved)
	return nil, MoveFileOutput{
		Message:      engine.Format(moved, reports),
		ChangedFiles: moved.Result.ChangedFiles,
	}, nil
}

// lineSpec coerces the untyped line field of a hover request into a
// LineSpec: JSON numbers address a 1-based line, strings identify the line
// by substring, absent means whole-file search.
func lineSpec(v any) (position.LineSpec, error) {
	switch n := v.(type) {
	case nil:
		return position.LineSpec{}, nil
	case float64:
		if n != math.Trunc(n) || n < 1 {
			return position.LineSpec{}, fmt.Errorf("line must be a positive integer, got %v", n)
		}
		return position.LineNumber(int(n)), nil
	case int:
		if n < 1 {
			return position.LineSpec{}, fmt.Errorf("line must be a positive integer, got %d", n)
		}
		return position.LineNumber(n), nil
	case string:
		if n == "" {
			return position.LineSpec{}, nil
		}
		return position.LineText(n), nil
	default:
		return position.LineSpec{}, fmt.Errorf("line must be a number or a string, got %T", v)
	}
}
