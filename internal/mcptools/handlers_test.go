//go:build cgo

package mcptools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dusk-indust/codenav/internal/position"
	"github.com/dusk-indust/codenav/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixtureProject writes a small TypeScript tree and returns its root.
func fixtureProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/a.ts": "export const x = 1\n",
		"src/b.ts": "import {x} from './a'\nexport const y = x\n",
	}
	for rel, text := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	}
	return root
}

func TestLineSpecCoercion(t *testing.T) {
	t.Run("absent", func(t *testing.T) {
		got, err := lineSpec(nil)
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("json number", func(t *testing.T) {
		got, err := lineSpec(float64(3))
		require.NoError(t, err)
		assert.Equal(t, position.LineNumber(3), got)
	})

	t.Run("go int", func(t *testing.T) {
		got, err := lineSpec(7)
		require.NoError(t, err)
		assert.Equal(t, position.LineNumber(7), got)
	})

	t.Run("substring", func(t *testing.T) {
		got, err := lineSpec("function greet")
		require.NoError(t, err)
		assert.Equal(t, position.LineText("function greet"), got)
	})

	t.Run("empty string means whole file", func(t *testing.T) {
		got, err := lineSpec("")
		require.NoError(t, err)
		assert.True(t, got.IsZero())
	})

	t.Run("fractional number rejected", func(t *testing.T) {
		_, err := lineSpec(2.5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "positive integer")
	})

	t.Run("zero rejected", func(t *testing.T) {
		_, err := lineSpec(float64(0))
		assert.Error(t, err)
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		_, err := lineSpec(true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "got bool")
	})
}

func TestHoverSymbolValidation(t *testing.T) {
	svc := NewNavService(nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input HoverSymbolInput
		want  string
	}{
		{"missing root", HoverSymbolInput{FilePath: "a.ts", Target: "x"}, "root is required"},
		{"missing file path", HoverSymbolInput{Root: "/p", Target: "x"}, "filePath is required"},
		{"missing target", HoverSymbolInput{Root: "/p", FilePath: "a.ts"}, "target is required"},
		{"bad line", HoverSymbolInput{Root: "/p", FilePath: "a.ts", Target: "x", Line: true}, "number or a string"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.HoverSymbol(ctx, nil, tc.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMoveFileValidation(t *testing.T) {
	svc := NewNavService(nil)
	ctx := context.Background()

	_, _, err := svc.MoveFile(ctx, nil, MoveFileInput{OldPath: "a.ts", NewPath: "b.ts"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is required")

	_, _, err = svc.MoveFile(ctx, nil, MoveFileInput{Root: "/p", OldPath: "a.ts"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oldPath and newPath are required")
}

func TestMoveFileEndToEnd(t *testing.T) {
	svc := NewNavService(nil)
	root := fixtureProject(t)

	_, out, err := svc.MoveFile(context.Background(), nil, MoveFileInput{
		Root:    root,
		OldPath: "src/a.ts",
		NewPath: "src/sub/a.ts",
	})
	require.NoError(t, err)

	assert.Contains(t, out.Message, "Moved src/a.ts to src/sub/a.ts")
	assert.Contains(t, out.Message, "Updated imports in 1 file(s)")
	assert.Contains(t, out.Message, "File moved: src/a.ts → src/sub/a.ts")
	assert.Equal(t, []string{
		filepath.Join(root, "src/sub/a.ts"),
		filepath.Join(root, "src/b.ts"),
	}, out.ChangedFiles)

	data, err := os.ReadFile(filepath.Join(root, "src/b.ts"))
	require.NoError(t, err)
	assert.Equal(t, "import {x} from './sub/a'\nexport const y = x\n", string(data))
}

func TestMoveFileSurfacesMoveErrors(t *testing.T) {
	svc := NewNavService(nil)
	root := fixtureProject(t)

	_, _, err := svc.MoveFile(context.Background(), nil, MoveFileInput{
		Root:    root,
		OldPath: "src/a.ts",
		NewPath: "src/b.ts",
	})
	assert.ErrorIs(t, err, project.ErrDestinationExists)
}

func TestMoveFileProjectOpenerErrors(t *testing.T) {
	svc := NewNavService(nil)
	svc.SetProjectOpener(func(root string) (project.Model, error) {
		return nil, fmt.Errorf("walk failed")
	})

	_, _, err := svc.MoveFile(context.Background(), nil, MoveFileInput{
		Root:    t.TempDir(),
		OldPath: "a.ts",
		NewPath: "b.ts",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open project: walk failed")
}
