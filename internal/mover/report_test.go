//go:build cgo

package mover

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dusk-indust/codenav/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportDerivesFragments(t *testing.T) {
	engine, root := newFixture(t, map[string]string{
		"src/a.ts": "export const x = 1\n",
		"src/b.ts": "import {x} from './a'\nexport const y = x\n",
		"lib/c.ts": "const a = require('../src/a')\n",
	})
	ctx := context.Background()

	moved, err := engine.Move(ctx, "src/a.ts", "src/sub/a.ts", false)
	require.NoError(t, err)

	reports := engine.Report(ctx, moved)
	require.Len(t, reports, 2, "every changed file except the moved one gets a block")

	byPath := make(map[string][]string, len(reports))
	for _, r := range reports {
		byPath[r.Path] = r.Lines
	}

	assert.Equal(t, []string{
		"@@ -1,1 +1,1 @@",
		"- import {x} from './a'",
		"+ import {x} from './sub/a'",
	}, byPath[filepath.Join(root, "src/b.ts")])

	assert.Equal(t, []string{
		"@@ -1,1 +1,1 @@",
		"- const a = require('../src/a')",
		"+ const a = require('../src/sub/a')",
	}, byPath[filepath.Join(root, "lib/c.ts")])
}

func TestReportDegradesToPlaceholder(t *testing.T) {
	engine := NewEngine(nil, "/proj")

	t.Run("unreadable file", func(t *testing.T) {
		m := &Moved{
			Result: &project.MoveResult{
				ChangedFiles: []string{"/proj/new.ts", "/proj/ghost.ts"},
			},
			OldFilename: "/proj/old.ts",
			NewFilename: "/proj/new.ts",
		}

		reports := engine.Report(context.Background(), m)
		require.Len(t, reports, 1)
		assert.Equal(t, []string{"Import statements updated"}, reports[0].Lines)
	})

	t.Run("no recognizable import line", func(t *testing.T) {
		engine, root := newFixture(t, map[string]string{
			"a.ts": "export const x = 1\n",
		})
		m := &Moved{
			Result: &project.MoveResult{
				ChangedFiles: []string{filepath.Join(root, "a.ts")},
			},
			OldFilename: filepath.Join(root, "old.ts"),
			NewFilename: filepath.Join(root, "new.ts"),
		}

		reports := engine.Report(context.Background(), m)
		require.Len(t, reports, 1)
		assert.Equal(t, []string{"Import statements updated"}, reports[0].Lines)
	})
}

func TestPlausiblyRefersTo(t *testing.T) {
	target := "/proj/src/sub/counter.ts"

	assert.True(t, plausiblyRefersTo("/proj/src", "./sub/counter", target),
		"basename match")
	assert.True(t, plausiblyRefersTo("/proj/src", "./sub/counter.ts", target),
		"resolved path with extension")
	assert.False(t, plausiblyRefersTo("/proj/src", "./widget", target))
	assert.False(t, plausiblyRefersTo("/proj/src", "lodash", target),
		"package imports never refer to a project file")
}

func TestOldSpecifier(t *testing.T) {
	assert.Equal(t, "./counter",
		oldSpecifier("/proj/src", "/proj/src/counter.ts", "./sub/counter"))
	assert.Equal(t, "../src/counter",
		oldSpecifier("/proj/lib", "/proj/src/counter.ts", "../src/sub/counter"))
	assert.Equal(t, "./counter.mjs",
		oldSpecifier("/proj/src", "/proj/src/counter.mjs", "./sub/counter.mjs"),
		"extension style of the current line is preserved")
}

func TestFormat(t *testing.T) {
	engine, _ := newFixture(t, map[string]string{
		"src/a.ts": "export const x = 1\n",
		"src/b.ts": "import {x} from './a'\n",
	})
	ctx := context.Background()

	moved, err := engine.Move(ctx, "src/a.ts", "src/sub/a.ts", false)
	require.NoError(t, err)
	out := engine.Format(moved, engine.Report(ctx, moved))

	want := strings.Join([]string{
		"Moved src/a.ts to src/sub/a.ts. Updated imports in 1 file(s).",
		"",
		"Changes:",
		"File moved: src/a.ts → src/sub/a.ts",
		"src/b.ts",
		"  @@ -1,1 +1,1 @@",
		"  - import {x} from './a'",
		"  + import {x} from './sub/a'",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestFormatNoImporters(t *testing.T) {
	engine, _ := newFixture(t, map[string]string{
		"solo.ts": "export const s = 1\n",
	})
	ctx := context.Background()

	moved, err := engine.Move(ctx, "solo.ts", "moved.ts", false)
	require.NoError(t, err)
	out := engine.Format(moved, engine.Report(ctx, moved))

	want := strings.Join([]string{
		"Moved solo.ts to moved.ts. Updated imports in 0 file(s).",
		"",
		"Changes:",
		"File moved: solo.ts → moved.ts",
	}, "\n")
	assert.Equal(t, want, out)
}
