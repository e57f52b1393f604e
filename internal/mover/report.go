package mover

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dusk-indust/codenav/internal/project"
	"golang.org/x/sync/errgroup"
)

// placeholderLine stands in when a changed file yields no recognizable
// import line; every changed file gets a non-empty block either way.
const placeholderLine = "Import statements updated"

// importLinePattern matches import-like statements: ES imports and
// re-exports ("import ... from 'x'", "export ... from 'x'") and require
// calls. Capture group 1 is the quoted specifier.
var importLinePattern = regexp.MustCompile(`(?:import|from|require)\s*\(?\s*['"]([^'"]+)['"]`)

// FileReport is the derived change block for one file.
type FileReport struct {
	Path  string   // absolute path of the changed file
	Lines []string // diff fragment lines, or the generic placeholder
}

// Report re-derives a best-effort diff for every changed file other than
// the moved one. It does not see the edits the project model actually
// performed; it re-reads each file's current text and reconstructs what the
// old import line plausibly looked like. The per-file scans are independent
// and read-only, so they run concurrently; one failed read degrades that
// file's block to the placeholder rather than failing the report.
func (e *Engine) Report(ctx context.Context, m *Moved) []FileReport {
	var importers []string
	for _, path := range m.Result.ChangedFiles {
		if path != m.NewFilename {
			importers = append(importers, path)
		}
	}

	reports := make([]FileReport, len(importers))
	g, _ := errgroup.WithContext(ctx)
	for i, path := range importers {
		g.Go(func() error {
			reports[i] = FileReport{Path: path, Lines: deriveFragment(path, m)}
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; degraded blocks stand in

	return reports
}

// deriveFragment scans one changed file for import lines that plausibly
// reference the moved file and builds unified-diff-style fragments for
// them.
func deriveFragment(path string, m *Moved) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return []string{placeholderLine}
	}

	fileDir := filepath.Dir(path)
	var fragment []string
	for i, line := range strings.Split(string(data), "\n") {
		match := importLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		spec := match[1]
		if !plausiblyRefersTo(fileDir, spec, m.NewFilename) {
			continue
		}

		// Substitute the computed old relative path for the new one to
		// reconstruct the pre-move line. Heuristic: aliasing or multiple
		// import styles can make this imprecise.
		oldLine := strings.Replace(line, spec, oldSpecifier(fileDir, m.OldFilename, spec), 1)
		fragment = append(fragment,
			fmt.Sprintf("@@ -%d,1 +%d,1 @@", i+1, i+1),
			"- "+oldLine,
			"+ "+line,
		)
	}

	if len(fragment) == 0 {
		return []string{placeholderLine}
	}
	return fragment
}

// plausiblyRefersTo reports whether an import specifier looks like a
// reference to the moved file: either its resolved path equals the new
// location, or the new file's basename (without extension) occurs in the
// specifier text.
func plausiblyRefersTo(fileDir, spec, newFilename string) bool {
	newBase := strings.TrimSuffix(filepath.Base(newFilename), filepath.Ext(newFilename))
	if strings.Contains(spec, newBase) {
		return true
	}
	if strings.HasPrefix(spec, ".") {
		resolved := filepath.Clean(filepath.Join(fileDir, filepath.FromSlash(spec)))
		noExt := strings.TrimSuffix(newFilename, filepath.Ext(newFilename))
		return resolved == newFilename || resolved == noExt
	}
	return false
}

// oldSpecifier computes the relative specifier that would have addressed
// the moved file's old location from fileDir, matching the extension style
// of the specifier currently on the line.
func oldSpecifier(fileDir, oldFilename, currentSpec string) string {
	rel, err := filepath.Rel(fileDir, oldFilename)
	if err != nil {
		rel = oldFilename
	}
	rel = filepath.ToSlash(rel)
	if filepath.Ext(currentSpec) == "" {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// Format renders the caller-facing move report: a summary line, then one
// block per changed file. The moved file renders as a relocation note;
// every other file renders as its project-relative path followed by its
// indented fragment lines.
func (e *Engine) Format(m *Moved, reports []FileReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. Updated imports in %d file(s).\n\nChanges:\n",
		m.Result.Message, len(reports))

	byPath := make(map[string]FileReport, len(reports))
	for _, r := range reports {
		byPath[r.Path] = r
	}

	for _, path := range m.Result.ChangedFiles {
		if path == m.NewFilename {
			fmt.Fprintf(&b, "File moved: %s → %s\n",
				project.RelPath(e.root, m.OldFilename), project.RelPath(e.root, m.NewFilename))
			continue
		}
		fmt.Fprintf(&b, "%s\n", project.RelPath(e.root, path))
		for _, line := range byPath[path].Lines {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
