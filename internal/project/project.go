package project

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Compile-time assertion: *Project satisfies Model.
var _ Model = (*Project)(nil)

// Project tracks the source files of one directory tree. Thread-safe via
// sync.RWMutex; all mutation stays in memory until Save.
type Project struct {
	root string

	mu      sync.RWMutex
	files   map[string]*sourceFile // key: absolute path
	removed []string               // old locations deleted on Save
}

type sourceFile struct {
	text  string
	dirty bool
}

// Open walks root and tracks every TypeScript/JavaScript source file,
// skipping .git, node_modules, and the configured exclude directories.
func Open(root string, excludeDirs []string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("project: resolve root: %w", err)
	}

	excludeSet := make(map[string]bool, len(excludeDirs))
	for _, d := range excludeDirs {
		excludeSet[d] = true
	}

	p := &Project{
		root:  absRoot,
		files: make(map[string]*sourceFile),
	}

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() {
			name := d.Name()
			if name == ".git" || name == "node_modules" || excludeSet[name] {
				return filepath.SkipDir
			}
			return nil
		}
		if !isSourceFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil // skip unreadable files
		}
		p.files[path] = &sourceFile{text: string(data)}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("project: walk: %w", walkErr)
	}

	return p, nil
}

// Root returns the absolute project root.
func (p *Project) Root() string {
	return p.root
}

// Tracked reports whether absPath is in the tracked set.
func (p *Project) Tracked(absPath string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.files[absPath]
	return ok
}

// LoadFile reads absPath from disk into the tracked set, replacing any
// previously tracked text.
func (p *Project) LoadFile(absPath string) error {
	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, absPath)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[absPath] = &sourceFile{text: string(data)}
	return nil
}

// Text returns the current in-memory text of a tracked file.
func (p *Project) Text(absPath string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.files[absPath]
	if !ok {
		return "", false
	}
	return f.text, true
}

// Move relocates a tracked file in memory: the file is retracked under its
// new path, every importer's matching specifier is rewritten to resolve at
// the new location, and the moved file's own relative imports are rebased
// onto its new directory. Honors Overwrite for an existing destination.
func (p *Project) Move(_ context.Context, req MoveRequest) (*MoveResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	oldPath, newPath := req.OldFilename, req.NewFilename
	src, ok := p.files[oldPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, oldPath)
	}
	if oldPath == newPath {
		return nil, fmt.Errorf("project: source and destination are the same: %s", oldPath)
	}

	if !req.Overwrite {
		if _, tracked := p.files[newPath]; tracked {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, p.rel(newPath))
		}
		if _, err := os.Stat(newPath); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrDestinationExists, p.rel(newPath))
		}
	}

	// Rewrite importers. Iterate in path order so ChangedFiles is stable.
	// An overwritten destination is skipped: its text is replaced by the
	// moved file below, and it already heads ChangedFiles as the new path.
	paths := make([]string, 0, len(p.files))
	for path := range p.files {
		if path != oldPath && path != newPath {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	var changed []string
	for _, path := range paths {
		f := p.files[path]
		rewritten, n := rewriteReferences(path, f.text, oldPath, newPath)
		if n > 0 {
			f.text = rewritten
			f.dirty = true
			changed = append(changed, path)
		}
	}

	// Rebase the moved file's own relative imports onto its new directory.
	src.text = rebaseImports(oldPath, newPath, src.text)
	src.dirty = true

	delete(p.files, oldPath)
	p.files[newPath] = src
	p.removed = append(p.removed, oldPath)

	return &MoveResult{
		Message:      fmt.Sprintf("Moved %s to %s", p.rel(oldPath), p.rel(newPath)),
		ChangedFiles: append([]string{newPath}, changed...),
	}, nil
}

// Save writes every dirty file to disk (creating destination directories as
// needed) and removes old locations of moved files. Persistence is not
// atomic across files; a crash mid-way can leave some importers rewritten
// and others not.
func (p *Project) Save(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	paths := make([]string, 0, len(p.files))
	for path, f := range p.files {
		if f.dirty {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("project: mkdir for %s: %w", p.rel(path), err)
		}
		if err := os.WriteFile(path, []byte(p.files[path].text), 0o644); err != nil {
			return fmt.Errorf("project: write %s: %w", p.rel(path), err)
		}
		p.files[path].dirty = false
	}

	for _, path := range p.removed {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("project: remove %s: %w", p.rel(path), err)
		}
	}
	p.removed = nil
	return nil
}

// rewriteReferences splices a new relative specifier over every import in
// text (at path) that resolves to oldPath. Returns the updated text and the
// number of rewritten specifiers.
func rewriteReferences(path, text, oldPath, newPath string) (string, int) {
	refs, err := scanImports(path, []byte(text))
	if err != nil {
		return text, 0 // unparseable files keep their text untouched
	}

	fromDir := filepath.Dir(path)
	count := 0
	// Splice back to front so earlier byte offsets stay valid.
	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		if !refersTo(resolveSpecifier(fromDir, ref.Specifier), oldPath) {
			continue
		}
		spec := relativeSpecifier(fromDir, newPath, specifierKeepsExtension(ref.Specifier))
		text = text[:ref.InnerStart] + spec + text[ref.InnerEnd:]
		count++
	}
	return text, count
}

// rebaseImports recomputes the moved file's own relative specifiers so they
// still resolve from the new directory.
func rebaseImports(oldPath, newPath, text string) string {
	refs, err := scanImports(oldPath, []byte(text))
	if err != nil {
		return text
	}

	oldDir := filepath.Dir(oldPath)
	newDir := filepath.Dir(newPath)
	if oldDir == newDir {
		return text
	}

	for i := len(refs) - 1; i >= 0; i-- {
		ref := refs[i]
		resolved := resolveSpecifier(oldDir, ref.Specifier)
		if resolved == "" {
			continue // package import, unaffected by the move
		}
		spec := relativeSpecifier(newDir, resolved, specifierKeepsExtension(ref.Specifier))
		text = text[:ref.InnerStart] + spec + text[ref.InnerEnd:]
	}
	return text
}

// rel renders an absolute path relative to the project root for messages.
func (p *Project) rel(absPath string) string {
	rel, err := filepath.Rel(p.root, absPath)
	if err != nil {
		return absPath
	}
	return filepath.ToSlash(rel)
}

// isSourceFile reports whether path has a tracked source extension.
func isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, known := range sourceExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// RelPath renders absPath relative to root with forward slashes, falling
// back to the absolute path when they do not share a prefix.
func RelPath(root, absPath string) string {
	rel, err := filepath.Rel(root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return absPath
	}
	return filepath.ToSlash(rel)
}
