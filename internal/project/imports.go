package project

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// sourceExtensions are the module file extensions a bare specifier may
// omit, in resolution order.
var sourceExtensions = []string{".ts", ".tsx", ".js", ".mjs"}

// importRef is one import-like specifier found in a source file: static
// imports, re-exports, require calls, and dynamic imports. InnerStart and
// InnerEnd delimit the specifier text inside its quotes so a rewrite can
// splice the new path without touching the surrounding statement.
type importRef struct {
	Specifier  string
	InnerStart uint
	InnerEnd   uint
	Row        uint // zero-based line of the statement
}

// scanImports parses source with the TypeScript grammar (TSX variant for
// .tsx files) and collects every import-like specifier with its byte range.
func scanImports(path string, source []byte) ([]importRef, error) {
	grammar := tree_sitter_typescript.LanguageTypescript()
	if strings.HasSuffix(path, ".tsx") {
		grammar = tree_sitter_typescript.LanguageTSX()
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tree_sitter.NewLanguage(grammar)); err != nil {
		return nil, fmt.Errorf("set language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse %s: nil tree", path)
	}
	defer tree.Close()

	var refs []importRef
	cursor := tree.RootNode().Walk()
	defer cursor.Close()
	collectImports(cursor, source, &refs)
	return refs, nil
}

func collectImports(cursor *tree_sitter.TreeCursor, source []byte, refs *[]importRef) {
	node := cursor.Node()

	switch node.Kind() {
	case "import_statement", "export_statement":
		if src := node.ChildByFieldName("source"); src != nil {
			appendStringRef(src, source, refs)
		}

	case "call_expression":
		if ref := callSpecifier(node, source); ref != nil {
			*refs = append(*refs, *ref)
		}
	}

	if cursor.GotoFirstChild() {
		collectImports(cursor, source, refs)
		for cursor.GotoNextSibling() {
			collectImports(cursor, source, refs)
		}
		cursor.GotoParent()
	}
}

// callSpecifier extracts the string argument of require(...) and dynamic
// import(...) calls.
func callSpecifier(node *tree_sitter.Node, source []byte) *importRef {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return nil
	}
	switch fn.Kind() {
	case "identifier":
		if fn.Utf8Text(source) != "require" {
			return nil
		}
	case "import":
		// dynamic import()
	default:
		return nil
	}

	args := node.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		if child != nil && child.Kind() == "string" {
			var refs []importRef
			appendStringRef(child, source, &refs)
			if len(refs) == 1 {
				return &refs[0]
			}
			return nil
		}
	}
	return nil
}

// appendStringRef records the inner text of a string literal node. The
// quote characters are one byte each, so the inner range is the node range
// shrunk by one on each side.
func appendStringRef(str *tree_sitter.Node, source []byte, refs *[]importRef) {
	start, end := str.StartByte(), str.EndByte()
	if end <= start+2 {
		return // empty literal
	}
	*refs = append(*refs, importRef{
		Specifier:  string(source[start+1 : end-1]),
		InnerStart: start + 1,
		InnerEnd:   end - 1,
		Row:        str.StartPosition().Row,
	})
}

// resolveSpecifier returns the absolute path a relative specifier points at
// when resolved from fromDir, extension left as written. Non-relative
// specifiers (package imports) return "".
func resolveSpecifier(fromDir, spec string) string {
	if !strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../") {
		return ""
	}
	return filepath.Clean(filepath.Join(fromDir, filepath.FromSlash(spec)))
}

// refersTo reports whether a resolved specifier path addresses target,
// allowing the usual omitted extension and /index forms.
func refersTo(resolved, target string) bool {
	if resolved == "" {
		return false
	}
	if resolved == target {
		return true
	}
	for _, ext := range sourceExtensions {
		if resolved+ext == target {
			return true
		}
		if filepath.Join(resolved, "index"+ext) == target {
			return true
		}
	}
	return false
}

// relativeSpecifier builds the import specifier for target as written from
// fromDir: slash-separated, "./"-prefixed when not ascending, and with the
// extension dropped unless keepExt is set.
func relativeSpecifier(fromDir, target string, keepExt bool) string {
	rel, err := filepath.Rel(fromDir, target)
	if err != nil {
		rel = target
	}
	rel = filepath.ToSlash(rel)
	if !keepExt {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// specifierKeepsExtension reports whether the written specifier spells out
// a known source extension, so the rewrite preserves that style.
func specifierKeepsExtension(spec string) bool {
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(spec, ext) {
			return true
		}
	}
	return false
}
