// Package position turns fuzzy caller-supplied location descriptors ("the
// line containing X", "the identifier named Y") into exact zero-based
// coordinates addressable by a language server.
package position

import (
	"fmt"
	"regexp"
	"strings"
)

// LineSpec narrows the search to one line of a document. The zero value
// means "no line given, search the whole file". A numeric spec wins when
// both fields are somehow set.
type LineSpec struct {
	Number int    // 1-based line number; 0 means unset
	Text   string // substring identifying the line; empty means unset
}

// LineNumber returns a spec addressing a 1-based line number.
func LineNumber(n int) LineSpec { return LineSpec{Number: n} }

// LineText returns a spec addressing the first line containing s.
func LineText(s string) LineSpec { return LineSpec{Text: s} }

// IsZero reports whether no line was specified.
func (s LineSpec) IsZero() bool { return s.Number == 0 && s.Text == "" }

// Descriptor is the caller's fuzzy description of where to act.
type Descriptor struct {
	FilePath string
	Line     LineSpec
	Target   string
}

// Position is a resolved zero-based line/character coordinate. It always
// refers to an existing offset in the text it was resolved against.
type Position struct {
	Line      int
	Character int
}

// ResolutionError describes a failed resolution with enough context for the
// caller to correct the request. Line is 1-based and 0 when no line is
// known.
type ResolutionError struct {
	Path   string
	Line   int
	Reason string
}

func (e *ResolutionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Resolve locates d.Target inside lines per the descriptor's line spec:
//
//   - numeric line: validate range, then find the target on that line
//   - substring line: first line containing the substring, then the target
//   - no line: first line anywhere containing the target
//
// The returned position is zero-based. Failures never guess; a descriptor
// that does not match precisely is an error.
func Resolve(lines []string, d Descriptor) (Position, error) {
	if d.Target == "" {
		return Position{}, &ResolutionError{Path: d.FilePath, Reason: "target must not be empty"}
	}

	switch {
	case d.Line.Number != 0:
		n := d.Line.Number
		if n < 1 || n > len(lines) {
			return Position{}, &ResolutionError{
				Path:   d.FilePath,
				Line:   n,
				Reason: fmt.Sprintf("line %d out of range [1, %d]", n, len(lines)),
			}
		}
		return findOnLine(lines, n-1, d)

	case d.Line.Text != "":
		for i, line := range lines {
			if strings.Contains(line, d.Line.Text) {
				// First match wins; ambiguity is not an error.
				return findOnLine(lines, i, d)
			}
		}
		return Position{}, &ResolutionError{
			Path:   d.FilePath,
			Reason: fmt.Sprintf("no line containing %q", d.Line.Text),
		}

	default:
		for i, line := range lines {
			if strings.Contains(line, d.Target) {
				return Position{Line: i, Character: indexOfSymbol(line, d.Target)}, nil
			}
		}
		return Position{}, &ResolutionError{
			Path:   d.FilePath,
			Reason: fmt.Sprintf("target %q not found in file", d.Target),
		}
	}
}

// findOnLine locates the target on the already-chosen line index.
func findOnLine(lines []string, idx int, d Descriptor) (Position, error) {
	col := indexOfSymbol(lines[idx], d.Target)
	if col < 0 {
		return Position{}, &ResolutionError{
			Path:   d.FilePath,
			Line:   idx + 1,
			Reason: fmt.Sprintf("symbol %q not found on line", d.Target),
		}
	}
	return Position{Line: idx, Character: col}, nil
}

// indexOfSymbol returns the character index of target in line, preferring a
// whole-token occurrence (word-boundary delimited) over a raw substring one,
// so that "foo" lands on a standalone foo rather than inside foobar when
// both appear. Returns -1 when the target does not occur at all.
func indexOfSymbol(line, target string) int {
	if re, err := regexp.Compile(`\b` + regexp.QuoteMeta(target) + `\b`); err == nil {
		if loc := re.FindStringIndex(line); loc != nil {
			return loc[0]
		}
	}
	return strings.Index(line, target)
}
