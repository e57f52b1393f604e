package lsp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hoverWith(contents string) *Hover {
	return &Hover{Contents: json.RawMessage(contents)}
}

func TestHoverTextNormalization(t *testing.T) {
	// The same information arrives in three protocol shapes; all must
	// flatten to the identical string.
	const want = "const bar: number"

	t.Run("bare string", func(t *testing.T) {
		assert.Equal(t, want, hoverWith(`"const bar: number"`).Text())
	})

	t.Run("single-element array", func(t *testing.T) {
		assert.Equal(t, want, hoverWith(`["const bar: number"]`).Text())
	})

	t.Run("markup object", func(t *testing.T) {
		assert.Equal(t, want,
			hoverWith(`{"kind": "markdown", "value": "const bar: number"}`).Text())
	})

	t.Run("marked-string fragment in array", func(t *testing.T) {
		assert.Equal(t, want,
			hoverWith(`[{"language": "typescript", "value": "const bar: number"}]`).Text())
	})
}

func TestHoverTextJoinsFragments(t *testing.T) {
	h := hoverWith(`["const bar: number", {"language": "markdown", "value": "A counter."}]`)
	assert.Equal(t, "const bar: number\nA counter.", h.Text())
}

func TestHoverTextEdgeCases(t *testing.T) {
	t.Run("null contents", func(t *testing.T) {
		assert.Equal(t, "", hoverWith(`null`).Text())
	})

	t.Run("empty contents", func(t *testing.T) {
		assert.Equal(t, "", (&Hover{}).Text())
	})

	t.Run("empty array", func(t *testing.T) {
		assert.Equal(t, "", hoverWith(`[]`).Text())
	})

	t.Run("array skips valueless fragments", func(t *testing.T) {
		assert.Equal(t, "x", hoverWith(`["", "x", {"language": "ts"}]`).Text())
	})

	t.Run("unrecognized shape falls back to raw text", func(t *testing.T) {
		assert.Equal(t, "42", hoverWith(`42`).Text())
	})
}
