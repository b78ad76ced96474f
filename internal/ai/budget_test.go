package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetIdentityOnShortText(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
	}{
		{"empty", "", 100},
		{"shorter than budget", "hello world", 100},
		{"exactly at budget", strings.Repeat("x", 50), 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.text, Budget(tt.text, tt.max))
			// Idempotent: budgeting the result again changes nothing.
			assert.Equal(t, tt.text, Budget(Budget(tt.text, tt.max), tt.max))
		})
	}
}

func TestBudgetTruncationPreservesHeadAndTail(t *testing.T) {
	text := strings.Repeat("a", 500) + strings.Repeat("z", 500)
	max := 200

	got := Budget(text, max)

	head := max * 7 / 10
	tail := max - head - 20

	assert.LessOrEqual(t, len(got), max+len(truncationMarker))
	assert.Equal(t, text[:head], got[:head])
	assert.Equal(t, text[len(text)-tail:], got[len(got)-tail:])
	assert.Contains(t, got, truncationMarker)
}

// When the budget is too small to reserve tail space, the result is a plain
// head cut with the short marker.
func TestBudgetTinyCeiling(t *testing.T) {
	text := strings.Repeat("abc", 100)
	max := 20 // head=14, tail=-14

	got := Budget(text, max)

	assert.True(t, strings.HasPrefix(got, text[:max]))
	assert.True(t, strings.HasSuffix(got, truncationMarkerShort))
	assert.LessOrEqual(t, len(got), max+len(truncationMarkerShort))
}

func TestBudgetBoundary(t *testing.T) {
	text := strings.Repeat("x", 101)

	// One over the ceiling still truncates.
	got := Budget(text, 100)
	assert.NotEqual(t, text, got)
	assert.Contains(t, got, "[truncated]")
}

func TestOrNone(t *testing.T) {
	assert.Equal(t, "<none>", orNone(""))
	assert.Equal(t, "diff text", orNone("diff text"))
}
