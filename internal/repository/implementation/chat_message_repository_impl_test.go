package implementation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSessionTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "short content passes through",
			content: "How do I reset my password?",
			want:    "How do I reset my password?",
		},
		{
			name:    "long ascii content truncated with ellipsis",
			content: strings.Repeat("a", 80),
			want:    strings.Repeat("a", 50) + "...",
		},
		{
			name:    "exactly at limit keeps full content",
			content: strings.Repeat("b", 50),
			want:    strings.Repeat("b", 50),
		},
		{
			name:    "multibyte content truncates on rune boundary",
			content: strings.Repeat("日", 80),
			want:    strings.Repeat("日", 50) + "...",
		},
		{
			name:    "multibyte content under the rune limit passes through",
			content: strings.Repeat("é", 40),
			want:    strings.Repeat("é", 40),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sessionTitle(tt.content)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got), "title must stay valid UTF-8")
		})
	}
}
