package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Jakarta", "%Jakarta%"},
		{"_", `%\_%`},
		{"100%", `%100\%%`},
		{`C:\cars`, `%C:\\cars%`},
		{"", "%%"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.input))
		})
	}
}
