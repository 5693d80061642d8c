package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateCORSMiddleware(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		middleware := createCORSMiddleware(false, "https://example.com", testLogger())
		assert.Nil(t, middleware)
	})

	t.Run("EnabledWithoutOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "", testLogger())
		assert.Nil(t, middleware)
	})

	t.Run("EnabledWithOrigins", func(t *testing.T) {
		middleware := createCORSMiddleware(true, "https://example.com,https://app.example.com", testLogger())
		assert.NotNil(t, middleware)
	})
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Empty",
			input:    "",
			expected: nil,
		},
		{
			name:     "Single",
			input:    "https://example.com",
			expected: []string{"https://example.com"},
		},
		{
			name:     "MultipleWithSpaces",
			input:    "https://example.com, https://app.example.com ,https://admin.example.com",
			expected: []string{"https://example.com", "https://app.example.com", "https://admin.example.com"},
		},
		{
			name:     "OnlyCommas",
			input:    ",,,",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input))
		})
	}
}
