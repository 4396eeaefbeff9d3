package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{
			name:     "lowercases and trims",
			raw:      "  John.Doe@Example.COM ",
			expected: "john.doe@example.com",
			ok:       true,
		},
		{
			name:     "already normalized",
			raw:      "jane@example.com",
			expected: "jane@example.com",
			ok:       true,
		},
		{
			name: "empty",
			raw:  "",
			ok:   false,
		},
		{
			name: "whitespace only",
			raw:  "   ",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeEmail(tt.raw)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		ok       bool
	}{
		{
			name:     "formatted US number",
			raw:      "(555) 123-4567",
			expected: "5551234567",
			ok:       true,
		},
		{
			name:     "with country code and plus",
			raw:      "+1 555 123 4567",
			expected: "5551234567",
			ok:       true,
		},
		{
			name:     "bare ten digits",
			raw:      "5551234567",
			expected: "5551234567",
			ok:       true,
		},
		{
			name:     "eleven digits starting with one",
			raw:      "15551234567",
			expected: "5551234567",
			ok:       true,
		},
		{
			name: "eleven digits not starting with one",
			raw:  "25551234567",
			ok:   false,
		},
		{
			name: "too short",
			raw:  "555123456",
			ok:   false,
		},
		{
			name: "too long",
			raw:  "555123456789",
			ok:   false,
		},
		{
			name: "letters only",
			raw:  "call me maybe",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizePhone(tt.raw)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalizePhone_EquivalentForms(t *testing.T) {
	forms := []string{
		"+1 (555) 123-4567",
		"1-555-123-4567",
		"555.123.4567",
		"5551234567",
	}

	for _, form := range forms {
		got, ok := NormalizePhone(form)

		assert.True(t, ok, form)
		assert.Equal(t, "5551234567", got, form)
	}
}
