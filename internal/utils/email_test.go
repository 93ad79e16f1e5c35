package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"no-reply@sp88.com", "no-reply@sp88.com"},
		{`"MyShip" <no-reply@sp88.com>`, "no-reply@sp88.com"},
		{"MyShip <no-reply@sp88.com>", "no-reply@sp88.com"},
		{"  no-reply@sp88.com  ", "no-reply@sp88.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExtractAddress(tt.input))
	}
}

func TestExtractDomainFromEmail(t *testing.T) {
	assert.Equal(t, "sp88.com", ExtractDomainFromEmail("no-reply@sp88.com"))
	assert.Equal(t, "sp88.com", ExtractDomainFromEmail("MyShip <no-reply@SP88.com>"))
	assert.Equal(t, "", ExtractDomainFromEmail("not-an-address"))
	assert.Equal(t, "", ExtractDomainFromEmail(""))
}
