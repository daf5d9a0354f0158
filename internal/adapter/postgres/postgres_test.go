package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSSLMode(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://u:p@localhost/db?sslmode=require", "require"},
		{"postgres://u:p@localhost/db?sslmode=DISABLE", "disable"},
		{"postgres://u:p@localhost/db", "prefer (default)"},
		{"postgres://%zz", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractSSLMode(tt.url), tt.url)
	}
}

func TestExtractQueryName(t *testing.T) {
	assert.Equal(t, "INSERT", extractQueryName("\ninsert into session_anchors VALUES ($1)"))
	assert.Equal(t, "SELECT", extractQueryName("SELECT anchor FROM session_anchors"))
	assert.Equal(t, "unknown", extractQueryName("  "))
}
