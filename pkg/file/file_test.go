package file_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/docvault/pkg/file"
)

func TestDetectMIMEType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		head     []byte
		expected string
	}{
		{"empty", nil, file.DefaultMIMEType},
		{"pdf", []byte("%PDF-1.4\n"), "application/pdf"},
		{"plain text", []byte("hello world"), "text/plain; charset=utf-8"},
		{"png", []byte("\x89PNG\r\n\x1a\n"), "image/png"},
		{"binary", bytes.Repeat([]byte{0x00, 0x01, 0x02}, 10), "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, file.DetectMIMEType(tt.head))
		})
	}
}
