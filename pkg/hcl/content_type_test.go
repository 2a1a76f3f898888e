package hcl

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		expected    string
	}{
		{name: "hcl header", contentType: "application/vnd.hcl", body: `{}`, expected: ContentTypeHCL},
		{name: "json header with charset", contentType: "application/json; charset=utf-8", body: `lesson "a" {}`, expected: ContentTypeJSON},
		{name: "sniff json object", body: `  {"intervals": {}}`, expected: ContentTypeJSON},
		{name: "sniff json array", body: `[{"lesson_id": "a"}]`, expected: ContentTypeJSON},
		{name: "sniff hcl", contentType: "text/plain", body: `lesson "a" { window = [0, 1] }`, expected: ContentTypeHCL},
		{name: "garbage defaults to json", body: `lesson "a" {`, expected: ContentTypeJSON},
		{name: "empty body", body: ``, expected: ContentTypeJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/lessons/a/appearance", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			contentType, err := DetectContentType(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, contentType)

			// body must still be readable
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestIsHCLBasedOnExtension(t *testing.T) {
	assert.True(t, IsHCLBasedOnExtension("lessons.hcl"))
	assert.False(t, IsHCLBasedOnExtension("lessons.json"))
}
