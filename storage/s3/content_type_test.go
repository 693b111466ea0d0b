package s3

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		key  string
		body string
		want string
	}{
		{key: "index.html", body: "<html></html>", want: "text/html; charset=utf-8"},
		{key: "assets/app.JS", body: "let a=1", want: "text/javascript; charset=utf-8"},
		{key: "assets/site.css", body: "body{}", want: "text/css; charset=utf-8"},
		{key: "logo.svg", body: "<svg></svg>", want: "image/svg+xml"},
		{key: "fonts/inter.woff2", body: "wOF2", want: "font/woff2"},
		{key: "poster", body: "\x89PNG\r\n\x1a\n", want: "image/png"},
		{key: "blob.bin", body: "\x00\x01\x02\x03", want: "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, detectContentType(tt.key, strings.NewReader(tt.body)))
		})
	}
}
