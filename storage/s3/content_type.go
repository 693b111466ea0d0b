package s3

import (
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// webContentTypes covers what a static site build emits. Browsers refuse
// scripts and stylesheets served with a sniffed text/plain type, so the
// extension wins over content sniffing for these.
var webContentTypes = map[string]string{
	".html":        "text/html; charset=utf-8",
	".htm":         "text/html; charset=utf-8",
	".css":         "text/css; charset=utf-8",
	".js":          "text/javascript; charset=utf-8",
	".mjs":         "text/javascript; charset=utf-8",
	".json":        "application/json",
	".map":         "application/json",
	".webmanifest": "application/manifest+json",
	".svg":         "image/svg+xml",
	".txt":         "text/plain; charset=utf-8",
	".xml":         "application/xml",
	".wasm":        "application/wasm",
	".woff":        "font/woff",
	".woff2":       "font/woff2",
	".ico":         "image/x-icon",
}

// detectContentType picks a Content-Type from the key's extension, falling
// back to sniffing the first bytes with mimetype.
func detectContentType(key string, head io.Reader) string {
	if ct, ok := webContentTypes[strings.ToLower(path.Ext(key))]; ok {
		return ct
	}

	mt, err := mimetype.DetectReader(head)
	if err != nil || mt == nil {
		return "application/octet-stream"
	}
	return mt.String()
}
