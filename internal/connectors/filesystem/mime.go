package filesystem

import (
	"path/filepath"
	"strings"
)

// mimeTypes maps file extensions to the MIME types the normalisers use.
var mimeTypes = map[string]string{
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".txt":      "text/plain",
	".text":     "text/plain",
	".go":       "text/x-go",
	".py":       "text/x-python",
	".rs":       "text/x-rust",
	".java":     "text/x-java",
	".c":        "text/x-c",
	".h":        "text/x-c",
	".cpp":      "text/x-c++",
	".rb":       "text/x-ruby",
	".sh":       "text/x-shellscript",
	".sql":      "text/x-sql",
	".csv":      "text/csv",
	".yaml":     "text/yaml",
	".yml":      "text/yaml",
	".toml":     "text/toml",
	".js":       "text/javascript",
	".ts":       "text/typescript",
	".css":      "text/css",
	".json":     "application/json",
	".xml":      "application/xml",
}

// DefaultExtensions are the file types loaded when no others are set.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// DetectMIMEType returns the MIME type for path based on its extension.
// Unknown extensions are reported as application/octet-stream.
func DetectMIMEType(path string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mt
	}
	return "application/octet-stream"
}
