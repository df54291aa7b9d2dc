package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePath turns a user supplied location into an absolute, cleaned
// path. It accepts file:// URIs and a leading "~".
func ResolvePath(location string) (string, error) {
	location = strings.TrimPrefix(location, "file://")
	if location == "" {
		return "", fmt.Errorf("empty path")
	}

	if location == "~" || strings.HasPrefix(location, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		location = filepath.Join(home, strings.TrimPrefix(location, "~"))
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", location, err)
	}
	return abs, nil
}

// isHidden reports whether a path element is a dot file or directory.
func isHidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}
