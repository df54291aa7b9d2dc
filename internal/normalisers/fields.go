package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Metadata keys a loader may set on a raw document.
const (
	MetaID    = "id"
	MetaTitle = "title"
	MetaTags  = "tags"
)

// DocumentID returns the loader supplied id, or a fresh UUID.
func DocumentID(raw *domain.RawDocument) string {
	if id, ok := raw.Metadata[MetaID].(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Title returns the loader supplied title, or one derived from the URI.
func Title(raw *domain.RawDocument) string {
	if title, ok := raw.Metadata[MetaTitle].(string); ok && title != "" {
		return title
	}
	return TitleFromURI(raw.URI)
}

// TitleFromURI turns "/notes/release_plan-2024.md" into "release plan 2024".
func TitleFromURI(uri string) string {
	filename := filepath.Base(uri)
	filename = strings.TrimSuffix(filename, filepath.Ext(filename))
	filename = strings.ReplaceAll(filename, "_", " ")
	return strings.ReplaceAll(filename, "-", " ")
}

// Tags reads the tags a loader attached to a raw document.
func Tags(metadata map[string]any) []string {
	switch v := metadata[MetaTags].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}
