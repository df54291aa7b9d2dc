// Package filesystem loads and watches local text files.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/plaintext"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// DefaultMaxFileSize is the largest file read by default.
const DefaultMaxFileSize int64 = 10 << 20

// ErrUnsupportedFile is returned for files the loader does not handle.
var ErrUnsupportedFile = errors.New("unsupported file")

// Loader reads documents from local paths.
type Loader struct {
	registry    *normalisers.Registry
	extensions  map[string]bool
	maxFileSize int64
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExtensions replaces the set of loaded file extensions.
func WithExtensions(exts ...string) LoaderOption {
	return func(l *Loader) {
		l.extensions = extensionSet(exts)
	}
}

// WithMaxFileSize sets the largest file that is read.
func WithMaxFileSize(n int64) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.maxFileSize = n
		}
	}
}

// WithRegistry replaces the normaliser registry.
func WithRegistry(r *normalisers.Registry) LoaderOption {
	return func(l *Loader) {
		if r != nil {
			l.registry = r
		}
	}
}

// NewLoader creates a loader that handles markdown and plain text.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		registry:    normalisers.NewRegistry(markdown.New(), plaintext.New()),
		extensions:  extensionSet(DefaultExtensions),
		maxFileSize: DefaultMaxFileSize,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Supports reports whether path has a loaded extension and is not hidden.
func (l *Loader) Supports(path string) bool {
	if isHidden(filepath.Base(path)) {
		return false
	}
	return l.extensions[strings.ToLower(filepath.Ext(path))]
}

// Load reads every supported file under paths. Hidden files and
// directories are skipped. Failures are joined into the returned error
// and do not stop the walk.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]domain.Document, error) {
	var (
		docs []domain.Document
		errs []error
	)

	for _, p := range paths {
		root, err := ResolvePath(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		info, err := os.Stat(root)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", root, err))
			continue
		}
		if !info.IsDir() {
			doc, err := l.LoadFile(ctx, root)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			docs = append(docs, *doc)
			continue
		}

		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", path, err))
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if path != root && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() || !l.Supports(path) {
				return nil
			}

			doc, err := l.LoadFile(ctx, path)
			if err != nil {
				errs = append(errs, err)
				return nil
			}
			docs = append(docs, *doc)
			return nil
		})
		if walkErr != nil {
			return docs, walkErr
		}
	}

	logger.Debug("loaded %d documents from %d paths", len(docs), len(paths))
	return docs, errors.Join(errs...)
}

// LoadFile reads a single file. The document source is the absolute path
// and its tag is the name of the parent directory.
func (l *Loader) LoadFile(ctx context.Context, path string) (*domain.Document, error) {
	abs, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	if !l.Supports(abs) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, abs)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrUnsupportedFile, abs)
	}
	if info.Size() > l.maxFileSize {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrUnsupportedFile, abs, info.Size(), l.maxFileSize)
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	raw := &domain.RawDocument{
		URI:      abs,
		MIMEType: DetectMIMEType(abs),
		Content:  content,
		Metadata: map[string]any{},
	}
	if tag := parentTag(abs); tag != "" {
		raw.Metadata[normalisers.MetaTags] = []string{tag}
	}

	doc, err := l.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", abs, err)
	}
	return doc, nil
}

func parentTag(path string) string {
	parent := filepath.Base(filepath.Dir(path))
	if parent == "." || parent == string(filepath.Separator) {
		return ""
	}
	return parent
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}
