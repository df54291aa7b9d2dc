package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func sources(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Source)
	}
	sort.Strings(out)
	return out
}

func TestLoader_Load(t *testing.T) {
	t.Run("loads supported files recursively", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "plain text")
		writeFile(t, filepath.Join(dir, "guides", "b.md"), "# Guide\n\nSome **bold** words")
		writeFile(t, filepath.Join(dir, "guides", "c.markdown"), "markdown too")
		writeFile(t, filepath.Join(dir, "main.go"), "package main")

		docs, err := NewLoader().Load(context.Background(), dir)
		require.NoError(t, err)

		assert.Equal(t, []string{
			filepath.Join(dir, "a.txt"),
			filepath.Join(dir, "guides", "b.md"),
			filepath.Join(dir, "guides", "c.markdown"),
		}, sources(docs))
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "visible.txt"), "visible")
		writeFile(t, filepath.Join(dir, ".hidden.txt"), "hidden")
		writeFile(t, filepath.Join(dir, ".git", "notes.md"), "hidden dir")

		docs, err := NewLoader().Load(context.Background(), dir)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].Source, "visible.txt")
	})

	t.Run("normalises by type", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "manuals", "setup.md"), "# Setup Guide\n\nRun `make`.")

		docs, err := NewLoader().Load(context.Background(), dir)
		require.NoError(t, err)
		require.Len(t, docs, 1)

		doc := docs[0]
		assert.NotEmpty(t, doc.ID)
		assert.Equal(t, "Setup Guide", doc.Title)
		assert.Equal(t, "Setup Guide\n\nRun make.", doc.Content)
		assert.Equal(t, []string{"manuals"}, doc.Tags)
	})

	t.Run("single file path", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "one.txt")
		writeFile(t, path, "just one")

		docs, err := NewLoader().Load(context.Background(), path)
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "just one", docs[0].Content)
	})

	t.Run("missing path is reported and others still load", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "ok.txt"), "fine")

		docs, err := NewLoader().Load(context.Background(), filepath.Join(dir, "nope"), dir)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Len(t, docs, 1)
	})

	t.Run("oversized files are reported", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "big.txt"), "0123456789")
		writeFile(t, filepath.Join(dir, "small.txt"), "01")

		docs, err := NewLoader(WithMaxFileSize(5)).Load(context.Background(), dir)
		assert.ErrorIs(t, err, ErrUnsupportedFile)
		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].Source, "small.txt")
	})

	t.Run("cancelled context stops the walk", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewLoader().Load(ctx, dir)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoader_LoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "image.png")
		writeFile(t, path, "binary")

		_, err := NewLoader().LoadFile(context.Background(), path)
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})

	t.Run("custom extensions", func(t *testing.T) {
		path := filepath.Join(dir, "main.go")
		writeFile(t, path, "package main")

		doc, err := NewLoader(WithExtensions("go", ".MD")).LoadFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, "package main", doc.Content)
		assert.Equal(t, "main", doc.Title)
	})

	t.Run("directory", func(t *testing.T) {
		sub := filepath.Join(dir, "folder.md")
		require.NoError(t, os.MkdirAll(sub, 0o755))

		_, err := NewLoader().LoadFile(context.Background(), sub)
		assert.ErrorIs(t, err, ErrUnsupportedFile)
	})
}

func TestLoader_Supports(t *testing.T) {
	l := NewLoader()

	assert.True(t, l.Supports("/a/readme.md"))
	assert.True(t, l.Supports("/a/README.MD"))
	assert.True(t, l.Supports("/a/notes.txt"))
	assert.False(t, l.Supports("/a/.draft.md"))
	assert.False(t, l.Supports("/a/main.go"))
}

func TestDetectMIMEType(t *testing.T) {
	tests := map[string]string{
		"file.md":   "text/markdown",
		"file.MD":   "text/markdown",
		"file.txt":  "text/plain",
		"file.go":   "text/x-go",
		"file.py":   "text/x-python",
		"file.json": "application/json",
		"file.bin":  "application/octet-stream",
		"Makefile":  "application/octet-stream",
	}

	for name, want := range tests {
		assert.Equal(t, want, DetectMIMEType(name), "MIME type mismatch for %s", name)
	}
}
