package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-atlas/src/config"
	"code-atlas/src/model"
)

func buildZip(t *testing.T, entries map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func names(files []model.SubmittedFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestIngestExpandsArchiveAndDropsIgnoredFolders(t *testing.T) {
	entries := map[string]string{
		"src/app.py":                  "print('hi')\n",
		"node_modules/lib/index.js":   "module.exports = 1\n",
		"pkg/__pycache__/app.pyc":     "\x00\x01",
		"assets/logo.png":             "fake",
		"src/":                        "",
	}
	order := []string{"src/", "src/app.py", "node_modules/lib/index.js", "pkg/__pycache__/app.pyc", "assets/logo.png"}
	archive := buildZip(t, entries, order)

	res, err := NewIngestor(config.DefaultConfig()).Ingest(context.Background(), []model.SubmittedFile{
		{Name: "project.zip", Content: archive},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"src/app.py"}, names(res.Files))

	reasons := map[string]string{}
	for _, s := range res.Skipped {
		reasons[s.Path] = s.Reason
	}
	assert.Equal(t, model.SkipExcluded, reasons["node_modules/lib/index.js"])
	assert.Equal(t, model.SkipExcluded, reasons["pkg/__pycache__/app.pyc"])
	assert.Equal(t, model.SkipBinary, reasons["assets/logo.png"])
}

func TestIngestDuplicatePathsKeepFirst(t *testing.T) {
	res, err := NewIngestor(config.DefaultConfig()).Ingest(context.Background(), []model.SubmittedFile{
		{Name: "a.go", Content: []byte("package a\n")},
		{Name: "./a.go", Content: []byte("package b\n")},
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "package a\n", string(res.Files[0].Content))
}

func TestIngestLimits(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Limits.MaxFileBytes = 16
	cfg.Limits.MaxArchiveEntries = 2

	big := bytes.Repeat([]byte("x"), 17)
	entries := map[string]string{"a.sh": "echo a\n", "b.sh": "echo b\n", "c.sh": "echo c\n"}
	archive := buildZip(t, entries, []string{"a.sh", "b.sh", "c.sh"})

	res, err := NewIngestor(cfg).Ingest(context.Background(), []model.SubmittedFile{
		{Name: "big.py", Content: big},
		{Name: "bundle.zip", Content: archive},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.sh", "b.sh"}, names(res.Files))
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, model.SkippedFile{Path: "big.py", Reason: model.SkipResourceExceeded, Detail: "17 bytes exceeds limit of 16"}, res.Skipped[0])
	assert.Equal(t, "bundle.zip", res.Skipped[1].Path)
	assert.Equal(t, model.SkipResourceExceeded, res.Skipped[1].Reason)
}

func TestIngestCorruptArchive(t *testing.T) {
	res, err := NewIngestor(config.DefaultConfig()).Ingest(context.Background(), []model.SubmittedFile{
		{Name: "broken.zip", Content: []byte("not a zip at all")},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, model.SkipMalformed, res.Skipped[0].Reason)
}

func TestIngestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewIngestor(config.DefaultConfig()).Ingest(ctx, []model.SubmittedFile{
		{Name: "a.go", Content: []byte("package a\n")},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsBinary(t *testing.T) {
	assert.True(t, IsBinary("x.class", nil))
	assert.True(t, IsBinary("noext", []byte{0x7F, 0x45, 0x4C, 0x46, 0x02}))
	assert.False(t, IsBinary("main.go", []byte("package main\x00\n")))
	assert.False(t, IsBinary("app.min.js", []byte("var a=1")))
}
