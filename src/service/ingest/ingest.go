package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"code-atlas/src/config"
	"code-atlas/src/model"
	"code-atlas/src/util"
)

// Result is the flattened submission plus everything dropped along the way
type Result struct {
	Files   []model.SubmittedFile
	Skipped []model.SkippedFile
}

func (r *Result) skip(p, reason, detail string) {
	r.Skipped = append(r.Skipped, model.SkippedFile{Path: p, Reason: reason, Detail: detail})
}

// Ingestor expands archives and filters the submission down to candidate source files
type Ingestor struct {
	limits     config.LimitsConfig
	exclusions *util.ExclusionMatcher
}

// NewIngestor creates a new ingestor
func NewIngestor(cfg *config.Config) *Ingestor {
	return &Ingestor{
		limits:     cfg.Limits,
		exclusions: util.NewExclusionMatcher(cfg.Exclusions),
	}
}

// Ingest flattens the submission. Zip archives are expanded in place; entries
// with a path already seen keep the first occurrence.
func (i *Ingestor) Ingest(ctx context.Context, files []model.SubmittedFile) (*Result, error) {
	res := &Result{}
	seen := make(map[string]bool)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if IsArchive(f.Name, f.Content) {
			if err := i.expandArchive(ctx, f, res, seen); err != nil {
				return nil, err
			}
			continue
		}

		i.accept(cleanPath(f.Name), f.Content, res, seen)
	}

	util.Debug("Ingested %d files, skipped %d", len(res.Files), len(res.Skipped))
	return res, nil
}

func (i *Ingestor) accept(name string, content []byte, res *Result, seen map[string]bool) {
	switch {
	case name == "":
		return
	case seen[name]:
		util.Debug("Duplicate path %s, keeping first", name)
		return
	case i.exclusions.MatchesFile(name):
		res.skip(name, model.SkipExcluded, "")
		return
	case int64(len(content)) > i.limits.MaxFileBytes:
		res.skip(name, model.SkipResourceExceeded,
			fmt.Sprintf("%d bytes exceeds limit of %d", len(content), i.limits.MaxFileBytes))
		return
	case IsBinary(name, content):
		res.skip(name, model.SkipBinary, "")
		return
	}

	seen[name] = true
	res.Files = append(res.Files, model.SubmittedFile{Name: name, Content: content})
}

func (i *Ingestor) expandArchive(ctx context.Context, archive model.SubmittedFile, res *Result, seen map[string]bool) error {
	if int64(len(archive.Content)) > i.limits.MaxArchiveBytes {
		res.skip(archive.Name, model.SkipResourceExceeded, "archive exceeds size limit")
		return nil
	}

	zr, err := zip.NewReader(bytes.NewReader(archive.Content), int64(len(archive.Content)))
	if err != nil {
		util.Warn("Cannot open archive %s: %v", archive.Name, err)
		res.skip(archive.Name, model.SkipMalformed, err.Error())
		return nil
	}

	var total int64
	entries := 0

	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.FileInfo().IsDir() {
			continue
		}

		entries++
		if entries > i.limits.MaxArchiveEntries {
			res.skip(archive.Name, model.SkipResourceExceeded,
				fmt.Sprintf("more than %d entries, expansion stopped", i.limits.MaxArchiveEntries))
			return nil
		}

		name := cleanPath(entry.Name)
		if name == "" || strings.HasPrefix(name, "../") || name == ".." {
			res.skip(entry.Name, model.SkipMalformed, "entry path escapes archive root")
			continue
		}
		if i.exclusions.MatchesFile(name) {
			res.skip(name, model.SkipExcluded, "")
			continue
		}
		if entry.UncompressedSize64 > uint64(i.limits.MaxFileBytes) {
			res.skip(name, model.SkipResourceExceeded,
				fmt.Sprintf("%d bytes exceeds limit of %d", entry.UncompressedSize64, i.limits.MaxFileBytes))
			continue
		}

		data, err := readEntry(entry, i.limits.MaxFileBytes)
		if err != nil {
			res.skip(name, model.SkipReasonFor(err), err.Error())
			continue
		}

		total += int64(len(data))
		if total > i.limits.MaxArchiveBytes {
			res.skip(archive.Name, model.SkipResourceExceeded, "uncompressed size exceeds limit, expansion stopped")
			return nil
		}

		if IsArchive(name, data) {
			res.skip(name, model.SkipBinary, "nested archive")
			continue
		}
		i.accept(name, data, res, seen)
	}

	util.Debug("Expanded archive %s: %d entries", archive.Name, entries)
	return nil
}

// readEntry reads at most limit bytes; the declared size in the header is not trusted
func readEntry(entry *zip.File, limit int64) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedInput, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: entry exceeds %d bytes", model.ErrResourceExceeded, limit)
	}
	return data, nil
}

func cleanPath(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return ""
	}
	return path.Clean(name)
}
