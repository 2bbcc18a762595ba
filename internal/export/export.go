// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes one JPG per page, frame or image of every batch
// entry into a destination directory. Unlike merge, export is not
// all-or-nothing: one entry's failure does not abort the rest, and
// cancellation keeps the files already written.
package export

import (
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docbatch/internal/render"
	"github.com/pdiddy/docbatch/pkg/types"
)

// EntryFiles records a successfully exported entry and how many files it
// produced.
type EntryFiles struct {
	DisplayName string     `json:"display_name" yaml:"display_name"`
	Kind        types.Kind `json:"kind" yaml:"kind"`
	Files       int        `json:"files" yaml:"files"`
}

// EntryError records an entry that failed to export.
type EntryError struct {
	DisplayName string `json:"display_name" yaml:"display_name"`
	Reason      string `json:"reason" yaml:"reason"`
}

// Result summarizes an export run.
type Result struct {
	Destination string       `json:"destination" yaml:"destination"`
	Files       int          `json:"files" yaml:"files"`
	Succeeded   []EntryFiles `json:"succeeded" yaml:"succeeded"`
	Failed      []EntryError `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// HasFailures reports whether any entry failed.
func (r Result) HasFailures() bool {
	return len(r.Failed) > 0
}

// Progress is called between per-entry steps with the number of entries
// processed so far and the total.
type Progress func(current, total int)

// Run exports the entries, in position order, as JPG files into destDir.
// PDF entries yield one JPG per page, TIFF entries one per frame, JPG
// entries a byte copy. Names encode the entry position and display name;
// an existing file is never overwritten, the new file gets a numeric
// suffix instead. On cancellation the files written so far stay in place
// and the context error is returned alongside the partial result.
func Run(ctx context.Context, entries []types.Entry, destDir string, cfg types.ExportConfig, open render.Opener, progress Progress, w io.Writer) (Result, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		if os.IsPermission(err) {
			return Result{}, fmt.Errorf("%s: %w", destDir, types.ErrWritePermission)
		}
		return Result{}, fmt.Errorf("creating destination: %w", err)
	}

	quality := cfg.Quality
	if quality <= 0 || quality > 100 {
		quality = 90
	}

	res := Result{Destination: destDir}
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		n, err := exportEntry(e, destDir, quality, open)
		if err != nil {
			fmt.Fprintf(w, "failed:   %s (%v)\n", e.DisplayName, err)
			res.Failed = append(res.Failed, EntryError{DisplayName: e.DisplayName, Reason: err.Error()})
		} else {
			fmt.Fprintf(w, "exported: %s (%d file(s))\n", e.DisplayName, n)
			res.Succeeded = append(res.Succeeded, EntryFiles{DisplayName: e.DisplayName, Kind: e.Kind, Files: n})
			res.Files += n
		}
		if progress != nil {
			progress(i+1, len(entries))
		}
	}

	fmt.Fprintf(w, "\nExport summary: %d file(s) from %d entr(ies), %d failed\n",
		res.Files, len(res.Succeeded), len(res.Failed))
	return res, nil
}

func exportEntry(e types.Entry, destDir string, quality int, open render.Opener) (int, error) {
	if _, err := os.Stat(e.SourcePath); err != nil {
		return 0, fmt.Errorf("%s: %w", e.SourcePath, types.ErrSourceMissing)
	}

	switch e.Kind {
	case types.KindJPG:
		target := resolveCollision(filepath.Join(destDir, fmt.Sprintf("%03d_%s.jpg", e.Position, stem(e.DisplayName))))
		if err := copyFile(e.SourcePath, target); err != nil {
			if os.IsPermission(err) {
				return 0, fmt.Errorf("%s: %w", target, types.ErrWritePermission)
			}
			return 0, err
		}
		return 1, nil
	case types.KindPDF, types.KindTIFF:
		return exportPaged(e, destDir, quality, open)
	default:
		return 0, fmt.Errorf("kind %q: %w", e.Kind, types.ErrUnsupportedFormat)
	}
}

// exportPaged rasterizes every page or frame of the entry to its own JPG.
func exportPaged(e types.Entry, destDir string, quality int, open render.Opener) (int, error) {
	doc, err := open(e.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("%v: %w", err, types.ErrCorruptSource)
	}
	defer doc.Close()

	written := 0
	for i := 0; i < doc.NumPages(); i++ {
		img, err := doc.Image(i)
		if err != nil {
			return written, fmt.Errorf("%v: %w", err, types.ErrCorruptSource)
		}
		name := fmt.Sprintf("%03d_%s_%03d.jpg", e.Position, stem(e.DisplayName), i+1)
		target := resolveCollision(filepath.Join(destDir, name))

		f, err := os.Create(target)
		if err != nil {
			if os.IsPermission(err) {
				return written, fmt.Errorf("%s: %w", target, types.ErrWritePermission)
			}
			return written, err
		}
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
			f.Close()
			os.Remove(target)
			return written, err
		}
		if err := f.Close(); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// resolveCollision returns path, or path with a "_1", "_2", ... suffix
// before the extension if a file already exists there.
func resolveCollision(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// stem strips the extension from a display name.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
