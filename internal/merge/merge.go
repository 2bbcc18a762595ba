// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines the entries of a batch into one output PDF.
// PDF entries are appended unchanged; TIFF frames and JPG images become
// single-page PDFs before merging. The output is written to a temporary
// file and renamed into place, so a failed merge never leaves a partial
// file at the destination.
package merge

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/pdiddy/docbatch/internal/render"
	"github.com/pdiddy/docbatch/pkg/types"
)

// EntryPages records how many pages one entry contributed.
type EntryPages struct {
	DisplayName string     `json:"display_name" yaml:"display_name"`
	Kind        types.Kind `json:"kind" yaml:"kind"`
	Pages       int        `json:"pages" yaml:"pages"`
}

// Result summarizes a completed merge.
type Result struct {
	OutputPath string       `json:"output_path" yaml:"output_path"`
	TotalPages int          `json:"total_pages" yaml:"total_pages"`
	Skipped    int          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Entries    []EntryPages `json:"entries" yaml:"entries"`
}

// Progress is called between per-entry steps with the number of entries
// prepared so far and the total.
type Progress func(current, total int)

// Run merges the entries, in position order, into a single PDF at outPath.
// The .pdf extension is forced if missing. It aborts on the first fatal
// error, identifying the offending entry; in that case (and on
// cancellation) no file is left at outPath. Status lines are written to w.
func Run(ctx context.Context, entries []types.Entry, outPath string, cfg types.MergeConfig, open render.Opener, progress Progress, w io.Writer) (Result, error) {
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("nothing to merge: batch is empty")
	}
	outPath = forcePDFExt(outPath)

	tmpDir, err := os.MkdirTemp("", "docbatch_merge_*")
	if err != nil {
		return Result{}, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	res := Result{OutputPath: outPath}
	var inputs []string

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		if _, err := os.Stat(e.SourcePath); err != nil {
			return Result{}, fmt.Errorf("%s (%s): %w", e.DisplayName, e.SourcePath, types.ErrSourceMissing)
		}

		var pages int
		switch e.Kind {
		case types.KindPDF:
			pages, err = pdfapi.PageCountFile(e.SourcePath)
			if err != nil {
				return Result{}, fmt.Errorf("%s: %v: %w", e.DisplayName, err, types.ErrCorruptSource)
			}
			inputs = append(inputs, e.SourcePath)
		case types.KindJPG:
			if !cfg.IncludeImages {
				fmt.Fprintf(w, "skipped: %s (image entries excluded)\n", e.DisplayName)
				res.Skipped++
				continue
			}
			part := filepath.Join(tmpDir, fmt.Sprintf("part_%03d.pdf", i))
			// JPEGs embed via DCT passthrough, no re-encode.
			if err := pdfapi.ImportImagesFile([]string{e.SourcePath}, part, nil, nil); err != nil {
				return Result{}, fmt.Errorf("%s: %v: %w", e.DisplayName, err, types.ErrCorruptSource)
			}
			pages = 1
			inputs = append(inputs, part)
		case types.KindTIFF:
			if !cfg.IncludeImages {
				fmt.Fprintf(w, "skipped: %s (image entries excluded)\n", e.DisplayName)
				res.Skipped++
				continue
			}
			part := filepath.Join(tmpDir, fmt.Sprintf("part_%03d.pdf", i))
			pages, err = tiffToPDF(e.SourcePath, part, tmpDir, open)
			if err != nil {
				return Result{}, fmt.Errorf("%s: %v: %w", e.DisplayName, err, types.ErrCorruptSource)
			}
			inputs = append(inputs, part)
		default:
			return Result{}, fmt.Errorf("%s: kind %q: %w", e.DisplayName, e.Kind, types.ErrUnsupportedFormat)
		}

		fmt.Fprintf(w, "prepared: %s (%d page(s))\n", e.DisplayName, pages)
		res.Entries = append(res.Entries, EntryPages{DisplayName: e.DisplayName, Kind: e.Kind, Pages: pages})
		res.TotalPages += pages
		if progress != nil {
			progress(i+1, len(entries))
		}
	}

	if len(inputs) == 0 {
		return Result{}, fmt.Errorf("nothing to merge: all entries skipped")
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := writeMerged(inputs, outPath); err != nil {
		return Result{}, err
	}

	fmt.Fprintf(w, "merged: %d entr(ies), %d page(s) -> %s\n", len(res.Entries), res.TotalPages, outPath)
	return res, nil
}

// writeMerged merges inputs into a temporary file next to outPath and
// renames it into place.
func writeMerged(inputs []string, outPath string) error {
	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".docbatch_*.pdf")
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%s: %w", outPath, types.ErrWritePermission)
		}
		return fmt.Errorf("creating temp output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	// pdfcpu wants two or more inputs; a single prepared PDF is copied
	// through unchanged.
	if len(inputs) == 1 {
		err = copyFile(inputs[0], tmpPath)
	} else {
		err = pdfapi.MergeCreateFile(inputs, tmpPath, false, nil)
	}
	if err != nil {
		os.Remove(tmpPath)
		if os.IsPermission(err) {
			return fmt.Errorf("%s: %w", outPath, types.ErrWritePermission)
		}
		return fmt.Errorf("merging: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		if os.IsPermission(err) {
			return fmt.Errorf("%s: %w", outPath, types.ErrWritePermission)
		}
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}

// tiffToPDF rasterizes every frame of the TIFF at srcPath and imports the
// frames, one page each, into a PDF at outPath. Frames are staged as PNG
// so no extra lossy encode happens. Returns the frame count.
func tiffToPDF(srcPath, outPath, tmpDir string, open render.Opener) (int, error) {
	doc, err := open(srcPath)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	n := doc.NumPages()
	if n == 0 {
		return 0, fmt.Errorf("no frames found")
	}

	frames := make([]string, 0, n)
	for i := 0; i < n; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return 0, err
		}
		framePath := filepath.Join(tmpDir, fmt.Sprintf("%s_frame_%03d.png", strings.TrimSuffix(filepath.Base(outPath), ".pdf"), i))
		f, err := os.Create(framePath)
		if err != nil {
			return 0, err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return 0, err
		}
		if err := f.Close(); err != nil {
			return 0, err
		}
		frames = append(frames, framePath)
	}

	if err := pdfapi.ImportImagesFile(frames, outPath, nil, nil); err != nil {
		return 0, err
	}
	return n, nil
}

// forcePDFExt appends or replaces the extension so the output ends in .pdf.
func forcePDFExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".pdf"
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
