// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"errors"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"

	"github.com/pdiddy/docbatch/pkg/types"
)

// writePDF writes a file that passes the PDF header sniff.
func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("%PDF-1.4\n%fake\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeJPEG writes a real 1x1 JPEG.
func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeTIFF writes a real 1x1 TIFF.
func writeTIFF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := tiff.Encode(f, image.NewRGBA(image.Rect(0, 0, 1, 1)), nil); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAddFiles(t *testing.T) {
	dir := t.TempDir()
	pdf := writePDF(t, dir, "a.pdf")
	jpg := writeJPEG(t, dir, "b.jpg")
	tif := writeTIFF(t, dir, "c.tif")

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "gone.pdf")

	b := New()
	res := b.AddFiles([]string{pdf, jpg, tif, txt, missing})

	if len(res.Added) != 3 {
		t.Fatalf("added = %d, want 3", len(res.Added))
	}
	if len(res.Rejected) != 2 {
		t.Fatalf("rejected = %d, want 2", len(res.Rejected))
	}
	if !errors.Is(res.Rejected[0].Err, types.ErrUnsupportedFormat) {
		t.Errorf("txt rejection = %v, want ErrUnsupportedFormat", res.Rejected[0].Err)
	}
	if !errors.Is(res.Rejected[1].Err, types.ErrSourceMissing) {
		t.Errorf("missing rejection = %v, want ErrSourceMissing", res.Rejected[1].Err)
	}

	entries := b.Entries()
	for i, e := range entries {
		if e.Position != i {
			t.Errorf("entry %d position = %d, want %d", i, e.Position, i)
		}
	}
	wantKinds := []types.Kind{types.KindPDF, types.KindJPG, types.KindTIFF}
	for i, k := range wantKinds {
		if entries[i].Kind != k {
			t.Errorf("entry %d kind = %q, want %q", i, entries[i].Kind, k)
		}
	}

	// Re-adding the same path is rejected, the batch is unchanged.
	res = b.AddFiles([]string{pdf})
	if len(res.Added) != 0 || len(res.Rejected) != 1 {
		t.Fatalf("re-add: added %d rejected %d, want 0/1", len(res.Added), len(res.Rejected))
	}
	if !errors.Is(res.Rejected[0].Err, ErrAlreadyAdded) {
		t.Errorf("re-add rejection = %v, want ErrAlreadyAdded", res.Rejected[0].Err)
	}
	if b.Len() != 3 {
		t.Errorf("len = %d, want 3", b.Len())
	}
}

func TestAddFilesDeduplicatesDisplayNames(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	dirC := t.TempDir()

	b := New()
	b.AddFiles([]string{
		writePDF(t, dirA, "scan.pdf"),
		writePDF(t, dirB, "scan.pdf"),
		writePDF(t, dirC, "scan.pdf"),
	})

	entries := b.Entries()
	want := []string{"scan.pdf", "scan (2).pdf", "scan (3).pdf"}
	for i, name := range want {
		if entries[i].DisplayName != name {
			t.Errorf("entry %d name = %q, want %q", i, entries[i].DisplayName, name)
		}
	}
}

func TestReorderAndRemoveKeepPositionsContiguous(t *testing.T) {
	dir := t.TempDir()
	b := New()
	res := b.AddFiles([]string{
		writePDF(t, dir, "a.pdf"),
		writePDF(t, dir, "b.pdf"),
		writePDF(t, dir, "c.pdf"),
		writePDF(t, dir, "d.pdf"),
	})
	ids := make([]int, len(res.Added))
	for i, e := range res.Added {
		ids[i] = e.ID
	}

	// Move d to the front, then drop b.
	if err := b.Reorder(ids[3], 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Remove(ids[1]); err != nil {
		t.Fatal(err)
	}

	entries := b.Entries()
	wantOrder := []string{"d.pdf", "a.pdf", "c.pdf"}
	for i, name := range wantOrder {
		if entries[i].DisplayName != name {
			t.Errorf("entry %d = %q, want %q", i, entries[i].DisplayName, name)
		}
		if entries[i].Position != i {
			t.Errorf("entry %d position = %d, want %d", i, entries[i].Position, i)
		}
	}

	if err := b.Reorder(ids[0], 3); !errors.Is(err, types.ErrOutOfRange) {
		t.Errorf("reorder past end = %v, want ErrOutOfRange", err)
	}
	if err := b.Remove(ids[1]); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("double remove = %v, want ErrNotFound", err)
	}
}

func TestRename(t *testing.T) {
	dir := t.TempDir()
	b := New()
	res := b.AddFiles([]string{
		writePDF(t, dir, "a.pdf"),
		writePDF(t, dir, "b.pdf"),
	})
	idA, idB := res.Added[0].ID, res.Added[1].ID

	if err := b.Rename(idA, "report.pdf"); err != nil {
		t.Fatal(err)
	}

	// Case-insensitive clash with another entry fails and changes nothing.
	if err := b.Rename(idB, "Report.PDF"); !errors.Is(err, types.ErrDuplicateName) {
		t.Fatalf("rename to taken name = %v, want ErrDuplicateName", err)
	}
	e, _ := b.Entry(idB)
	if e.DisplayName != "b.pdf" {
		t.Errorf("entry b name = %q, want unchanged", e.DisplayName)
	}

	// Renaming to the current name is a no-op.
	if err := b.Rename(idA, "report.pdf"); err != nil {
		t.Errorf("self-rename = %v, want nil", err)
	}

	if err := b.Rename(999, "x.pdf"); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("rename unknown id = %v, want ErrNotFound", err)
	}
}

func TestOnChangeEvents(t *testing.T) {
	dir := t.TempDir()
	b := New()

	var ops []string
	b.SetOnChange(func(ev Event) { ops = append(ops, ev.Op) })

	res := b.AddFiles([]string{writePDF(t, dir, "a.pdf"), writePDF(t, dir, "b.pdf")})
	id := res.Added[0].ID
	if err := b.Rename(id, "renamed.pdf"); err != nil {
		t.Fatal(err)
	}
	if err := b.Reorder(id, 1); err != nil {
		t.Fatal(err)
	}
	if err := b.Remove(id); err != nil {
		t.Fatal(err)
	}

	want := []string{"add", "add", "rename", "reorder", "remove"}
	if len(ops) != len(want) {
		t.Fatalf("events = %v, want %v", ops, want)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, ops[i], want[i])
		}
	}
}
