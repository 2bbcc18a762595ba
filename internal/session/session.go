// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session owns the single batch of a running application and
// enforces the operation contract on top of it: batch mutations are
// synchronous, merge and export run on a background goroutine, at most
// one of them is in flight, and the batch is locked against mutation
// while one runs.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/docbatch/internal/batch"
	"github.com/pdiddy/docbatch/internal/export"
	"github.com/pdiddy/docbatch/internal/merge"
	"github.com/pdiddy/docbatch/internal/render"
	"github.com/pdiddy/docbatch/pkg/types"
)

// Progress is forwarded between per-entry steps of a running operation.
type Progress func(current, total int)

// Session owns one Batch for the lifetime of the application. The batch
// is never persisted; it is discarded with the session.
type Session struct {
	mu       sync.Mutex
	batch    *batch.Batch
	cfg      types.Config
	open     render.Opener
	progress Progress
	active   bool
	cancel   context.CancelFunc
}

// New creates a session with an empty batch, rendering through MuPDF at
// the configured export DPI.
func New(cfg types.Config) *Session {
	return NewWithOpener(cfg, render.FitzOpener(cfg.Export.DPI))
}

// NewWithOpener is New with an explicit document opener. Tests use it to
// substitute a fake renderer.
func NewWithOpener(cfg types.Config, open render.Opener) *Session {
	return &Session{batch: batch.New(), cfg: cfg, open: open}
}

// SetOnChange registers the batch change callback.
func (s *Session) SetOnChange(fn func(batch.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch.SetOnChange(fn)
}

// SetOnProgress registers the operation progress callback.
func (s *Session) SetOnProgress(fn Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = fn
}

// Entries returns the batch entries in position order.
func (s *Session) Entries() []types.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Entries()
}

// Len returns the number of batch entries.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batch.Len()
}

// AddFiles appends files to the batch. Fails as a whole with
// ErrBatchLocked while an operation is in flight.
func (s *Session) AddFiles(paths []string) (batch.AddResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return batch.AddResult{}, types.ErrBatchLocked
	}
	return s.batch.AddFiles(paths), nil
}

// Remove removes the entry with the given ID.
func (s *Session) Remove(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return types.ErrBatchLocked
	}
	return s.batch.Remove(id)
}

// Reorder moves the entry with the given ID to a new position.
func (s *Session) Reorder(id, newPos int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return types.ErrBatchLocked
	}
	return s.batch.Reorder(id, newPos)
}

// Rename changes the entry's display name.
func (s *Session) Rename(id int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return types.ErrBatchLocked
	}
	return s.batch.Rename(id, name)
}

// RenameFile renames the entry's source file on disk and updates the
// entry's path and display name. The new name's extension must keep the
// entry's kind; a name without extension inherits the current one. An
// existing target is only replaced when overwrite is set.
func (s *Session) RenameFile(id int, newBase string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return types.ErrBatchLocked
	}

	e, err := s.batch.Entry(id)
	if err != nil {
		return err
	}

	newBase = strings.TrimSpace(newBase)
	if newBase == "" || newBase != filepath.Base(newBase) {
		return fmt.Errorf("invalid file name %q", newBase)
	}
	if filepath.Ext(newBase) == "" {
		newBase += filepath.Ext(e.SourcePath)
	}
	if kind, ok := batch.KindForExt(filepath.Ext(newBase)); !ok || kind != e.Kind {
		return fmt.Errorf("%q: extension must keep the entry a %s: %w", newBase, e.Kind, types.ErrUnsupportedFormat)
	}

	target := filepath.Join(filepath.Dir(e.SourcePath), newBase)
	if target != e.SourcePath {
		if _, err := os.Stat(target); err == nil && !overwrite {
			return fmt.Errorf("%s already exists", newBase)
		}
	}

	oldName := e.DisplayName
	if err := s.batch.Rename(id, newBase); err != nil {
		return err
	}
	if target != e.SourcePath {
		if err := os.Rename(e.SourcePath, target); err != nil {
			// Roll the display name back so the list stays consistent.
			_ = s.batch.Rename(id, oldName)
			if os.IsPermission(err) {
				return fmt.Errorf("%s: %w", target, types.ErrWritePermission)
			}
			return fmt.Errorf("renaming file: %w", err)
		}
		_ = s.batch.SetSourcePath(id, target)
	}
	return nil
}

// MergeOutcome is delivered when a merge finishes.
type MergeOutcome struct {
	Result merge.Result
	Err    error
}

// Merge starts merging the current batch into outPath on a background
// goroutine and returns a channel that delivers the outcome. Only one
// merge or export may be in flight; a second start fails with
// ErrOperationActive.
func (s *Session) Merge(outPath string, w io.Writer) (<-chan MergeOutcome, error) {
	entries, ctx, prog, err := s.begin()
	if err != nil {
		return nil, err
	}

	ch := make(chan MergeOutcome, 1)
	go func() {
		res, err := merge.Run(ctx, entries, outPath, s.cfg.Merge, s.open, merge.Progress(prog), w)
		s.finish()
		ch <- MergeOutcome{Result: res, Err: err}
	}()
	return ch, nil
}

// ExportOutcome is delivered when an export finishes.
type ExportOutcome struct {
	Result export.Result
	Err    error
}

// Export starts exporting the current batch as JPG files into destDir on
// a background goroutine and returns a channel that delivers the outcome.
func (s *Session) Export(destDir string, w io.Writer) (<-chan ExportOutcome, error) {
	entries, ctx, prog, err := s.begin()
	if err != nil {
		return nil, err
	}

	ch := make(chan ExportOutcome, 1)
	go func() {
		res, err := export.Run(ctx, entries, destDir, s.cfg.Export, s.open, export.Progress(prog), w)
		s.finish()
		ch <- ExportOutcome{Result: res, Err: err}
	}()
	return ch, nil
}

// Cancel cancels the in-flight operation, if any. The operation stops
// between per-entry steps and reports context.Canceled.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// begin snapshots the batch and marks an operation in flight.
func (s *Session) begin() ([]types.Entry, context.Context, Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return nil, nil, nil, types.ErrOperationActive
	}
	if s.batch.Len() == 0 {
		return nil, nil, nil, fmt.Errorf("batch is empty")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.active = true
	s.cancel = cancel
	return s.batch.Entries(), ctx, s.progress, nil
}

func (s *Session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
