// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package batch implements the ordered working set of document references.
// A Batch holds entries in merge/export order and supports add, remove,
// reorder and rename. It is not safe for concurrent use; the owning
// session serializes access.
package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docbatch/pkg/types"
)

// ErrAlreadyAdded marks a path that is already present in the batch.
var ErrAlreadyAdded = errors.New("file already in batch")

// Event describes a completed batch mutation, delivered to the OnChange
// callback so a presentation layer can refresh its list.
type Event struct {
	// Op is one of "add", "remove", "reorder", "rename".
	Op string

	// Entry is the affected entry after the mutation (for "remove", its
	// last state before removal).
	Entry types.Entry
}

// Batch is the ordered collection of entries for one session.
// Invariants: entry positions are a contiguous permutation of 0..n-1 and
// display names are unique case-insensitively.
type Batch struct {
	entries  []types.Entry // kept in position order
	nextID   int
	onChange func(Event)
}

// New returns an empty batch.
func New() *Batch {
	return &Batch{}
}

// SetOnChange registers the change callback. A nil callback disables
// notifications.
func (b *Batch) SetOnChange(fn func(Event)) {
	b.onChange = fn
}

// Len returns the number of entries.
func (b *Batch) Len() int {
	return len(b.entries)
}

// Entries returns a copy of the entries in position order.
func (b *Batch) Entries() []types.Entry {
	out := make([]types.Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Entry returns the entry with the given ID.
func (b *Batch) Entry(id int) (types.Entry, error) {
	i := b.index(id)
	if i < 0 {
		return types.Entry{}, fmt.Errorf("entry %d: %w", id, types.ErrNotFound)
	}
	return b.entries[i], nil
}

// Rejected records a path that AddFiles refused, with the reason.
type Rejected struct {
	Path string
	Err  error
}

// AddResult summarizes one AddFiles call.
type AddResult struct {
	Added    []types.Entry
	Rejected []Rejected
}

// AddFiles appends the given files to the end of the batch in argument
// order. Files with an unsupported extension or content, missing files,
// and paths already present are rejected individually; rejection of one
// file does not block the others.
func (b *Batch) AddFiles(paths []string) AddResult {
	var res AddResult
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejected{Path: p, Err: err})
			continue
		}
		if b.hasPath(abs) {
			res.Rejected = append(res.Rejected, Rejected{Path: p, Err: ErrAlreadyAdded})
			continue
		}
		kind, err := DetectKind(abs)
		if err != nil {
			res.Rejected = append(res.Rejected, Rejected{Path: p, Err: err})
			continue
		}
		e := types.Entry{
			ID:          b.nextID,
			SourcePath:  abs,
			DisplayName: b.dedupName(filepath.Base(abs), -1),
			Kind:        kind,
			Position:    len(b.entries),
		}
		b.nextID++
		b.entries = append(b.entries, e)
		res.Added = append(res.Added, e)
		b.emit(Event{Op: "add", Entry: e})
	}
	return res
}

// Remove deletes the entry with the given ID and re-normalizes the
// positions of the remaining entries.
func (b *Batch) Remove(id int) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("entry %d: %w", id, types.ErrNotFound)
	}
	removed := b.entries[i]
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	b.renumber()
	b.emit(Event{Op: "remove", Entry: removed})
	return nil
}

// Reorder moves the entry with the given ID to newPos, shifting the
// entries in between.
func (b *Batch) Reorder(id, newPos int) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("entry %d: %w", id, types.ErrNotFound)
	}
	if newPos < 0 || newPos >= len(b.entries) {
		return fmt.Errorf("position %d: %w", newPos, types.ErrOutOfRange)
	}
	e := b.entries[i]
	b.entries = append(b.entries[:i], b.entries[i+1:]...)
	b.entries = append(b.entries[:newPos], append([]types.Entry{e}, b.entries[newPos:]...)...)
	b.renumber()
	b.emit(Event{Op: "reorder", Entry: b.entries[newPos]})
	return nil
}

// Rename sets the entry's display name. Renaming to a name another entry
// already holds (case-insensitive) fails; renaming to the current name is
// a no-op.
func (b *Batch) Rename(id int, name string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("entry %d: %w", id, types.ErrNotFound)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("empty display name")
	}
	if b.entries[i].DisplayName == name {
		return nil
	}
	if b.nameTaken(name, id) {
		return fmt.Errorf("%q: %w", name, types.ErrDuplicateName)
	}
	b.entries[i].DisplayName = name
	b.emit(Event{Op: "rename", Entry: b.entries[i]})
	return nil
}

// SetSourcePath updates the entry's source path after an on-disk rename.
// The kind is unaffected.
func (b *Batch) SetSourcePath(id int, path string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("entry %d: %w", id, types.ErrNotFound)
	}
	b.entries[i].SourcePath = path
	return nil
}

func (b *Batch) emit(ev Event) {
	if b.onChange != nil {
		b.onChange(ev)
	}
}

func (b *Batch) index(id int) int {
	for i, e := range b.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (b *Batch) hasPath(path string) bool {
	for _, e := range b.entries {
		if e.SourcePath == path {
			return true
		}
	}
	return false
}

func (b *Batch) nameTaken(name string, excludeID int) bool {
	for _, e := range b.entries {
		if e.ID != excludeID && strings.EqualFold(e.DisplayName, name) {
			return true
		}
	}
	return false
}

// dedupName returns name, or name with a " (2)", " (3)", ... suffix before
// the extension if the plain name is already taken.
func (b *Batch) dedupName(name string, excludeID int) string {
	if !b.nameTaken(name, excludeID) {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !b.nameTaken(candidate, excludeID) {
			return candidate
		}
	}
}

func (b *Batch) renumber() {
	for i := range b.entries {
		b.entries[i].Position = i
	}
}
