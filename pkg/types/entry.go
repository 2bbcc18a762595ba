// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data model shared across the docbatch stages.
package types

// Kind identifies the file format of a batch entry. It is determined once
// when the file is added and never changes afterwards.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindTIFF Kind = "tiff"
	KindJPG  Kind = "jpg"
)

// IsValid reports whether k is one of the supported kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindPDF, KindTIFF, KindJPG:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Entry is one item in the working set: a reference to a source file plus
// its display metadata.
type Entry struct {
	// ID is the session-unique identifier assigned at add time.
	ID int `json:"id" yaml:"id"`

	// SourcePath is the absolute path to the original file.
	SourcePath string `json:"source_path" yaml:"source_path"`

	// DisplayName is the user-editable name shown in the list. Unique
	// within a batch (case-insensitive).
	DisplayName string `json:"display_name" yaml:"display_name"`

	// Kind is the detected file format.
	Kind Kind `json:"kind" yaml:"kind"`

	// Position is the zero-based rank defining merge/export order.
	// Positions within a batch are always contiguous.
	Position int `json:"position" yaml:"position"`
}
