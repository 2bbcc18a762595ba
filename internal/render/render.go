// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render rasterizes the pages of a PDF or the frames of a TIFF
// to images. The Document interface hides the rendering backend so that
// merge and export can be tested with fakes.
package render

import "image"

// Document is an open paged document (PDF pages or TIFF frames).
type Document interface {
	// NumPages returns the number of pages or frames.
	NumPages() int

	// Image rasterizes the zero-based page n.
	Image(n int) (image.Image, error)

	// Close releases the underlying document resources.
	Close() error
}

// Opener opens the file at path as a paged document.
type Opener func(path string) (Document, error)
