// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// fitzDocument adapts a go-fitz document (MuPDF) to the Document
// interface. MuPDF handles both PDF pages and multi-frame TIFFs.
type fitzDocument struct {
	doc *fitz.Document
	dpi float64
}

// FitzOpener returns an Opener that rasterizes at the given DPI.
// A non-positive dpi falls back to 72 (native size).
func FitzOpener(dpi float64) Opener {
	if dpi <= 0 {
		dpi = 72
	}
	return func(path string) (Document, error) {
		doc, err := fitz.New(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return &fitzDocument{doc: doc, dpi: dpi}, nil
	}
}

func (d *fitzDocument) NumPages() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) Image(n int) (image.Image, error) {
	img, err := d.doc.ImageDPI(n, d.dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", n+1, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
