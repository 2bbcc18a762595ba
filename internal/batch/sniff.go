// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg" // register JPEG for content sniffing

	_ "golang.org/x/image/tiff" // register TIFF for content sniffing

	"github.com/pdiddy/docbatch/pkg/types"
)

// kindByExt maps a lower-case file extension to the candidate kind.
var kindByExt = map[string]types.Kind{
	".pdf":  types.KindPDF,
	".tif":  types.KindTIFF,
	".tiff": types.KindTIFF,
	".jpg":  types.KindJPG,
	".jpeg": types.KindJPG,
}

// KindForExt returns the kind a file extension (with leading dot) maps
// to, and whether the extension is supported at all.
func KindForExt(ext string) (types.Kind, bool) {
	k, ok := kindByExt[strings.ToLower(ext)]
	return k, ok
}

// pdfHeaderWindow is how far into the file the %PDF- marker may appear.
// Some producers emit a BOM or junk before the header.
const pdfHeaderWindow = 1024

// DetectKind determines the kind of the file at path. The extension
// selects the candidate kind and the file content must confirm it: a PDF
// must carry the %PDF- header, a TIFF or JPG must decode as such.
func DetectKind(path string) (types.Kind, error) {
	kind, ok := kindByExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), types.ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, types.ErrSourceMissing)
		}
		return "", fmt.Errorf("%s: %w", path, types.ErrUnsupportedFormat)
	}
	defer f.Close()

	switch kind {
	case types.KindPDF:
		buf := make([]byte, pdfHeaderWindow)
		n, _ := f.Read(buf)
		if !bytes.Contains(buf[:n], []byte("%PDF-")) {
			return "", fmt.Errorf("%s: no PDF header: %w", filepath.Base(path), types.ErrUnsupportedFormat)
		}
	case types.KindTIFF, types.KindJPG:
		_, format, err := image.DecodeConfig(f)
		if err != nil {
			return "", fmt.Errorf("%s: %v: %w", filepath.Base(path), err, types.ErrUnsupportedFormat)
		}
		want := "jpeg"
		if kind == types.KindTIFF {
			want = "tiff"
		}
		if format != want {
			return "", fmt.Errorf("%s: content is %s, extension says %s: %w",
				filepath.Base(path), format, kind, types.ErrUnsupportedFormat)
		}
	}
	return kind, nil
}
