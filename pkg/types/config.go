// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MergeConfig holds settings for the merge operation.
type MergeConfig struct {
	// IncludeImages controls whether TIFF and JPG entries are converted to
	// PDF pages and merged. When false they are skipped with a warning
	// (default true).
	IncludeImages bool `json:"include_images" yaml:"include_images"`
}

// ExportConfig holds settings for the JPG export operation.
type ExportConfig struct {
	// Quality is the JPEG encoding quality, 1-100 (default 90).
	Quality int `json:"quality" yaml:"quality"`

	// DPI is the rasterization resolution for PDF pages and TIFF frames
	// (default 200).
	DPI float64 `json:"dpi" yaml:"dpi"`
}

// Config aggregates the per-operation settings.
type Config struct {
	Merge  MergeConfig  `json:"merge" yaml:"merge"`
	Export ExportConfig `json:"export" yaml:"export"`
}

// DefaultConfig returns the configuration used when no config file or
// flags override it.
func DefaultConfig() Config {
	return Config{
		Merge:  MergeConfig{IncludeImages: true},
		Export: ExportConfig{Quality: 90, DPI: 200},
	}
}
