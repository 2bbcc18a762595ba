// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbatch/internal/session"
)

var exportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Export every page and frame as JPG images",
	Long: `Export writes one JPG per PDF page, one per TIFF frame, and a copy of
each JPG file into the destination directory. File names carry the batch
position so the output sorts in batch order. Existing files are never
overwritten; colliding names get a numeric suffix.

One file failing does not stop the rest; failed entries are listed at the
end and the command exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	destDir, _ := cmd.Flags().GetString("dest")
	quality, _ := cmd.Flags().GetInt("quality")
	dpi, _ := cmd.Flags().GetFloat64("dpi")
	reportPath, _ := cmd.Flags().GetString("report")

	cfg := loadConfig()
	if cmd.Flags().Changed("quality") {
		cfg.Export.Quality = quality
	}
	if cmd.Flags().Changed("dpi") {
		cfg.Export.DPI = dpi
	}

	sess := session.New(cfg)
	sess.SetOnProgress(func(current, total int) {
		fmt.Fprintf(os.Stderr, "  [%d/%d]\n", current, total)
	})

	if err := addFiles(sess, args); err != nil {
		return err
	}

	ch, err := sess.Export(destDir, os.Stdout)
	if err != nil {
		return err
	}
	outcome := <-ch
	if outcome.Err != nil {
		return outcome.Err
	}

	if reportPath != "" {
		if err := writeReport(reportPath, outcome.Result); err != nil {
			return err
		}
	}
	if outcome.Result.HasFailures() {
		return fmt.Errorf("%d entr(ies) failed to export", len(outcome.Result.Failed))
	}
	return nil
}

func init() {
	exportCmd.Flags().StringP("dest", "d", ".", "destination directory for JPG files")
	exportCmd.Flags().Int("quality", 90, "JPEG quality (1-100)")
	exportCmd.Flags().Float64("dpi", 200, "rasterization DPI for PDF pages and TIFF frames")
	exportCmd.Flags().String("report", "", "write a YAML export report to this path")

	rootCmd.AddCommand(exportCmd)
}
