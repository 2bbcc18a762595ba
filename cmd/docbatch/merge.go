// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docbatch/internal/session"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge PDF, TIFF, and JPG files into a single PDF",
	Long: `Merge combines the given files, in order, into one PDF. PDF files are
appended page by page; TIFF frames and JPG images become single-page PDF
pages at their native size. The output is written atomically: a failed
merge leaves nothing at the output path.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")
	skipImages, _ := cmd.Flags().GetBool("skip-images")
	reportPath, _ := cmd.Flags().GetString("report")

	cfg := loadConfig()
	if skipImages {
		cfg.Merge.IncludeImages = false
	}

	sess := session.New(cfg)
	sess.SetOnProgress(func(current, total int) {
		fmt.Fprintf(os.Stderr, "  [%d/%d]\n", current, total)
	})

	if err := addFiles(sess, args); err != nil {
		return err
	}

	ch, err := sess.Merge(outPath, os.Stdout)
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
	return nil
}

// addFiles loads the argument files into the session, reporting rejected
// files on stderr without failing the run unless nothing was accepted.
func addFiles(sess *session.Session, paths []string) error {
	res, err := sess.AddFiles(paths)
	if err != nil {
		return err
	}
	for _, r := range res.Rejected {
		fmt.Fprintf(os.Stderr, "rejected: %s (%v)\n", r.Path, r.Err)
	}
	if len(res.Added) == 0 {
		return fmt.Errorf("no usable input files")
	}
	return nil
}

func init() {
	mergeCmd.Flags().StringP("output", "o", "merged.pdf", "output PDF path")
	mergeCmd.Flags().Bool("skip-images", false, "skip TIFF and JPG entries instead of merging them")
	mergeCmd.Flags().String("report", "", "write a YAML merge report to this path")

	rootCmd.AddCommand(mergeCmd)
}
