// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/spf13/cobra"

	"github.com/pdiddy/docbatch/internal/batch"
	"github.com/pdiddy/docbatch/internal/render"
	"github.com/pdiddy/docbatch/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [files...]",
	Short: "Show the detected kind and page count of each file",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

func runInspect(cmd *cobra.Command, args []string) error {
	open := render.FitzOpener(72)
	failed := 0

	for _, path := range args {
		kind, err := batch.DetectKind(path)
		if err != nil {
			fmt.Printf("%-40s  error: %v\n", path, err)
			failed++
			continue
		}

		pages, err := countPages(path, kind, open)
		if err != nil {
			fmt.Printf("%-40s  %-4s  error: %v\n", path, kind, err)
			failed++
			continue
		}
		fmt.Printf("%-40s  %-4s  %d page(s)\n", path, kind, pages)
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) could not be inspected", failed)
	}
	return nil
}

func countPages(path string, kind types.Kind, open render.Opener) (int, error) {
	switch kind {
	case types.KindPDF:
		return pdfapi.PageCountFile(path)
	case types.KindTIFF:
		doc, err := open(path)
		if err != nil {
			return 0, err
		}
		defer doc.Close()
		return doc.NumPages(), nil
	default:
		return 1, nil
	}
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
