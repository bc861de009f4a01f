package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/ingest"
)

func newScanCmd() *cobra.Command {
	var asManifest bool

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "List supported document files under a directory",
		Long: `Scan a directory for supported document files (.docx, .md, .markdown, .txt).

With --manifest, print a manifest skeleton that can be edited and fed to
'ragctl manifest'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0], asManifest)
		},
	}

	cmd.Flags().BoolVar(&asManifest, "manifest", false, "Print a manifest skeleton instead of a plain list")

	return cmd
}

func runScan(dir string, asManifest bool) error {
	files, err := ingest.ScanDirectory(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("No supported documents found.")
		return nil
	}

	if asManifest {
		manifest := ingest.Manifest{Documents: make([]ingest.ManifestEntry, 0, len(files))}
		for _, f := range files {
			manifest.Documents = append(manifest.Documents, ingest.ManifestEntry{
				Slug:     f.Slug,
				Title:    f.Title,
				DocType:  "book",
				Version:  1,
				Language: "ru",
				File:     f.Path,
			})
		}
		out, err := yaml.Marshal(manifest)
		if err != nil {
			return fmt.Errorf("failed to encode manifest: %w", err)
		}
		fmt.Print(string(out))
		return nil
	}

	for _, f := range files {
		fmt.Printf("%s\t%s\n", f.Slug, f.Path)
	}
	fmt.Printf("%d supported documents.\n", len(files))
	return nil
}
