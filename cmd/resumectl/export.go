package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"resume-builder/internal/shared/util"
	"resume-builder/resume/render"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a résumé in several formats at once",
	Long:  "Export renders the same document into every requested format concurrently and writes one file per format into --dir.",
	RunE:  runExport,
}

var (
	exportInput    string
	exportDir      string
	exportFormats  []string
	exportTemplate string
	exportTheme    string
	exportLang     string
	exportChrome   string
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to résumé JSON")
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", "./out", "Output directory")
	exportCmd.Flags().StringSliceVar(&exportFormats, "formats", []string{"html", "word", "markdown"}, "Formats to produce")
	addSelectionFlags(exportCmd, &exportTemplate, &exportTheme, &exportLang, &exportChrome)
	_ = exportCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	doc, err := loadDocument(exportInput, cmd.InOrStdin())
	if err != nil {
		return err
	}
	sel, err := selection(exportTemplate, exportTheme)
	if err != nil {
		return err
	}
	lang := render.ParseLanguage(exportLang)
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return err
	}

	base := util.DownloadName(doc.PersonalInfo.FullName, "")
	base = strings.TrimSuffix(base, filepath.Ext(base))

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, format := range exportFormats {
		format = strings.ToLower(strings.TrimSpace(format))
		ext, ok := extensions[format]
		if !ok {
			return fmt.Errorf("unknown format %q", format)
		}
		g.Go(func() error {
			out, err := renderFormatBytes(ctx, format, doc, sel, lang, exportChrome)
			if err != nil {
				return fmt.Errorf("%s: %w", format, err)
			}
			path := filepath.Join(exportDir, base+ext)
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		})
	}
	return g.Wait()
}
