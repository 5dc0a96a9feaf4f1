package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikogura/cover-letter/pkg/config"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/nikogura/cover-letter/pkg/renderer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var renderOutput string

//nolint:gochecknoglobals // Cobra boilerplate
var renderCmd = &cobra.Command{
	Use:   "render <letter.txt>",
	Short: "Render an edited cover letter to PDF",
	Long: `Render a cover letter text file to PDF.

Use this after reviewing or editing the text written by 'generate'. Blank line
runs are collapsed and lines are trimmed before rendering. Text wrapped in
**double asterisks** is set in bold.

No API key is needed.

Example:
  cover-letter render ~/Documents/CoverLetters/acme/cover_letter.txt
  cover-letter render letter.txt --output ~/Desktop/acme.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderOutput, "output", "", "PDF output path (default: input path with .pdf extension)")
}

func runRender(cmd *cobra.Command, args []string) (err error) {
	textPath := args[0]

	var cfg config.Config
	cfg, err = config.LoadLayout(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var data []byte
	data, err = os.ReadFile(textPath)
	if err != nil {
		err = errors.Wrapf(err, "failed to read letter: %s", textPath)
		return err
	}

	var r *renderer.Renderer
	r, err = newRenderer(cfg)
	if err != nil {
		return err
	}

	// Rendering never calls the completer.
	gen := coverletter.NewGenerator(nil, r)

	if getVerbose() {
		fmt.Printf("Rendering %s (%d characters)\n", textPath, len(data))
	}

	var pdfBytes []byte
	pdfBytes, err = gen.Render(string(data))
	if err != nil {
		return err
	}

	pdfPath := renderOutput
	if pdfPath == "" {
		pdfPath = strings.TrimSuffix(textPath, filepath.Ext(textPath)) + ".pdf"
	}

	err = renderer.WriteFile(pdfBytes, pdfPath)
	if err != nil {
		return err
	}

	fmt.Printf("PDF written to %s\n", pdfPath)
	return err
}
