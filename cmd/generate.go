package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikogura/cover-letter/pkg/config"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/nikogura/cover-letter/pkg/jd"
	"github.com/nikogura/cover-letter/pkg/renderer"
	"github.com/nikogura/cover-letter/pkg/resume"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Output filenames inside a company directory.
const (
	letterTextName = "cover_letter.txt"
	letterPDFName  = "cover_letter.pdf"
)

//nolint:gochecknoglobals // Cobra boilerplate
var resumePath string

//nolint:gochecknoglobals // Cobra boilerplate
var jdInput string

//nolint:gochecknoglobals // Cobra boilerplate
var companyAddress string

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var outputPDF string

//nolint:gochecknoglobals // Cobra boilerplate
var keepText bool

//nolint:gochecknoglobals // Cobra boilerplate
var skipPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter",
	Long: `Generate a cover letter from your resume and a job description.

The resume can be a PDF, plain text or markdown file. The job description can be:
- A file path (e.g., jd.txt)
- A URL (e.g., https://example.com/jobs/123)
- "-" to read it from stdin

The letter text is written to <output-dir>/<company>/cover_letter.txt so you can
review and edit it, and rendered to cover_letter.pdf next to it. After editing,
run 'cover-letter render' on the text file to produce the final PDF.

Example:
  cover-letter generate --resume resume.pdf --jd jd.txt
  cover-letter generate --resume resume.pdf --jd https://example.com/jobs/123 --address "1 Main St, Springfield"
  pbpaste | cover-letter generate --resume resume.md --jd - --skip-pdf`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&resumePath, "resume", "", "Resume file (.pdf, .txt or .md)")
	generateCmd.Flags().StringVar(&jdInput, "jd", "", "Job description file, URL, or - for stdin")
	generateCmd.Flags().StringVar(&companyAddress, "address", "", "Company address to include in the letter header")
	generateCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	generateCmd.Flags().StringVar(&outputPDF, "output", "", "PDF output path (default <output-dir>/<company>/cover_letter.pdf)")
	generateCmd.Flags().BoolVar(&keepText, "keep-text", true, "Keep the letter text file after PDF generation")
	generateCmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "Skip PDF generation (useful for editing before rendering)")
	_ = generateCmd.MarkFlagRequired("resume")
	_ = generateCmd.MarkFlagRequired("jd")
}

func runGenerate(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := signalContext()
	defer cancel()

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var req coverletter.Request
	req, err = buildRequest(ctx, resumePath, jdInput, companyAddress)
	if err != nil {
		return err
	}

	var gen *coverletter.Generator
	gen, err = newGenerator(cfg)
	if err != nil {
		return err
	}

	var draft coverletter.Draft
	err = stdoutSpinner(fmt.Sprintf("Generating cover letter with %s...", gen.Model()), func() (genErr error) {
		draft, genErr = gen.Generate(ctx, req)
		return genErr
	})
	if err != nil {
		return err
	}

	var outDir string
	outDir, err = createCompanyOutputDir(getOutputDir(outputDir, cfg.Defaults.OutputDir), draft.Company)
	if err != nil {
		return err
	}

	textPath := filepath.Join(outDir, letterTextName)
	pdfPath := outputPDF
	if pdfPath == "" {
		pdfPath = filepath.Join(outDir, letterPDFName)
	}

	err = writeOutputs(gen, draft.Letter, textPath, pdfPath, skipPDF, keepText)
	if err != nil {
		return err
	}

	printSummary(draft, textPath, pdfPath, skipPDF, keepText)
	return err
}

// buildRequest loads the resume and job description. PDF resumes are passed
// through as bytes so the pipeline extracts them.
func buildRequest(ctx context.Context, resumeFile, jobInput, address string) (req coverletter.Request, err error) {
	req.CompanyAddress = address

	if strings.EqualFold(filepath.Ext(resumeFile), ".pdf") {
		req.ResumePDF, err = os.ReadFile(resumeFile)
		if err != nil {
			err = errors.Wrapf(err, "failed to read resume: %s", resumeFile)
			return req, err
		}
	} else {
		req.ResumeText, err = resume.Load(resumeFile)
		if err != nil {
			err = errors.Wrap(err, "failed to load resume")
			return req, err
		}
	}

	if getVerbose() {
		fmt.Printf("Resume loaded from: %s\n", resumeFile)
	}

	req.JobDescription, err = fetchAndLogJD(ctx, jobInput)
	return req, err
}

func fetchAndLogJD(ctx context.Context, input string) (jobDescription string, err error) {
	if getVerbose() {
		fmt.Printf("Loading job description from: %s\n", input)
	}

	jobDescription, err = jd.Fetch(ctx, input)
	if err != nil && input != jd.StdinInput && strings.Contains(input, "://") {
		// JavaScript-rendered job boards often come back empty
		fmt.Printf("\nWarning: Failed to fetch job description from URL: %v\n", err)
		fmt.Println("\nPlease paste the job description text below.")
		fmt.Println("When finished, press Ctrl+D (Unix/Mac) or Ctrl+Z then Enter (Windows):")
		fmt.Println()

		jobDescription, err = readPastedJD()
		if err != nil {
			return jobDescription, err
		}
	}
	if err != nil {
		err = errors.Wrap(err, "failed to load job description")
		return jobDescription, err
	}

	if getVerbose() {
		fmt.Printf("Job description loaded (%d characters)\n", len(jobDescription))
	}

	return jobDescription, err
}

func readPastedJD() (jobDescription string, err error) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), jd.MaxBodyBytes)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if scanner.Err() != nil {
		err = errors.Wrap(scanner.Err(), "failed to read job description from stdin")
		return jobDescription, err
	}

	jobDescription = strings.TrimSpace(strings.Join(lines, "\n"))
	if jobDescription == "" {
		err = errors.New("no job description provided")
		return jobDescription, err
	}

	fmt.Printf("\nJob description received (%d characters)\n", len(jobDescription))
	return jobDescription, err
}

// writeOutputs writes the letter text and, unless skipped, its PDF. The text
// file is removed afterwards only when a PDF was written and keep is false.
func writeOutputs(gen *coverletter.Generator, letterText, textPath, pdfPath string, skip, keep bool) (err error) {
	err = renderer.WriteFile([]byte(letterText+"\n"), textPath)
	if err != nil {
		return err
	}

	if skip {
		return err
	}

	var pdfBytes []byte
	pdfBytes, err = gen.Render(letterText)
	if err != nil {
		return err
	}

	err = renderer.WriteFile(pdfBytes, pdfPath)
	if err != nil {
		return err
	}

	if !keep {
		err = renderer.Cleanup(textPath)
	}
	return err
}

func printSummary(draft coverletter.Draft, textPath, pdfPath string, skip, keep bool) {
	fmt.Printf("\nCover letter for %s generated for %s\n", draft.Candidate, draft.Company)
	if keep || skip {
		fmt.Printf("  Text: %s\n", textPath)
	}
	if !skip {
		fmt.Printf("  PDF:  %s\n", pdfPath)
	} else {
		fmt.Println("\nEdit the text, then run:")
		fmt.Printf("  cover-letter render %s\n", textPath)
	}
}
