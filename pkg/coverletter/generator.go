package coverletter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nikogura/cover-letter/pkg/letter"
	"github.com/nikogura/cover-letter/pkg/llm"
	"github.com/nikogura/cover-letter/pkg/resume"
	"github.com/pkg/errors"
)

// Request is the input to a single generation.
type Request struct {
	// ResumePDF is the uploaded résumé. ResumeText is used when it is empty.
	ResumePDF      []byte
	ResumeText     string
	JobDescription string
	CompanyAddress string
}

// Draft is a generated, sanitized letter ready for review.
type Draft struct {
	Letter      string    `json:"letter"`
	Company     string    `json:"company"`
	Candidate   string    `json:"candidate"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PDFRenderer turns letter text into PDF bytes.
type PDFRenderer interface {
	Render(text string) (pdfBytes []byte, err error)
}

// Extractor returns the text of a PDF résumé.
type Extractor func(data []byte) (text string, err error)

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the source of the letter date.
func WithClock(now func() time.Time) (opt Option) {
	opt = func(g *Generator) {
		g.now = now
	}
	return opt
}

// WithExtractor replaces PDF text extraction.
func WithExtractor(extract Extractor) (opt Option) {
	opt = func(g *Generator) {
		g.extract = extract
	}
	return opt
}

// WithLogger sets the logger for pipeline diagnostics.
func WithLogger(logger *slog.Logger) (opt Option) {
	opt = func(g *Generator) {
		g.logger = logger
	}
	return opt
}

// Generator runs the cover letter pipeline. It holds no per-request state
// and is safe for concurrent use if its collaborators are.
type Generator struct {
	completer llm.Completer
	renderer  PDFRenderer
	extract   Extractor
	now       func() time.Time
	logger    *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(completer llm.Completer, renderer PDFRenderer, opts ...Option) (g *Generator) {
	g = &Generator{
		completer: completer,
		renderer:  renderer,
		extract:   resume.ExtractText,
		now:       time.Now,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate validates req, extracts the résumé, asks the model for a letter
// and returns it sanitized. Failures are tagged ErrInputValidation or
// ErrGeneration and are never retried.
func (g *Generator) Generate(ctx context.Context, req Request) (draft Draft, err error) {
	err = validate(req)
	if err != nil {
		g.logger.WarnContext(ctx, "rejected cover letter request", "error", err)
		return draft, err
	}

	var resumeText string
	resumeText, err = g.resumeText(req)
	if err != nil {
		g.logger.WarnContext(ctx, "resume extraction failed", "error", err)
		return draft, err
	}

	prompt := llm.BuildCoverLetterPrompt(resumeText, req.JobDescription, req.CompanyAddress, g.now())

	start := time.Now()
	var raw string
	raw, err = g.completer.Complete(ctx, prompt)
	if err != nil {
		err = newError(ErrGeneration, err)
		g.logger.ErrorContext(ctx, "completion failed", "model", g.completer.Model(), "error", err)
		return draft, err
	}

	text := letter.Sanitize(raw)
	if text == "" {
		err = newError(ErrGeneration, errors.New("model returned an empty letter"))
		g.logger.ErrorContext(ctx, "completion failed", "model", g.completer.Model(), "error", err)
		return draft, err
	}

	draft = Draft{
		Letter:      text,
		Company:     letter.ExtractCompanyName(text),
		Candidate:   letter.ExtractCandidateName(text),
		Model:       g.completer.Model(),
		GeneratedAt: g.now(),
	}

	g.logger.InfoContext(ctx, "cover letter generated",
		"company", draft.Company,
		"model", draft.Model,
		"duration", time.Since(start),
	)

	return draft, err
}

// Render sanitizes letterText and renders it to PDF.
func (g *Generator) Render(letterText string) (pdfBytes []byte, err error) {
	text := letter.Sanitize(letterText)
	if text == "" {
		err = newError(ErrInputValidation, errors.New("letter text is empty"))
		return pdfBytes, err
	}

	pdfBytes, err = g.renderer.Render(text)
	if err != nil {
		err = newError(ErrRender, err)
		g.logger.Error("pdf rendering failed", "error", err)
		pdfBytes = nil
		return pdfBytes, err
	}

	return pdfBytes, err
}

// Model reports the completion model in use.
func (g *Generator) Model() (model string) {
	model = g.completer.Model()
	return model
}

func validate(req Request) (err error) {
	if len(req.ResumePDF) == 0 && strings.TrimSpace(req.ResumeText) == "" {
		err = newError(ErrInputValidation, errors.New("a resume is required"))
		return err
	}

	if strings.TrimSpace(req.JobDescription) == "" {
		err = newError(ErrInputValidation, errors.New("job description is empty"))
		return err
	}

	return err
}

func (g *Generator) resumeText(req Request) (text string, err error) {
	if len(req.ResumePDF) == 0 {
		text = req.ResumeText
		return text, err
	}

	text, err = g.extract(req.ResumePDF)
	if err != nil {
		err = newError(ErrInputValidation, errors.Wrap(err, "could not read resume PDF"))
		return text, err
	}

	if strings.TrimSpace(text) == "" {
		err = newError(ErrInputValidation, errors.New("no text could be extracted from the resume"))
		return text, err
	}

	return text, err
}
