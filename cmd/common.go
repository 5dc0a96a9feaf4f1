package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nikogura/cover-letter/pkg/config"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/nikogura/cover-letter/pkg/letter"
	"github.com/nikogura/cover-letter/pkg/llm"
	"github.com/nikogura/cover-letter/pkg/renderer"
	"github.com/pkg/errors"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (ctx context.Context, cancel context.CancelFunc) {
	ctx, cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, cancel
}

// rendererOptions maps the PDF section of the config onto renderer options.
func rendererOptions(cfg config.Config) (opts renderer.Options) {
	opts = renderer.DefaultOptions()
	opts.PageWidth = cfg.PDF.PageWidth
	opts.PageHeight = cfg.PDF.PageHeight
	opts.Margin = cfg.PDF.GetMargin()
	opts.FontFamily = cfg.PDF.FontFamily
	opts.FontSize = cfg.PDF.FontSize
	opts.LineHeight = cfg.PDF.LineHeight
	opts.BlankLineSpacing = cfg.PDF.BlankLineSpacing
	return opts
}

func newRenderer(cfg config.Config) (r *renderer.Renderer, err error) {
	r, err = renderer.New(rendererOptions(cfg))
	if err != nil {
		err = errors.Wrap(err, "invalid pdf settings")
		return r, err
	}
	return r, err
}

// newGenerator wires the configured completer and renderer into a pipeline.
func newGenerator(cfg config.Config) (gen *coverletter.Generator, err error) {
	var completer llm.Completer
	completer, err = llm.NewCompleter(cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to create completion client")
		return gen, err
	}

	var r *renderer.Renderer
	r, err = newRenderer(cfg)
	if err != nil {
		return gen, err
	}

	gen = coverletter.NewGenerator(completer, r, coverletter.WithLogger(slog.Default()))
	return gen, err
}

func getOutputDir(flagValue, configValue string) (outDir string) {
	outDir = flagValue
	if outDir == "" {
		outDir = configValue
	}
	return outDir
}

func createCompanyOutputDir(baseOutDir, company string) (outDir string, err error) {
	companyDir := letter.Slug(company)
	if companyDir == "" {
		companyDir = letter.Slug(letter.DefaultCompanyName)
	}
	outDir = filepath.Join(baseOutDir, companyDir)
	err = os.MkdirAll(outDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outDir)
		return outDir, err
	}
	return outDir, err
}
