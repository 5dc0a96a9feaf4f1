package cmd

import (
	"log/slog"

	"github.com/nikogura/cover-letter/pkg/config"
	"github.com/nikogura/cover-letter/pkg/coverletter"
	"github.com/nikogura/cover-letter/pkg/server"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cover letter HTTP API",
	Long: `Run the cover letter HTTP API until interrupted.

Routes:
  GET    /api/v1/health
  POST   /api/v1/letters           multipart: resume (PDF), job_description, company_address
  GET    /api/v1/letters/:id
  PUT    /api/v1/letters/:id       JSON: {"letter": "..."}
  DELETE /api/v1/letters/:id
  GET    /api/v1/letters/:id/pdf
  POST   /api/v1/pdf               JSON: {"letter": "..."}

Drafts are held in memory and expire after server.draft_ttl_minutes.

Example:
  cover-letter serve
  cover-letter serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config or COVER_LETTER_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := signalContext()
	defer cancel()

	var cfg config.Config
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return err
	}

	var gen *coverletter.Generator
	gen, err = newGenerator(cfg)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(gen, cfg.Server, slog.Default())
	err = srv.Run(ctx, addr)
	return err
}
