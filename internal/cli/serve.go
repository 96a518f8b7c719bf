package cli

import (
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"docrag/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Starts the HTTP API exposing the document collection:

  POST /upload          Upload PDF documents (multipart, field "files")
  POST /query           Ask a question over the ingested documents
  GET  /list-documents  List ingested documents
  POST /clear           Remove all documents

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline(cfg, rootDir, true)
		if err != nil {
			return err
		}
		defer p.Close()

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(server.Config{
			Addr:        addr,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, p.ingest, p.answer, p.documents, log.Default())

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8000)")
	rootCmd.AddCommand(serveCmd)
}
