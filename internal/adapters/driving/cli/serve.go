package cli

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/normativa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/normativa/internal/adapters/driving/watch"
	"github.com/custodia-labs/normativa/internal/logger"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the ask interface over HTTP.

Endpoints:
  GET  /health  liveness check
  POST /ask     {"question": "...", "provider": "", "model": "", "k": 4, "rag": true, "show_sources": false}

The server starts even when the chunk table does not exist yet; grounded
questions answer 503 until it does. With --watch the index is rebuilt
whenever 'normativa ingest' replaces the table.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reload the index when the chunk table changes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	if err := wireServices(ctx); err != nil {
		return err
	}
	if askService == nil {
		return errors.New("ask service not configured")
	}
	if retriever == nil {
		return errors.New("retriever not configured")
	}

	settings := currentSettings()
	if err := loadIndex(ctx); err != nil {
		logger.Warn("Serving without an index: %v", err)
	}

	if serveWatch {
		w := watch.NewTableWatcher(settings.Paths.ChunkTable, retriever)
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch chunk table: %w", err)
		}
	}

	if !logger.IsVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}
	server, err := httpapi.NewServer(askService)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = settings.Server.Addr
	}
	cmd.Printf("Serving on %s (%d chunks indexed)\n", addr, retriever.Size())
	return server.Run(ctx, addr)
}
