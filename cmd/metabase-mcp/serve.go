package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/config"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/logging"
	"github.com/rhonorato-ship-it/metabase-mcp/pkg/tools"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP tools over stdio",
	Long:  `Serve the retrieve tool over stdio. Logs go to stderr. With --metrics-addr, /health, /ready, and /metrics are served over HTTP.`,
	RunE:  runServe,
}

var metricsAddr string

func init() {
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "listen address for /health, /ready and /metrics (e.g. :9090)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.Metrics.Addr = metricsAddr
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           newMux(a.redis),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.Info().Str("addr", cfg.Metrics.Addr).Msg("Starting metrics server")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error().Err(err).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	toolLogger := logging.NewLogger("tools")
	mcpServer := tools.NewServer(tools.NewHandler(a.retriever, toolLogger), version)

	a.logger.Info().
		Str("version", version).
		Str("metabase", cfg.Metabase.URL).
		Bool("cache", cfg.Cache.Enabled).
		Msg("Serving MCP over stdio")

	errorLog := log.New(toolLogger, "", 0)
	if err := server.ServeStdio(mcpServer, server.WithErrorLogger(errorLog)); err != nil {
		return err
	}

	a.logger.Info().Msg("MCP server stopped")
	return nil
}
