package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FreePeak/cortex/pkg/server"
	"github.com/spf13/cobra"

	"github.com/FreePeak/turso-mcp-server/internal/delivery/mcp"
	"github.com/FreePeak/turso-mcp-server/internal/logger"
	"github.com/FreePeak/turso-mcp-server/internal/metrics"
	"github.com/FreePeak/turso-mcp-server/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(verbose *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tool catalog over MCP stdio (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *verbose)
		},
	}
}

func serve(ctx context.Context, verbose bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(verbose)
	if err != nil {
		return err
	}
	defer a.Close()

	metrics.BuildInfo.WithLabelValues(version).Set(1)

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Endpoint:       a.cfg.OtelExporterOtlpEndpoint,
		Insecure:       a.cfg.OtelExporterOtlpInsecure,
		ServiceName:    serverName,
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Error shutting down tracing: %v", err)
		}
	}()

	if a.cfg.MetricsAddr != "" {
		metricsServer := startMetricsServer(a.cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Metrics server shutdown error: %v", err)
			}
		}()
	}

	logWriter := logger.Writer()
	defer logWriter.Close()

	mcpServer := server.NewMCPServer(serverName, version, log.New(logWriter, "", 0))
	wrapper := mcp.NewServerWrapper(mcpServer)
	registry := mcp.NewToolRegistry(wrapper, a.dispatcher)
	if err := registry.RegisterAllTools(ctx); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	logger.Info("Serving %d tools over stdio for %s", len(registry.Registered()), a.gateway.ConnectionString())

	errCh := make(chan error, 1)
	go func() {
		errCh <- wrapper.ServeStdio()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("stdio server error: %w", err)
		}
		logger.Info("Stdio stream closed")
		return nil
	}
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}
