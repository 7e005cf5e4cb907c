package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/FreePeak/turso-mcp-server/internal/config"
	"github.com/FreePeak/turso-mcp-server/internal/logger"
	"github.com/FreePeak/turso-mcp-server/internal/usecase"
	"github.com/FreePeak/turso-mcp-server/pkg/db"
)

const serverName = "turso-mcp-server"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

type exitCode int

const (
	exitCodeSuccess exitCode = 0
	exitCodeError   exitCode = 1
)

// errToolFailed marks a call whose envelope was a failure. The envelope text
// has already been printed.
var errToolFailed = errors.New("tool call failed")

func main() {
	os.Exit(int(run(context.Background(), os.Args[1:], os.Stdout)))
}

func run(ctx context.Context, args []string, out io.Writer) exitCode {
	rootCmd := newRootCmd(out)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errToolFailed) {
			logger.Error("%v", err)
		}
		return exitCodeError
	}
	return exitCodeSuccess
}

func newRootCmd(out io.Writer) *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           serverName,
		Short:         "MCP server exposing Turso / libSQL database tools over stdio",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")

	rootCmd.AddCommand(
		newServeCmd(&verbose),
		newToolsCmd(out, &verbose),
		newCallCmd(out, &verbose),
	)
	return rootCmd
}

// app holds the components shared by every subcommand
type app struct {
	cfg        *config.Config
	gateway    *db.Gateway
	dispatcher *usecase.Dispatcher
}

func newApp(verbose bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Initialize(cfg.LogLevel)
	if verbose {
		logger.Initialize("debug")
	}
	logger.SetFormat(cfg.LogFormat)

	gateway, err := db.NewGateway(cfg.Database())
	if err != nil {
		return nil, fmt.Errorf("failed to create database gateway: %w", err)
	}

	dispatcher, err := usecase.NewDispatcher(gateway, usecase.Options{
		Prefix:            cfg.ToolPrefix,
		StrictIdentifiers: cfg.StrictIdentifiers,
	})
	if err != nil {
		_ = gateway.Close()
		return nil, err
	}

	return &app{cfg: cfg, gateway: gateway, dispatcher: dispatcher}, nil
}

func (a *app) Close() {
	if err := a.gateway.Close(); err != nil {
		logger.Warn("Error closing database connection: %v", err)
	}
}
