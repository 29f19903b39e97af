package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/laiyunwu/casestudy12/internal/app"
	"github.com/laiyunwu/casestudy12/internal/appconf"
	"github.com/laiyunwu/casestudy12/internal/logging"
	"github.com/laiyunwu/casestudy12/internal/mcp"
)

var mcpFlags struct {
	case1   string
	case2   string
	db      string
	verbose bool
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analytics as MCP tools over stdio",
	Long: `Starts an MCP (Model Context Protocol) server on stdin/stdout so
agents can run forecasts, allocations, and scenarios directly. Logs go
to stderr; stdout carries the protocol.`,
	RunE: runMCP,
}

func init() {
	f := mcpCmd.Flags()
	f.StringVar(&mcpFlags.case1, "case1", "", "Historical sales dataset (CSV or XLSX); generated data when empty")
	f.StringVar(&mcpFlags.case2, "case2", "", "Supply and demand dataset (CSV or XLSX); generated data when empty")
	f.StringVar(&mcpFlags.db, "db", ":memory:", "Run history SQLite path")
	f.BoolVar(&mcpFlags.verbose, "verbose", false, "Enable debug logging")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	config := appconf.Config{
		Env:       appconf.Development,
		Case1Path: mcpFlags.case1,
		Case2Path: mcpFlags.case2,
		DBPath:    mcpFlags.db,
		Verbose:   mcpFlags.verbose,
		Version:   version,
	}
	logger := logging.NewStructuredLogger(os.Stderr, logLevel(config.Verbose))

	application, err := app.NewApplication(config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			logging.LogError(logger, "failed to close run database", err)
		}
	}()

	srv := mcp.NewServer(application)
	logger.Info("starting MCP server over stdio", "version", version)
	return srv.Run(cmd.Context())
}
