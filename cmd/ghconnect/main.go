// Ghconnect is an MCP server exposing GitHub repository access tools.
//
// It serves eight tools over the MCP stdio transport: listing and inspecting
// remote repositories, browsing and reading files, searching file names and
// code, cloning repositories locally, and listing local checkouts.
//
// Configuration is loaded from ~/.config/ghconnect/config.yaml and
// GHCONNECT_-prefixed environment variables; the GitHub credential comes from
// GITHUB_TOKEN. See internal/config for details.
//
// Usage:
//
//	# Start the MCP server on stdio
//	GITHUB_TOKEN=ghp_xxx ghconnect serve
//
//	# Show version information
//	ghconnect version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/ghconnect/internal/config"
	"github.com/fyrsmithlabs/ghconnect/internal/gateway"
	"github.com/fyrsmithlabs/ghconnect/internal/localgit"
	"github.com/fyrsmithlabs/ghconnect/internal/logging"
	"github.com/fyrsmithlabs/ghconnect/internal/mcp"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// configPath overrides the default config file location
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ghconnect",
	Short: "MCP server for GitHub repository access",
	Long: `ghconnect exposes GitHub repository access as MCP tools over stdio:
listing repositories, browsing and reading files, searching, and cloning.`,
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	Long: `Start the MCP server on the stdio transport.

The server reads MCP protocol messages on stdin and writes responses to
stdout; all logging goes to stderr.

Examples:
  # Start with the default config
  GITHUB_TOKEN=ghp_xxx ghconnect serve

  # Start with an explicit config file
  ghconnect serve --config /etc/ghconnect/config.yaml`,
	RunE: runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ghconnect\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/ghconnect/config.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// runServe wires the full server: config, logger, GitHub client, local git
// client, dispatcher, and the MCP stdio transport. Blocks until the client
// disconnects or a shutdown signal arrives.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	remote := gateway.NewRemoteClient(ctx, cfg.GitHub.Token, cfg.Content.MaxFileBytes, logger)

	vcs := localgit.NewClient(cfg.Clone.BaseDir, cfg.Clone.Timeout.Duration(), logger)

	dispatcher, err := gateway.NewDispatcher(remote, vcs, logger)
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	srv, err := mcp.NewServer(&mcp.Config{
		Name:    "ghconnect",
		Version: version,
		Logger:  logger,
	}, dispatcher)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.Info("ghconnect starting",
		zap.String("version", version),
		zap.String("clone_base", cfg.Clone.BaseDir),
		zap.Bool("token_configured", cfg.GitHub.Token.IsSet()))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("server shutdown complete")
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadWithFile(configPath)
	}
	return config.Load()
}
