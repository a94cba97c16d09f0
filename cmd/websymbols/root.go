package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dshills/websymbols-mcp/internal/config"
	mcpserver "github.com/dshills/websymbols-mcp/internal/mcp"
)

var (
	configPath   string
	dbPathFlag   string
	logLevelFlag string

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "websymbols",
	Short: "Web Symbols name matching and completion",
	Long: `websymbols loads web-types manifests and answers name matching, completion
and documentation queries for HTML, CSS and JavaScript symbols. The serve
command exposes the same queries to AI assistants over MCP.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.SetVersionTemplate("websymbols version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ~/.websymbols/config.toml if present)")
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "",
		"Database path (overrides db_path and WEBSYMBOLS_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: trace, debug, info, warn, error")
}

// loadConfig resolves the configuration and sets up the global logger.
// Precedence: flags > environment > config file > defaults
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPathFlag != "" {
		if loaded.DBPath, err = config.ExpandHome(dbPathFlag); err != nil {
			return err
		}
	}
	if logLevelFlag != "" {
		loaded.Log.Level = logLevelFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	setupLogger(os.Stderr, cfg.Log)
	return nil
}

// setupLogger configures the global zerolog logger. Logs always go to
// stderr since stdout carries MCP protocol messages and command output.
func setupLogger(w io.Writer, lc config.LogConfig) {
	level := zerolog.InfoLevel
	if lc.Level != "" {
		if parsed, err := zerolog.ParseLevel(lc.Level); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	if lc.Format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// openServer creates the application with manifests restored from the database
func openServer(ctx context.Context) (*mcpserver.Server, error) {
	server, err := mcpserver.NewServer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.DBPath, err)
	}
	return server, nil
}

// printJSON writes v as indented JSON to the command output
func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
