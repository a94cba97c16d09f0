package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/dshills/websymbols-mcp/internal/config"
	"github.com/dshills/websymbols-mcp/internal/loader"
	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/internal/query"
	"github.com/dshills/websymbols-mcp/internal/registry"
	"github.com/dshills/websymbols-mcp/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "websymbols-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp     *server.MCPServer
	config  *config.Config
	storage storage.Storage
	loader  *loader.Loader
	query   *query.Service
}

// NewServer creates a new MCP server instance. Manifests kept in the
// database from earlier runs are registered before the server is returned.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	dbPath, err := config.ExpandHome(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	cfg.DBPath = dbPath
	if err := cfg.EnsureDBDir(); err != nil {
		return nil, err
	}

	// Initialize storage
	store, err := storage.NewSQLiteStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	catalog := registry.NewCatalog(cfg.Framework, names.DefaultFrameworks())
	ldr := loader.New(store, catalog)

	restored, err := ldr.Restore(ctx)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to restore manifests: %w", err)
	}
	log.Debug().Int("manifests", restored).Str("db", cfg.DBPath).Msg("Manifests restored")

	// Create MCP server
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		mcp:     mcpServer,
		config:  cfg,
		storage: store,
		loader:  ldr,
		query:   query.NewService(catalog, store, cfg.Cache.SizeOrDefault()),
	}

	// Register tools
	if err := s.registerTools(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Loader returns the loader feeding the server's catalog
func (s *Server) Loader() *loader.Loader {
	return s.loader
}

// Query returns the query service behind the tools
func (s *Server) Query() *query.Service {
	return s.query
}

// LoadConfigured loads the manifest directories named in the configuration.
// It is a no-op when none are configured.
func (s *Server) LoadConfigured(ctx context.Context) (*loader.Statistics, error) {
	if len(s.config.ManifestDirs) == 0 {
		return &loader.Statistics{}, nil
	}
	return s.loader.Load(ctx, s.config.ManifestDirs, s.loaderConfig(false, false, false))
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.Close() }()

	if _, err := s.LoadConfigured(ctx); err != nil {
		// The server stays usable with whatever was restored
		log.Warn().Err(err).Msg("Failed to load configured manifest directories")
	}

	return server.ServeStdio(s.mcp)
}

// Close releases the storage
func (s *Server) Close() error {
	return s.storage.Close()
}

func (s *Server) loaderConfig(force, includeNodeModules, keepMissing bool) *loader.Config {
	return &loader.Config{
		Workers:            s.config.Workers,
		IncludeNodeModules: includeNodeModules,
		Force:              force,
		KeepMissing:        keepMissing,
		Strict:             s.config.Strict,
	}
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	s.mcp.AddTool(loadManifestsTool(), s.handleLoadManifests)
	s.mcp.AddTool(getNamesTool(), s.handleGetNames)
	s.mcp.AddTool(adjustRenameTool(), s.handleAdjustRename)
	s.mcp.AddTool(matchNameTool(), s.handleMatchName)
	s.mcp.AddTool(completeNameTool(), s.handleCompleteName)
	s.mcp.AddTool(getSymbolTool(), s.handleGetSymbol)
	s.mcp.AddTool(searchSymbolsTool(), s.handleSearchSymbols)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
