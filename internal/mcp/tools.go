package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/websymbols-mcp/internal/loader"
	"github.com/dshills/websymbols-mcp/internal/query"
	"github.com/dshills/websymbols-mcp/internal/storage"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams  = -32602 // Invalid method parameters
	ErrorCodeInternalError  = -32603 // Internal JSON-RPC error
	ErrorCodePathNotFound   = -32001 // Specified path does not exist
	ErrorCodeLoadInProgress = -32002 // Another load operation is already running
	ErrorCodeNothingLoaded  = -32003 // No manifest is registered
	ErrorCodeEmptyName      = -32004 // Name or query parameter is empty
)

// maxReportedErrors bounds the error and warning lists in a load response
const maxReportedErrors = 5

// handleLoadManifests handles the load_manifests tool invocation
func (s *Server) handleLoadManifests(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	paths := getStringSlice(args, "paths")
	if len(paths) == 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "paths parameter is required", map[string]interface{}{
			"param":  "paths",
			"reason": "missing or empty",
		})
	}
	for _, p := range paths {
		if err := validatePath(p); err != nil {
			code := ErrorCodeInvalidParams
			if errors.Is(err, ErrPathNotFound) {
				code = ErrorCodePathNotFound
			}
			return nil, newMCPError(code, "invalid path", map[string]interface{}{
				"param":  "paths",
				"path":   p,
				"reason": err.Error(),
			})
		}
	}

	config := s.loaderConfig(
		getBoolDefault(args, "force", false),
		getBoolDefault(args, "include_node_modules", false),
		getBoolDefault(args, "keep_missing", false),
	)

	stats, err := s.loader.Load(ctx, paths, config)
	if err != nil {
		return nil, toMCPError(err, "loading failed")
	}

	response := map[string]interface{}{
		"loaded":             true,
		"manifests_loaded":   stats.ManifestsLoaded,
		"manifests_skipped":  stats.ManifestsSkipped,
		"manifests_failed":   stats.ManifestsFailed,
		"manifests_removed":  stats.ManifestsRemoved,
		"contribution_count": stats.ContributionCount,
		"duration_ms":        stats.Duration.Milliseconds(),
	}
	addLimited(response, "errors", "error_count", stats.ErrorMessages)
	addLimited(response, "warnings", "warning_count", stats.Warnings)

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetNames handles the get_names tool invocation
func (s *Server) handleGetNames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	target, err := getTarget(args)
	if err != nil {
		return nil, err
	}
	name, err := requireName(args, "name")
	if err != nil {
		return nil, err
	}

	nameTarget := getStringDefault(args, "target", types.TargetQuery.String())
	forms, err := s.query.Names(ctx, query.NamesRequest{Target: target, Name: name, NameTarget: nameTarget})
	if err != nil {
		return nil, toMCPError(err, "failed to compute names")
	}

	response := map[string]interface{}{
		"kind":   kindPath(target),
		"name":   name,
		"target": nameTarget,
		"names":  forms,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleAdjustRename handles the adjust_rename tool invocation
func (s *Server) handleAdjustRename(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	target, err := getTarget(args)
	if err != nil {
		return nil, err
	}
	oldName, err := requireName(args, "old_name")
	if err != nil {
		return nil, err
	}
	newName, err := requireName(args, "new_name")
	if err != nil {
		return nil, err
	}
	occurrence, err := requireName(args, "occurrence")
	if err != nil {
		return nil, err
	}

	adjusted, err := s.query.AdjustRename(ctx, query.RenameRequest{
		Target:     target,
		OldName:    oldName,
		NewName:    newName,
		Occurrence: occurrence,
	})
	if err != nil {
		return nil, toMCPError(err, "failed to adjust rename")
	}

	response := map[string]interface{}{
		"kind":       kindPath(target),
		"occurrence": occurrence,
		"renamed":    adjusted,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleMatchName handles the match_name tool invocation
func (s *Server) handleMatchName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	target, err := getTarget(args)
	if err != nil {
		return nil, err
	}
	name, err := requireName(args, "name")
	if err != nil {
		return nil, err
	}
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}

	resp, err := s.query.Match(ctx, query.MatchRequest{
		Target:  target,
		Name:    name,
		Context: getStringSlice(args, "context"),
	})
	if err != nil {
		return nil, toMCPError(err, "match failed")
	}

	response := map[string]interface{}{
		"kind":      kindPath(target),
		"name":      name,
		"matched":   len(resp.Symbols) > 0,
		"symbols":   resp.Symbols,
		"cache_hit": resp.CacheHit,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCompleteName handles the complete_name tool invocation
func (s *Server) handleCompleteName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	target, err := getTarget(args)
	if err != nil {
		return nil, err
	}
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}

	limit := getIntDefault(args, "limit", 50)
	if limit < 1 || limit > 500 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 500", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	// Name may be empty: completing at the start of an attribute or tag
	name := getStringDefault(args, "name", "")
	resp, err := s.query.Complete(ctx, query.CompleteRequest{
		Target:            target,
		Name:              name,
		Position:          getIntDefault(args, "position", -1),
		Context:           getStringSlice(args, "context"),
		IncludeDeprecated: getBoolDefault(args, "include_deprecated", false),
		Limit:             limit,
	})
	if err != nil {
		return nil, toMCPError(err, "completion failed")
	}

	response := map[string]interface{}{
		"kind":      kindPath(target),
		"name":      name,
		"items":     resp.Items,
		"total":     resp.Total,
		"cache_hit": resp.CacheHit,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetSymbol handles the get_symbol tool invocation
func (s *Server) handleGetSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	path, err := requireName(args, "path")
	if err != nil {
		return nil, err
	}
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}

	symbols, err := s.query.Symbol(ctx, path, getStringSlice(args, "context"))
	if err != nil {
		return nil, toMCPError(err, "failed to resolve symbol")
	}

	response := map[string]interface{}{
		"path":    path,
		"symbols": symbols,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchSymbols handles the search_symbols tool invocation
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	q, ok := args["query"].(string)
	if !ok || q == "" {
		return nil, newMCPError(ErrorCodeEmptyName, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}
	if err := s.requireLoaded(); err != nil {
		return nil, err
	}

	resp, err := s.query.Search(ctx, query.SearchRequest{
		Query:             q,
		Limit:             limit,
		Namespaces:        getStringSlice(args, "namespaces"),
		Kinds:             getStringSlice(args, "kinds"),
		Libraries:         getStringSlice(args, "libraries"),
		TopLevelOnly:      getBoolDefault(args, "top_level_only", false),
		IncludeDeprecated: getBoolDefault(args, "include_deprecated", false),
		IncludeAbstract:   getBoolDefault(args, "include_abstract", false),
	})
	if err != nil {
		return nil, toMCPError(err, "search failed")
	}

	response := map[string]interface{}{
		"query":         q,
		"results":       resp.Hits,
		"total_results": len(resp.Hits),
		"duration_ms":   resp.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.query.Status(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"loaded":             status.Manifests > 0,
		"loading":            s.loader.Loading(),
		"framework":          status.Framework,
		"modification_count": status.ModificationCount,
		"kinds":              status.Kinds,
		"libraries":          status.Libraries,
		"cache": map[string]interface{}{
			"entries": status.CacheEntries,
			"hits":    status.CacheHits,
			"misses":  status.CacheMisses,
		},
	}
	if status.Manifests == 0 {
		response["message"] = "No manifests loaded. Use load_manifests tool to load web-types manifests."
	}

	if st := status.Storage; st != nil {
		statistics := map[string]interface{}{
			"manifests_count":     st.ManifestsCount,
			"failed_count":        st.FailedCount,
			"contributions_count": st.ContributionsCount,
			"patterns_count":      st.PatternsCount,
			"database_size_mb":    fmt.Sprintf("%.2f", st.DatabaseSizeMB),
		}
		if st.LastLoad != nil {
			statistics["last_load_at"] = st.LastLoad.StartedAt.Format("2006-01-02T15:04:05Z07:00")
			statistics["last_load_roots"] = st.LastLoad.Roots
		}
		response["statistics"] = statistics
		response["health"] = map[string]interface{}{
			"database_accessible": st.Health.DatabaseAccessible,
			"fts_indexes_built":   st.Health.FTSIndexesBuilt,
			"schema_version":      st.Health.SchemaVersion,
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// requireLoaded fails with ErrorCodeNothingLoaded while the catalog is empty
func (s *Server) requireLoaded() error {
	if s.loader.Catalog().Len() > 0 {
		return nil
	}
	return newMCPError(ErrorCodeNothingLoaded, "no manifests loaded", map[string]interface{}{
		"hint": "use load_manifests first",
	})
}

// arguments returns the tool arguments; a call without arguments yields an empty map
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// getTarget reads the namespace and kind parameters
func getTarget(args map[string]interface{}) (query.Target, error) {
	target := query.Target{
		Namespace: getStringDefault(args, "namespace", ""),
		Kind:      getStringDefault(args, "kind", ""),
	}
	for _, p := range []struct{ param, value string }{
		{"namespace", target.Namespace},
		{"kind", target.Kind},
	} {
		if p.value == "" {
			return target, newMCPError(ErrorCodeInvalidParams, p.param+" parameter is required", map[string]interface{}{
				"param":  p.param,
				"reason": "missing or empty",
			})
		}
	}
	return target, nil
}

// requireName reads a string parameter that must not be empty
func requireName(args map[string]interface{}, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", newMCPError(ErrorCodeEmptyName, key+" parameter is required and cannot be empty", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return v, nil
}

// toMCPError maps service errors onto MCP error codes
func toMCPError(err error, message string) error {
	code := ErrorCodeInternalError
	switch {
	case errors.Is(err, query.ErrEmptyName), errors.Is(err, storage.ErrEmptyQuery):
		code = ErrorCodeEmptyName
	case errors.Is(err, loader.ErrPathNotFound):
		code = ErrorCodePathNotFound
	case errors.Is(err, loader.ErrLoadInProgress):
		code = ErrorCodeLoadInProgress
	case errors.Is(err, types.ErrEmptyNamespace),
		errors.Is(err, types.ErrEmptyKind),
		errors.Is(err, types.ErrInvalidNamespace),
		errors.Is(err, types.ErrInvalidTarget),
		errors.Is(err, query.ErrInvalidPosition),
		errors.Is(err, query.ErrUnknownReference),
		errors.Is(err, loader.ErrNoRoots):
		code = ErrorCodeInvalidParams
	}
	return newMCPError(code, message, map[string]interface{}{
		"error": err.Error(),
	})
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks if a manifest file or directory exists and is accessible
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	// Check if path is absolute
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	// Check if path exists
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	// Check if it is readable
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	if !info.IsDir() && !info.Mode().IsRegular() {
		return ErrNotRegular
	}
	return nil
}

func kindPath(t query.Target) string {
	return "/" + t.Namespace + "/" + t.Kind
}

// addLimited stores at most maxReportedErrors messages under key and the full
// count under countKey when the list was cut
func addLimited(response map[string]interface{}, key, countKey string, messages []string) {
	if len(messages) == 0 {
		return
	}
	if len(messages) > maxReportedErrors {
		response[key] = messages[:maxReportedErrors]
		response[countKey] = len(messages)
		return
	}
	response[key] = messages
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter; a single string is
// accepted as a one-element array
func getStringSlice(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, v := range val {
			if s, ok := v.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val != "" {
			return []string{val}
		}
	}
	return nil
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotRegular      = errors.New("path is neither a file nor a directory")
)
