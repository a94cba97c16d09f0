// Package mcp implements the Model Context Protocol (MCP) server for Web Symbols.
//
// The MCP server exposes web-types knowledge to AI coding assistants:
//   - load_manifests: Load web-types manifests from files, package.json files or directories
//   - get_names: List the query, storage or completion forms of a name
//   - adjust_rename: Compute how an occurrence changes when a symbol is renamed
//   - match_name: Match a name against loaded symbols and patterns
//   - complete_name: Propose completions for a partially typed name
//   - get_symbol: Resolve a symbol reference path and return its documentation
//   - search_symbols: Full-text search over loaded contributions
//   - get_status: Report loaded manifests and statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Basic Usage
//
// The MCP server is typically started via the serve command:
//
//	websymbols serve
//
// On start the server registers the manifests kept in its database and then
// loads the manifest_dirs named in the configuration.
//
// # Tool: load_manifests
//
//	Request:
//	{
//	  "name": "load_manifests",
//	  "arguments": {
//	    "paths": ["/path/to/project"],
//	    "force": false
//	  }
//	}
//
//	Response:
//	{
//	  "loaded": true,
//	  "manifests_loaded": 3,
//	  "manifests_skipped": 0,
//	  "manifests_failed": 0,
//	  "manifests_removed": 0,
//	  "contribution_count": 412,
//	  "duration_ms": 38
//	}
//
// # Tool: match_name
//
// Context lists the enclosing symbols, outermost first:
//
//	Request:
//	{
//	  "name": "match_name",
//	  "arguments": {
//	    "namespace": "html",
//	    "kind": "attributes",
//	    "name": "size",
//	    "context": ["/html/elements/my-button"]
//	  }
//	}
//
//	Response:
//	{
//	  "matched": true,
//	  "symbols": [
//	    {
//	      "namespace": "html",
//	      "kind": "attributes",
//	      "name": "size",
//	      "matched_name": "size",
//	      "library": "my-lib",
//	      "version": "1.0.0",
//	      "segments": [{"start": 0, "end": 4, "symbols": ["/html/attributes/size"]}]
//	    }
//	  ]
//	}
//
// # Tool: complete_name
//
//	Request:
//	{
//	  "name": "complete_name",
//	  "arguments": {
//	    "namespace": "html",
//	    "kind": "elements",
//	    "name": "my-b"
//	  }
//	}
//
//	Response:
//	{
//	  "items": [{"name": "my-button", "offset": 0, "priority": "normal"}],
//	  "total": 1
//	}
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "websymbols": {
//	      "command": "/usr/local/bin/websymbols",
//	      "args": ["serve"],
//	      "env": {
//	        "WEBSYMBOLS_MANIFEST_DIRS": "/path/to/project"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// Handlers return *MCPError values:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "invalid path",
//	    "data": {
//	      "param": "paths",
//	      "reason": "path must be absolute"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments, unknown reference)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Path not found
//   - -32002: Load in progress
//   - -32003: No manifests loaded
//   - -32004: Empty name or query
//
// # Logging
//
// The MCP server logs to stderr (stdout is reserved for MCP protocol):
//
//	WEBSYMBOLS_LOG_LEVEL=debug websymbols serve
package mcp
