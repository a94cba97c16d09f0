package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// kindProperties returns the namespace and kind parameters shared by the name tools
func kindProperties() map[string]interface{} {
	return map[string]interface{}{
		"namespace": map[string]interface{}{
			"type":        "string",
			"description": "Symbol namespace",
			"enum":        []string{"html", "css", "js"},
		},
		"kind": map[string]interface{}{
			"type":        "string",
			"description": "Symbol kind within the namespace (e.g., elements, attributes, events, properties)",
		},
	}
}

// contextProperty describes the enclosing symbols a name is looked up in
func contextProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Enclosing symbol paths, outermost first (e.g., [\"/html/elements/my-button\"])",
		"items": map[string]interface{}{
			"type": "string",
		},
	}
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// loadManifestsTool returns the tool definition for load_manifests
func loadManifestsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "load_manifests",
		Description: "Load web-types manifests from files, package.json files or directories",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"paths": map[string]interface{}{
					"type":        "array",
					"description": "Absolute paths to manifest files, package.json files or project directories",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, reload manifests whose content did not change",
					"default":     false,
				},
				"include_node_modules": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, walk node_modules directories",
					"default":     false,
				},
				"keep_missing": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, keep manifests whose files disappeared from a loaded directory",
					"default":     false,
				},
			},
			Required: []string{"paths"},
		},
	}
}

// getNamesTool returns the tool definition for get_names
func getNamesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_names",
		Description: "List the forms a symbol name takes for queries, storage or completion",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(kindProperties(), map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name (e.g., MyButton)",
				},
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Name target",
					"enum":        []string{"query", "storage", "completion"},
					"default":     "query",
				},
			}),
			Required: []string{"namespace", "kind", "name"},
		},
	}
}

// adjustRenameTool returns the tool definition for adjust_rename
func adjustRenameTool() mcp.Tool {
	return mcp.Tool{
		Name:        "adjust_rename",
		Description: "Compute how an occurrence of a symbol name changes when the symbol is renamed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(kindProperties(), map[string]interface{}{
				"old_name": map[string]interface{}{
					"type":        "string",
					"description": "Current symbol name",
				},
				"new_name": map[string]interface{}{
					"type":        "string",
					"description": "New symbol name",
				},
				"occurrence": map[string]interface{}{
					"type":        "string",
					"description": "Name as it occurs in source (e.g., my-button for MyButton)",
				},
			}),
			Required: []string{"namespace", "kind", "old_name", "new_name", "occurrence"},
		},
	}
}

// matchNameTool returns the tool definition for match_name
func matchNameTool() mcp.Tool {
	return mcp.Tool{
		Name:        "match_name",
		Description: "Match a name against loaded symbols, including pattern symbols, and return the matches",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(kindProperties(), map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name to match (e.g., v-on:click)",
				},
				"context": contextProperty(),
			}),
			Required: []string{"namespace", "kind", "name"},
		},
	}
}

// completeNameTool returns the tool definition for complete_name
func completeNameTool() mcp.Tool {
	return mcp.Tool{
		Name:        "complete_name",
		Description: "Propose completions for a partially typed name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: withProperties(kindProperties(), map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name typed so far (may be empty)",
				},
				"position": map[string]interface{}{
					"type":        "integer",
					"description": "Cursor position within name; omit for the end of the name",
					"minimum":     0,
				},
				"context": contextProperty(),
				"include_deprecated": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include deprecated symbols",
					"default":     false,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of proposals to return (1-500)",
					"default":     50,
					"minimum":     1,
					"maximum":     500,
				},
			}),
			Required: []string{"namespace", "kind"},
		},
	}
}

// getSymbolTool returns the tool definition for get_symbol
func getSymbolTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_symbol",
		Description: "Resolve a symbol reference path and return the symbol documentation",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Symbol reference path (e.g., /html/elements/my-button/html/attributes/size)",
				},
				"context": contextProperty(),
			},
			Required: []string{"path"},
		},
	}
}

// searchSymbolsTool returns the tool definition for search_symbols
func searchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_symbols",
		Description: "Full-text search over names and descriptions of loaded contributions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search keywords",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
				"namespaces": map[string]interface{}{
					"type":        "array",
					"description": "Filter by namespace",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"html", "css", "js"},
					},
				},
				"kinds": map[string]interface{}{
					"type":        "array",
					"description": "Filter by kind",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"libraries": map[string]interface{}{
					"type":        "array",
					"description": "Filter by library name",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"top_level_only": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, skip nested contributions",
					"default":     false,
				},
				"include_deprecated": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include deprecated contributions",
					"default":     false,
				},
				"include_abstract": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, include abstract contributions",
					"default":     false,
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report loaded manifests, registered kinds, cache and storage statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
