package mcp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/suite"

	"github.com/dshills/websymbols-mcp/internal/config"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ProjectTestSuite runs the tools end to end against the testdata project
type ProjectTestSuite struct {
	suite.Suite
	server     *Server
	projectDir string
	ctx        context.Context
}

func TestProjectTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectTestSuite))
}

// SetupTest copies the fixture project and starts a server on a fresh database
func (s *ProjectTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.projectDir = s.T().TempDir()
	s.Require().NoError(copyDir(filepath.Join("testdata", "project"), s.projectDir))

	cfg := config.Default()
	cfg.DBPath = filepath.Join(s.T().TempDir(), "symbols.db")
	cfg.Workers = 2

	server, err := NewServer(s.ctx, cfg)
	s.Require().NoError(err)
	s.server = server
}

// TearDownTest runs after each test
func (s *ProjectTestSuite) TearDownTest() {
	if s.server != nil {
		_ = s.server.Close()
	}
}

func (s *ProjectTestSuite) call(handler toolHandler, name string, args map[string]interface{}) map[string]interface{} {
	result, err := handler(s.ctx, toolRequest(name, args))
	s.Require().NoError(err)
	return decodeResult(s.T(), result)
}

func (s *ProjectTestSuite) load(args map[string]interface{}) map[string]interface{} {
	if args == nil {
		args = map[string]interface{}{}
	}
	args["paths"] = []interface{}{s.projectDir}
	return s.call(s.server.handleLoadManifests, "load_manifests", args)
}

func (s *ProjectTestSuite) match(namespace, kind, name string) []interface{} {
	resp := s.call(s.server.handleMatchName, "match_name", map[string]interface{}{
		"namespace": namespace,
		"kind":      kind,
		"name":      name,
	})
	symbols, _ := resp["symbols"].([]interface{})
	return symbols
}

// TestLoadProject tests discovery through package.json and manifest file names
func (s *ProjectTestSuite) TestLoadProject() {
	resp := s.load(nil)
	s.Equal(float64(2), resp["manifests_loaded"], "package.json reference and yaml manifest")
	s.Equal(float64(0), resp["manifests_failed"])

	status := s.call(s.server.handleGetStatus, "get_status", nil)
	s.Equal(true, status["loaded"])
	kinds := status["kinds"].([]interface{})
	s.Contains(kinds, "/html/elements")
	s.Contains(kinds, "/css/properties")
	s.Contains(kinds, "/js/events")
	s.Len(status["libraries"], 2)
}

// TestElementDocumentation tests markdown descriptions and nested symbols
func (s *ProjectTestSuite) TestElementDocumentation() {
	s.load(nil)

	resp := s.call(s.server.handleGetSymbol, "get_symbol", map[string]interface{}{
		"path": "/html/elements/demo-button",
	})
	symbols := resp["symbols"].([]interface{})
	s.Require().Len(symbols, 1)
	sym := symbols[0].(map[string]interface{})
	s.Equal("<p>A <strong>clickable</strong> button</p>", sym["description"])
	s.Equal("https://demo-ui.example/button", sym["doc_url"])
	s.Equal("demo-ui", sym["library"])

	resp = s.call(s.server.handleMatchName, "match_name", map[string]interface{}{
		"namespace": "js",
		"kind":      "events",
		"name":      "press",
		"context":   []interface{}{"/html/elements/demo-button"},
	})
	s.Equal(true, resp["matched"])
}

// TestPatternMatch tests matching through the v-on: pattern
func (s *ProjectTestSuite) TestPatternMatch() {
	s.load(nil)

	symbols := s.match("html", "attributes", "v-on:click")
	s.Require().Len(symbols, 1)
	segments := symbols[0].(map[string]interface{})["segments"].([]interface{})
	s.Require().Len(segments, 3)
	last := segments[2].(map[string]interface{})
	s.Equal(float64(5), last["start"])
	s.Equal(float64(10), last["end"])
	s.Equal([]interface{}{"/js/events/click"}, last["symbols"])
}

// TestPatternCompletion tests completion after the static pattern prefix
func (s *ProjectTestSuite) TestPatternCompletion() {
	s.load(nil)

	resp := s.call(s.server.handleCompleteName, "complete_name", map[string]interface{}{
		"namespace": "html",
		"kind":      "attributes",
		"name":      "v-on:",
	})
	offsets := make(map[string]float64)
	for _, item := range resp["items"].([]interface{}) {
		m := item.(map[string]interface{})
		offsets[m["name"].(string)] = m["offset"].(float64)
	}
	s.Equal(float64(5), offsets["click"])
	s.Equal(float64(5), offsets["focus"])
}

// TestModifiedManifestReload tests that only changed manifests are reloaded
func (s *ProjectTestSuite) TestModifiedManifestReload() {
	s.load(nil)
	s.Empty(s.match("css", "properties", "--demo-spacing"))

	styles := filepath.Join(s.projectDir, "styles", "demo.web-types.yaml")
	s.Require().NoError(os.WriteFile(styles, []byte(`name: demo-styles
version: 3.3.0
contributions:
  css:
    properties:
      - name: --demo-color
      - name: --demo-spacing
`), 0644))

	resp := s.load(nil)
	s.Equal(float64(1), resp["manifests_loaded"])
	s.Equal(float64(1), resp["manifests_skipped"])
	s.Len(s.match("css", "properties", "--demo-spacing"), 1)
}

// TestRemovedManifestPruned tests that deleted manifests leave the catalog
func (s *ProjectTestSuite) TestRemovedManifestPruned() {
	s.load(nil)
	s.Len(s.match("css", "properties", "--demo-color"), 1)

	s.Require().NoError(os.Remove(filepath.Join(s.projectDir, "styles", "demo.web-types.yaml")))

	resp := s.load(nil)
	s.Equal(float64(1), resp["manifests_removed"])
	s.Empty(s.match("css", "properties", "--demo-color"))

	// Elements from the remaining manifest are still there
	s.Len(s.match("html", "elements", "demo-card"), 1)
}

// TestBrokenManifest tests that a manifest with errors is reported and not registered
func (s *ProjectTestSuite) TestBrokenManifest() {
	broken := filepath.Join(s.projectDir, "broken.web-types.json")
	s.Require().NoError(os.WriteFile(broken, []byte(`{"name": "broken", "contributions": [`), 0644))

	resp := s.load(nil)
	s.Equal(float64(2), resp["manifests_loaded"])
	s.Equal(float64(1), resp["manifests_failed"])
	s.NotEmpty(resp["errors"])

	status := s.call(s.server.handleGetStatus, "get_status", nil)
	statistics := status["statistics"].(map[string]interface{})
	s.Equal(float64(1), statistics["failed_count"])
}

// TestSearch tests full-text search with filters
func (s *ProjectTestSuite) TestSearch() {
	s.load(nil)

	resp := s.call(s.server.handleSearchSymbols, "search_symbols", map[string]interface{}{
		"query": "accent",
	})
	results := resp["results"].([]interface{})
	s.Require().Len(results, 1)
	s.Equal("--demo-color", results[0].(map[string]interface{})["name"])

	resp = s.call(s.server.handleSearchSymbols, "search_symbols", map[string]interface{}{
		"query":      "container",
		"namespaces": []interface{}{"css"},
	})
	s.Empty(resp["results"])
}

// copyDir copies the regular files under src into dst
func copyDir(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			_ = out.Close()
			return err
		}
		return out.Close()
	})
}
