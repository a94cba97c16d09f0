package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/websymbols-mcp/internal/names"
	"github.com/dshills/websymbols-mcp/internal/registry"
	"github.com/dshills/websymbols-mcp/internal/storage"
	"github.com/dshills/websymbols-mcp/internal/webtypes"
	"github.com/dshills/websymbols-mcp/pkg/types"
)

const buttonManifest = `{
  "name": "button-lib",
  "version": "1.0.0",
  "contributions": {
    "html": {
      "elements": [
        {"name": "my-button", "description": "A button", "attributes": [{"name": "size"}]},
        {"name": "my-panel", "attributes": [{"name": "title"}]}
      ],
      "attributes": [{"name": "id"}]
    }
  }
}`

const eventManifest = `name: event-lib
version: 2.0.0
contributions:
  js:
    events:
      - name: my-event
        deprecated: true
`

func setupLoader(t *testing.T) (*Loader, *storage.SQLiteStorage) {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store, registry.NewCatalog("", names.DefaultFrameworks())), store
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "web-types.json"), buttonManifest)
	writeFile(t, filepath.Join(dir, "events", "lib.web-types.yaml"), eventManifest)
	writeFile(t, filepath.Join(dir, "README.md"), "# not a manifest")
	return dir
}

func TestNew(t *testing.T) {
	ldr, _ := setupLoader(t)
	assert.NotNil(t, ldr.parser)
	assert.NotNil(t, ldr.storage)
	assert.NotNil(t, ldr.Catalog())
	assert.False(t, ldr.Loading())
}

func TestDiscoverFiles(t *testing.T) {
	dir := setupProject(t)
	writeFile(t, filepath.Join(dir, ".cache", "web-types.json"), buttonManifest)
	writeFile(t, filepath.Join(dir, "node_modules", "lib", "web-types.json"), buttonManifest)
	writeFile(t, filepath.Join(dir, "pkg", "package.json"), `{"name": "pkg", "web-types": "types/symbols.json"}`)

	stats := &Statistics{}
	files, err := discoverFiles(dir, &Config{}, stats)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "web-types.json"),
		filepath.Join(dir, "events", "lib.web-types.yaml"),
		filepath.Join(dir, "pkg", "types", "symbols.json"),
	}, files)

	files, err = discoverFiles(dir, &Config{IncludeNodeModules: true}, stats)
	require.NoError(t, err)
	assert.Contains(t, files, filepath.Join(dir, "node_modules", "lib", "web-types.json"))
	assert.Empty(t, stats.ErrorMessages)
}

func TestDiscoverFiles_BadPackageFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"web-types": {"path": "x"}}`)

	stats := &Statistics{}
	files, err := discoverFiles(dir, &Config{}, stats)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Len(t, stats.ErrorMessages, 1)
}

func TestComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	writeFile(t, a, buttonManifest)
	writeFile(t, b, eventManifest)

	hashA, _, size, err := computeFileHash(a)
	require.NoError(t, err)
	assert.Equal(t, int64(len(buttonManifest)), size)

	again, _, _, err := computeFileHash(a)
	require.NoError(t, err)
	assert.Equal(t, hashA, again)

	hashB, _, _, err := computeFileHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, hashA, hashB)

	_, _, _, err = computeFileHash(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	m, err := webtypes.Decode([]byte(buttonManifest))
	require.NoError(t, err)

	flat := Flatten(m)
	paths := make([]string, 0, len(flat))
	for _, c := range flat {
		paths = append(paths, c.Path)
	}
	assert.Equal(t, []string{
		"/html/attributes/id",
		"/html/elements/my-button",
		"/html/elements/my-button/html/attributes/size",
		"/html/elements/my-panel",
		"/html/elements/my-panel/html/attributes/title",
	}, paths)

	assert.Equal(t, 0, flat[1].Depth)
	assert.Equal(t, "A button", flat[1].Description)
	assert.Equal(t, 1, flat[2].Depth)
	assert.Equal(t, "html", flat[2].Namespace)
	assert.Equal(t, "attributes", flat[2].Kind)
}

func TestFlatten_Patterns(t *testing.T) {
	m, err := webtypes.Decode([]byte(`{"name": "p", "contributions": {"html": {"attributes": [` +
		`{"pattern": "data-.*"}, {"pattern": {"items": "/html/elements"}}]}}}`))
	require.NoError(t, err)

	flat := Flatten(m)
	require.Len(t, flat, 2)
	assert.True(t, flat[0].IsPattern)
	assert.Equal(t, "data-.*", flat[0].Name)
	assert.Equal(t, patternName, flat[1].Name)
}

func TestLoad_Success(t *testing.T) {
	ldr, store := setupLoader(t)
	dir := setupProject(t)
	ctx := context.Background()

	stats, err := ldr.Load(ctx, []string{dir}, &Config{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ManifestsLoaded)
	assert.Equal(t, 0, stats.ManifestsSkipped)
	assert.Equal(t, 0, stats.ManifestsFailed)
	assert.Equal(t, 6, stats.ContributionCount)
	assert.Empty(t, stats.ErrorMessages)

	assert.Equal(t, 2, ldr.Catalog().Len())
	reg := ldr.Catalog().Registry()
	syms := reg.NameMatch(types.NamespaceHTML, types.KindElements, "my-button", nil)
	require.Len(t, syms, 1)
	assert.Equal(t, "button-lib", syms[0].Origin().Library())

	stored, err := store.GetManifest(ctx, filepath.Join(dir, "web-types.json"))
	require.NoError(t, err)
	assert.Equal(t, "button-lib", stored.Library)
	assert.Equal(t, "1.0.0", stored.Version)
	assert.Equal(t, 5, stored.ContributionCount)
	assert.True(t, stored.Usable())

	contributions, err := store.ListContributionsByManifest(ctx, stored.ID)
	require.NoError(t, err)
	assert.Len(t, contributions, 5)

	run, err := store.LastLoad(ctx)
	require.NoError(t, err)
	assert.Equal(t, dir, run.Roots)
	assert.Equal(t, 2, run.ManifestsLoaded)
}

func TestLoad_IncrementalUpdate(t *testing.T) {
	ldr, _ := setupLoader(t)
	dir := setupProject(t)
	ctx := context.Background()

	_, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	modCount := ldr.Catalog().ModificationCount()

	stats, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ManifestsLoaded)
	assert.Equal(t, 2, stats.ManifestsSkipped)
	assert.Equal(t, modCount, ldr.Catalog().ModificationCount())

	writeFile(t, filepath.Join(dir, "web-types.json"), `{"name": "button-lib", "version": "1.1.0", `+
		`"contributions": {"html": {"elements": [{"name": "my-button"}]}}}`)
	stats, err = ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ManifestsLoaded)
	assert.Equal(t, 1, stats.ManifestsSkipped)
	assert.Equal(t, 1, stats.ContributionCount)

	reg := ldr.Catalog().Registry()
	assert.Empty(t, reg.NameMatch(types.NamespaceHTML, types.KindElements, "my-panel", nil))
}

func TestLoad_Force(t *testing.T) {
	ldr, _ := setupLoader(t)
	dir := setupProject(t)
	ctx := context.Background()

	_, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)

	stats, err := ldr.Load(ctx, []string{dir}, &Config{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ManifestsLoaded)
	assert.Equal(t, 0, stats.ManifestsSkipped)
}

func TestLoad_SkipRequiresRegisteredContainer(t *testing.T) {
	ldr, store := setupLoader(t)
	dir := setupProject(t)
	ctx := context.Background()

	_, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)

	// A fresh catalog over the same store must not skip anything
	fresh := New(store, registry.NewCatalog("", nil))
	stats, err := fresh.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ManifestsLoaded)
	assert.Equal(t, 2, fresh.Catalog().Len())
}

func TestLoad_WithParseErrors(t *testing.T) {
	ldr, store := setupLoader(t)
	dir := setupProject(t)
	ctx := context.Background()

	_, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	require.Equal(t, 2, ldr.Catalog().Len())

	broken := filepath.Join(dir, "web-types.json")
	writeFile(t, broken, `{"name": "button-lib", "contributions": [`)
	stats, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ManifestsFailed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], broken)

	// The broken manifest is stored with its error and leaves the catalog
	stored, err := store.GetManifest(ctx, broken)
	require.NoError(t, err)
	require.NotNil(t, stored.ParseError)
	assert.False(t, stored.Usable())
	assert.Equal(t, 0, stored.ContributionCount)

	_, ok := ldr.Catalog().BySource(broken)
	assert.False(t, ok)
	assert.Equal(t, 1, ldr.Catalog().Len())
}

func TestLoad_Strict(t *testing.T) {
	ldr, _ := setupLoader(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "web-types.json"), `{"contributions": {"html": {"elements": [{"name": "x"}]}}}`)
	ctx := context.Background()

	stats, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ManifestsLoaded)
	assert.Len(t, stats.Warnings, 1)

	stats, err = ldr.Load(ctx, []string{dir}, &Config{Strict: true, Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ManifestsFailed)
	assert.Equal(t, 0, ldr.Catalog().Len())
}

func TestLoad_PrunesMissingManifests(t *testing.T) {
	ldr, store := setupLoader(t)
	dir := setupProject(t)
	ctx := context.Background()

	_, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "events", "lib.web-types.yaml")))

	stats, err := ldr.Load(ctx, []string{dir}, &Config{KeepMissing: true})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ManifestsRemoved)
	assert.Equal(t, 2, ldr.Catalog().Len())

	stats, err = ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ManifestsRemoved)
	assert.Equal(t, 1, ldr.Catalog().Len())

	manifests, err := store.ListManifests(ctx)
	require.NoError(t, err)
	assert.Len(t, manifests, 1)
}

func TestLoad_ExplicitFiles(t *testing.T) {
	ldr, _ := setupLoader(t)
	dir := t.TempDir()
	custom := filepath.Join(dir, "symbols.json")
	writeFile(t, custom, buttonManifest)
	writeFile(t, filepath.Join(dir, "pkg", "package.json"), `{"web-types": ["events.yaml"]}`)
	writeFile(t, filepath.Join(dir, "pkg", "events.yaml"), eventManifest)

	stats, err := ldr.Load(context.Background(),
		[]string{custom, filepath.Join(dir, "pkg", "package.json")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ManifestsLoaded)
	assert.Equal(t, 0, stats.ManifestsRemoved)
}

func TestLoad_MissingReferencedFile(t *testing.T) {
	ldr, _ := setupLoader(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"web-types": "missing.json"}`)

	stats, err := ldr.Load(context.Background(), []string{dir}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ManifestsFailed)
	assert.Equal(t, 0, stats.ManifestsLoaded)
}

func TestLoad_Errors(t *testing.T) {
	ldr, _ := setupLoader(t)
	ctx := context.Background()

	_, err := ldr.Load(ctx, nil, nil)
	assert.ErrorIs(t, err, ErrNoRoots)

	_, err = ldr.Load(ctx, []string{filepath.Join(t.TempDir(), "nope")}, nil)
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestLoad_ConcurrentCalls(t *testing.T) {
	ldr, _ := setupLoader(t)
	dir := setupProject(t)

	require.True(t, ldr.lock.TryAcquire())
	assert.True(t, ldr.Loading())
	_, err := ldr.Load(context.Background(), []string{dir}, nil)
	assert.ErrorIs(t, err, ErrLoadInProgress)

	ldr.lock.Release()
	_, err = ldr.Load(context.Background(), []string{dir}, nil)
	assert.NoError(t, err)
	assert.False(t, ldr.Loading())
}

func TestLoad_ContextCancellation(t *testing.T) {
	ldr, _ := setupLoader(t)
	dir := setupProject(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ldr.Load(ctx, []string{dir}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ldr.Loading())
}

func TestRestore(t *testing.T) {
	ldr, store := setupLoader(t)
	dir := setupProject(t)
	ctx := context.Background()

	writeFile(t, filepath.Join(dir, "broken.web-types.json"), `{`)
	stats, err := ldr.Load(ctx, []string{dir}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, stats.ManifestsFailed)

	// Files are gone; restoring relies on stored content only
	require.NoError(t, os.RemoveAll(dir))

	fresh := New(store, registry.NewCatalog("", nil))
	restored, err := fresh.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	reg := fresh.Catalog().Registry()
	syms := reg.NameMatch(types.NamespaceJS, types.KindEvents, "my-event", nil)
	require.Len(t, syms, 1)
	assert.True(t, syms[0].Deprecated())

	container, ok := fresh.Catalog().BySource(filepath.Join(dir, "web-types.json"))
	require.True(t, ok)
	original, ok := ldr.Catalog().BySource(filepath.Join(dir, "web-types.json"))
	require.True(t, ok)
	assert.Equal(t, original.Hash(), container.Hash())
}

func TestLoadLock(t *testing.T) {
	var lock LoadLock
	assert.True(t, lock.TryAcquire())
	assert.False(t, lock.TryAcquire())
	assert.True(t, lock.Held())
	lock.Release()
	assert.False(t, lock.Held())
	assert.True(t, lock.TryAcquire())
}
