package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetWiring clears the service globals so wireAll builds real services.
func resetWiring(t *testing.T) {
	t.Helper()
	setupTestServices(t)
	settingsService, ingestService, askService, evalService, retriever = nil, nil, nil, nil, nil
	wireSettings = wireSettingsService
	wireServices = wireAll

	oldConfig := configPath
	t.Cleanup(func() { configPath = oldConfig })
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "normativa.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestWireAll_BuildsServicesFromConfig(t *testing.T) {
	resetWiring(t)
	dir := t.TempDir()
	configPath = writeConfig(t, dir, `
[paths]
catalog = "`+filepath.ToSlash(filepath.Join(dir, "sources.csv"))+`"
raw_dir = "`+filepath.ToSlash(filepath.Join(dir, "raw"))+`"
chunk_table = "`+filepath.ToSlash(filepath.Join(dir, "chunks.db"))+`"
prompts_dir = "`+filepath.ToSlash(filepath.Join(dir, "prompts"))+`"

[retrieval]
k = 6

[llm]
provider = "ollama"
`)

	require.NoError(t, wireAll(context.Background()))

	assert.NotNil(t, settingsService)
	assert.NotNil(t, ingestService)
	assert.NotNil(t, askService)
	assert.NotNil(t, evalService)
	require.NotNil(t, retriever)
	assert.Zero(t, retriever.Size())
	require.NotNil(t, appSettings)
	assert.Equal(t, 6, currentSettings().Retrieval.K)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "chunks.db")), appSettings.Paths.ChunkTable)
}

func TestWireAll_MissingConfigUsesDefaults(t *testing.T) {
	resetWiring(t)
	configPath = filepath.Join(t.TempDir(), "absent.toml")

	require.NoError(t, wireAll(context.Background()))

	assert.Equal(t, 4, currentSettings().Retrieval.K)
	assert.Equal(t, "data/processed/chunks.db", currentSettings().Paths.ChunkTable)
}

func TestWireAll_RejectsInvalidSettings(t *testing.T) {
	resetWiring(t)
	configPath = writeConfig(t, t.TempDir(), `
[ingest]
chunk_size = 100
overlap = 200
`)

	err := wireAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid settings")
	assert.Nil(t, ingestService)
}

func TestWireAll_MalformedConfig(t *testing.T) {
	resetWiring(t)
	configPath = writeConfig(t, t.TempDir(), "[paths\n")

	err := wireAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestLoadIndex_WrapsReloadError(t *testing.T) {
	resetWiring(t)
	configPath = filepath.Join(t.TempDir(), "absent.toml")
	require.NoError(t, wireAll(context.Background()))

	// The default chunk table path does not exist in the package directory.
	err := loadIndex(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "normativa ingest")
}

func TestLoadIndex_NoRetriever(t *testing.T) {
	setupTestServices(t)
	retriever = nil

	assert.EqualError(t, loadIndex(context.Background()), "retriever not configured")
}
