package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rutacat/rutacat/internal/config"
)

const overrideTopology = `{
  "comarques": [
    {"id": "alta-terra", "nom": "Alta Terra"},
    {"id": "baixa-terra", "nom": "Baixa Terra"},
    {"id": "mitja-terra", "nom": "Mitja Terra"}
  ],
  "adjacency": [[1], [0, 2], [1]]
}`

const overrideRules = `{
  "rules": [
    {"id": "prova-regla", "type": "FORBID", "text": "Evita Mitja Terra",
     "comarques": ["Mitja Terra"], "difficultyCultural": 1}
  ]
}`

func setDataDir(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("RUTACAT_DATA_DIR", dir)
	config.ResetEnv()
	t.Cleanup(config.ResetEnv)
}

func TestLoadGraphUsesDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comarques.json"), []byte(overrideTopology), 0o644))
	setDataDir(t, dir)

	g, err := loadGraph()
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.True(t, g.Contains("alta-terra"))
	assert.False(t, g.Contains("bages"))
}

func TestLoadGraphFallsBackToEmbedded(t *testing.T) {
	// A data dir with rules but no topology file still yields Catalonia.
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.json"), []byte(overrideRules), 0o644))
	setDataDir(t, dir)

	g, err := loadGraph()
	require.NoError(t, err)

	assert.Equal(t, 42, g.Len())
	assert.True(t, g.Contains("bages"))
}

func TestLoadGraphEmptyDataDir(t *testing.T) {
	setDataDir(t, "")

	g, err := loadGraph()
	require.NoError(t, err)
	assert.Equal(t, 42, g.Len())
}

func TestLoadGraphRejectsBadOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "comarques.json"), []byte(`{"comarques": []}`), 0o644))
	setDataDir(t, dir)

	_, err := loadGraph()
	assert.Error(t, err)
}

func TestLoadCatalogUsesDataDirOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.json"), []byte(overrideRules), 0o644))
	setDataDir(t, dir)

	defs, err := loadCatalog()
	require.NoError(t, err)

	require.Len(t, defs, 1)
	assert.Equal(t, "prova-regla", defs[0].ID)
}

func TestLoadCatalogFallsBackToEmbedded(t *testing.T) {
	setDataDir(t, t.TempDir())

	defs, err := loadCatalog()
	require.NoError(t, err)
	assert.NotEmpty(t, defs)
}
