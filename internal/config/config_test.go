package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yml := `server:
  command: ["typescript-language-server", "--stdio"]
  languageId: typescript
settleDelayMs: 250
excludeDirs:
  - dist
  - coverage
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codenav.yml"), []byte(yml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"typescript-language-server", "--stdio"}, cfg.Server.Command)
	assert.Equal(t, "typescript", cfg.Server.LanguageID)
	assert.Equal(t, 250, cfg.SettleDelayMs)
	assert.Equal(t, []string{"dist", "coverage"}, cfg.ExcludeDirs)
}

func TestLoadYamlExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codenav.yaml"),
		[]byte("settleDelayMs: 100\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.SettleDelayMs)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err, "a missing config file is not an error")
	assert.Equal(t, &ProjectConfig{}, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "codenav.yml"),
		[]byte("server: [unclosed\n"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
