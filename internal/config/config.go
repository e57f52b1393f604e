package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ServerConfig describes how to launch the external language server.
type ServerConfig struct {
	Command    []string `yaml:"command,omitempty"`
	LanguageID string   `yaml:"languageId,omitempty"`
}

// ProjectConfig holds project-level settings loaded from codenav.yml.
type ProjectConfig struct {
	Server        ServerConfig `yaml:"server,omitempty"`
	SettleDelayMs int          `yaml:"settleDelayMs,omitempty"`
	ExcludeDirs   []string     `yaml:"excludeDirs,omitempty"`
}

// Load attempts to read codenav.yml or codenav.yaml from the given
// directory. Returns a zero-value config (not an error) if no config file
// exists.
func Load(dir string) (*ProjectConfig, error) {
	for _, name := range []string{"codenav.yml", "codenav.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg ProjectConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	return &ProjectConfig{}, nil
}
