// Package config locates the repository, loads its paths, and reads
// the user-level sync configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

const (
	// ArtDir is the metadata directory inside the working tree.
	ArtDir = ".art"
	// HeadFile identifies a valid repository when present inside ArtDir.
	HeadFile = "art.json"

	// DefaultHost is the packaged default sync host.
	DefaultHost = "http://localhost:1337"

	userConfigDir  = "art"
	userConfigFile = "config.toml"
)

// Config holds the resolved paths of one repository.
type Config struct {
	workTree string
	artPath  string
}

// FindRoot walks upward from the current directory looking for a
// directory containing .art/art.json.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		headPath := filepath.Join(dir, ArtDir, HeadFile)
		if info, err := os.Stat(headPath); err == nil && !info.IsDir() {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("not an art repository (or any parent up to root)")
		}
		dir = parent
	}
}

// Load locates the enclosing repository and returns its config.
func Load() (*Config, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}
	return ForWorkTree(root), nil
}

// ForWorkTree returns the config for a known working-tree root.
func ForWorkTree(workTree string) *Config {
	return &Config{
		workTree: workTree,
		artPath:  filepath.Join(workTree, ArtDir),
	}
}

// WorkTree returns the working-tree root directory.
func (c *Config) WorkTree() string {
	return c.workTree
}

// ArtPath returns the path to the .art directory.
func (c *Config) ArtPath() string {
	return c.artPath
}

// UserConfig carries user-level defaults for the sync client, read
// from ~/.config/art/config.toml. Missing file means defaults.
type UserConfig struct {
	Host  string `toml:"host"`
	Token string `toml:"token"`
}

// LoadUserConfig reads the user-level configuration, falling back to
// packaged defaults when no file exists.
func LoadUserConfig() (*UserConfig, error) {
	cfg := &UserConfig{Host: DefaultHost}

	base, err := os.UserConfigDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(base, userConfigDir, userConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse user config: %w", err)
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	return cfg, nil
}

// SaveUserConfig writes the user-level configuration.
func SaveUserConfig(cfg *UserConfig) error {
	base, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("resolve user config dir: %w", err)
	}
	dir := filepath.Join(base, userConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create user config dir: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal user config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, userConfigFile), data, 0644)
}
