package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"
)

// AutosaveConfig extends Config with change tracking and save capabilities.
type AutosaveConfig struct {
	*Config

	mu sync.RWMutex

	// originalPath is the path the config was loaded from
	originalPath string

	// modified tracks options that have been changed, per section
	modified map[string]map[string]string

	// Backup copies the original file aside before it is overwritten.
	Backup bool
}

// NewAutosaveConfig wraps a Config with autosave capabilities.
func NewAutosaveConfig(cfg *Config, path string) *AutosaveConfig {
	return &AutosaveConfig{
		Config:       cfg,
		originalPath: path,
		modified:     make(map[string]map[string]string),
		Backup:       true,
	}
}

// LoadAutosave loads a config file with autosave capabilities.
func LoadAutosave(path string) (*AutosaveConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewAutosaveConfig(cfg, path), nil
}

// SetOption sets or updates an option value in a section.
// Writing the value the option already has is not recorded as a change.
func (c *AutosaveConfig) SetOption(section, option, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sec := c.Config.GetSectionOptional(section); sec != nil {
		if old, ok := sec.RawOptions()[strings.ToLower(option)]; ok && old == value {
			return nil
		}
	}
	if err := c.Config.SetOption(section, option, value); err != nil {
		return err
	}

	if c.modified[section] == nil {
		c.modified[section] = make(map[string]string)
	}
	c.modified[section][option] = value
	return nil
}

// GetModifiedOptions returns the changed options of a section, sorted.
func (c *AutosaveConfig) GetModifiedOptions(section string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]string, 0, len(c.modified[section]))
	for opt := range c.modified[section] {
		result = append(result, opt)
	}
	sort.Strings(result)
	return result
}

// HasChanges returns true if there are unsaved changes.
func (c *AutosaveConfig) HasChanges() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.modified) > 0
}

// SaveChanges writes the configuration to path, or to the original path
// when path is empty. The file is replaced atomically.
func (c *AutosaveConfig) SaveChanges(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if path == "" {
		path = c.originalPath
	}
	if path == "" {
		return fmt.Errorf("config: no path to save to")
	}

	if c.Backup && path == c.originalPath {
		if err := c.createBackup(); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
	}

	if err := atomic.WriteFile(path, strings.NewReader(c.Config.String())); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}

	c.modified = make(map[string]map[string]string)
	return nil
}

// createBackup creates a timestamped backup of the original file.
func (c *AutosaveConfig) createBackup() error {
	data, err := os.ReadFile(c.originalPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read original file: %w", err)
	}

	// config.ini -> config-20060102_150405.ini
	ext := filepath.Ext(c.originalPath)
	base := strings.TrimSuffix(c.originalPath, ext)
	timestamp := time.Now().Format("20060102_150405")
	backupPath := fmt.Sprintf("%s-%s%s", base, timestamp, ext)

	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}
