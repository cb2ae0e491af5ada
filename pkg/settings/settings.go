// Package settings manages persistent user settings for the astopo CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Defaults used when a setting is unset.
const (
	DefaultOutputDir = "astopo-out"
	DefaultRedisAddr = "127.0.0.1:6379"
)

// Settings holds persistent user preferences
type Settings struct {
	// InputDir is the directory holding as_path_list.json and
	// as_to_prefix.json when -i is not specified
	InputDir string `json:"input_dir,omitempty"`

	// OutputDir is where export writes lab artifacts
	OutputDir string `json:"output_dir,omitempty"`

	// RedisAddr is the server publish writes to
	RedisAddr string `json:"redis_addr,omitempty"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "astopo_settings.json"
	}
	return filepath.Join(home, ".astopo", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetOutputDir returns the output directory (with fallback)
func (s *Settings) GetOutputDir() string {
	if s.OutputDir != "" {
		return s.OutputDir
	}
	return DefaultOutputDir
}

// GetRedisAddr returns the Redis address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return DefaultRedisAddr
}

// fields maps setting keys to their storage.
func (s *Settings) fields() map[string]*string {
	return map[string]*string{
		"input_dir":  &s.InputDir,
		"output_dir": &s.OutputDir,
		"redis_addr": &s.RedisAddr,
	}
}

// Keys returns the names accepted by Set, sorted.
func Keys() []string {
	var keys []string
	for k := range (&Settings{}).fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a setting by its JSON key. An empty value unsets it.
func (s *Settings) Set(key, value string) error {
	f, ok := s.fields()[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	*f = value
	return nil
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
