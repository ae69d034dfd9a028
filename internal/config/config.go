// Package config loads xattrsync settings from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"xattrsync/internal/artifacts"
)

// getConfigDir returns the config directory path.
// Uses XATTRSYNC_CONFIG_DIR env var if set, otherwise defaults to ~/.xattrsync.
// This is computed dynamically to support test isolation.
func getConfigDir() string {
	if dir := os.Getenv("XATTRSYNC_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".xattrsync")
}

// ConfigDir returns the configuration directory path
func ConfigDir() string {
	return getConfigDir()
}

// SettingsPath returns the settings file path
func SettingsPath() string {
	return filepath.Join(getConfigDir(), "settings.yaml")
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	return os.MkdirAll(getConfigDir(), 0700)
}

// InitConfigDir creates the config directory and writes the default
// settings file unless one exists. Returns whether a file was written.
func InitConfigDir() (bool, error) {
	if err := EnsureConfigDir(); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := SettingsPath()
	if _, err := os.Stat(settingsPath); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}
	if err := os.WriteFile(settingsPath, artifacts.GlobalSettings, 0600); err != nil {
		return false, fmt.Errorf("failed to create default settings: %w", err)
	}
	return true, nil
}

// Settings represents user settings
type Settings struct {
	LogLevel    string   `yaml:"log_level"`    // trace, debug, info, warn, error, off (default: info)
	SidecarName string   `yaml:"sidecar_name"` // default: ".xattr.json"
	Namespace   string   `yaml:"namespace"`    // default: "user"
	Color       *bool    `yaml:"color"`        // default: true (pointer to detect missing)
	Gitignore   bool     `yaml:"gitignore"`    // honor .gitignore during recursive fix
	Excludes    []string `yaml:"excludes"`     // gitignore-syntax patterns skipped by recursive walks
}

// loadDefaultSettings parses default settings from embedded artifact.
func loadDefaultSettings() Settings {
	var settings Settings
	if err := yaml.Unmarshal(artifacts.GlobalSettings, &settings); err != nil {
		panic("failed to parse embedded settings: " + err.Error())
	}
	return settings
}

// ApplyDefaults fills zero-value fields from the embedded defaults.
func (s *Settings) ApplyDefaults() {
	def := loadDefaultSettings()
	if s.LogLevel == "" {
		s.LogLevel = def.LogLevel
	}
	if s.SidecarName == "" {
		s.SidecarName = def.SidecarName
	}
	if s.Namespace == "" {
		s.Namespace = def.Namespace
	}
	if s.Color == nil {
		s.Color = def.Color
	}
}

// ColorEnabled returns whether colored output is enabled (defaults to true).
func (s *Settings) ColorEnabled() bool {
	if s.Color == nil {
		return true
	}
	return *s.Color
}

// Level returns the normalized (lowercase) log level.
func (s *Settings) Level() string {
	return strings.ToLower(strings.TrimSpace(s.LogLevel))
}

// Validate rejects settings that would make the sidecar or namespace unusable.
func (s *Settings) Validate() error {
	if strings.ContainsRune(s.SidecarName, filepath.Separator) || s.SidecarName == "." || s.SidecarName == ".." {
		return fmt.Errorf("invalid sidecar_name %q: must be a plain filename", s.SidecarName)
	}
	if strings.Contains(s.Namespace, ".") {
		return fmt.Errorf("invalid namespace %q: must not contain '.'", s.Namespace)
	}
	switch s.Level() {
	case "", "trace", "debug", "info", "warn", "error", "off", "none":
	default:
		return fmt.Errorf("invalid log_level %q", s.LogLevel)
	}
	return nil
}

// LoadSettings loads the settings from SettingsPath().
// Falls back to embedded defaults if the file doesn't exist.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFromPath(SettingsPath())
}

// LoadSettingsFromPath loads settings from a specific file path.
// Falls back to embedded defaults if the file doesn't exist.
func LoadSettingsFromPath(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			settings := loadDefaultSettings()
			return &settings, nil
		}
		return nil, err
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &settings, nil
}

// Marshal renders settings as YAML with a header comment.
func (s *Settings) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, err
	}
	header := []byte("# xattrsync settings\n# See: xattrsync config --help\n\n")
	return append(header, data...), nil
}
