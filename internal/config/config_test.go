package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigDir(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("XATTRSYNC_CONFIG_DIR", "")

		dir := ConfigDir()
		assert.NotEmpty(t, dir)
		assert.True(t, strings.HasSuffix(dir, ".xattrsync"), "should end with .xattrsync")
	})

	t.Run("override with XATTRSYNC_CONFIG_DIR", func(t *testing.T) {
		t.Setenv("XATTRSYNC_CONFIG_DIR", "/tmp/test-xattrsync-config")

		assert.Equal(t, "/tmp/test-xattrsync-config", ConfigDir())
		assert.Equal(t, "/tmp/test-xattrsync-config/settings.yaml", SettingsPath())
	})
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := loadDefaultSettings()
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, ".xattr.json", s.SidecarName)
	assert.Equal(t, "user", s.Namespace)
	assert.True(t, s.ColorEnabled())
	assert.False(t, s.Gitignore)
	assert.Empty(t, s.Excludes)
	assert.NoError(t, s.Validate())
}

func TestLoadSettingsFromPath(t *testing.T) {
	t.Parallel()

	t.Run("missing file gives defaults", func(t *testing.T) {
		t.Parallel()
		s, err := LoadSettingsFromPath(filepath.Join(t.TempDir(), "settings.yaml"))
		require.NoError(t, err)
		assert.Equal(t, loadDefaultSettings(), *s)
	})

	t.Run("partial file keeps defaults for missing fields", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "settings.yaml")
		content := "log_level: DEBUG\ncolor: false\nexcludes:\n  - node_modules\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		s, err := LoadSettingsFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, "debug", s.Level())
		assert.False(t, s.ColorEnabled())
		assert.Equal(t, ".xattr.json", s.SidecarName)
		assert.Equal(t, "user", s.Namespace)
		assert.Equal(t, []string{"node_modules"}, s.Excludes)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "settings.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log_level: [unterminated"), 0600))

		_, err := LoadSettingsFromPath(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Parallel()
		for _, content := range []string{
			"sidecar_name: a/b\n",
			"namespace: user.x\n",
			"log_level: loud\n",
		} {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0600))
			_, err := LoadSettingsFromPath(path)
			assert.Error(t, err, content)
		}
	})
}

func TestInitConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	t.Setenv("XATTRSYNC_CONFIG_DIR", dir)

	written, err := InitConfigDir()
	require.NoError(t, err)
	assert.True(t, written)
	assert.FileExists(t, SettingsPath())

	written, err = InitConfigDir()
	require.NoError(t, err)
	assert.False(t, written, "existing settings must not be overwritten")

	s, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "user", s.Namespace)
}

func TestSettingsMarshalRoundtrip(t *testing.T) {
	t.Parallel()

	s := loadDefaultSettings()
	s.Excludes = []string{"tmp/"}
	data, err := s.Marshal()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# xattrsync settings"))

	var back Settings
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, s, back)
}
