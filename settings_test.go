package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMemorySettings(t *testing.T) {
	s := NewMemorySettings()
	_, ok := s.Get("k")
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v"))
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Delete("k"))
	require.NoError(t, s.Delete("k"))
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestFileSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")

	s, err := OpenFileSettings(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Set(SettingPrompt, "$ "))
	require.NoError(t, s.Set(SettingHistory, "abc"))

	reopened, err := OpenFileSettings(path, DefaultSettingsSection)
	require.NoError(t, err)
	v, ok := reopened.Get(SettingPrompt)
	require.True(t, ok)
	assert.Equal(t, "$ ", v)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, map[string]map[string]string{
		"shell": {"prompt": "$ ", "history": "abc"},
	}, doc)
}

func TestFileSettingsKeepsOtherSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("other:\n  key: value\n"), 0o644))

	s, err := OpenFileSettings(path, "shell")
	require.NoError(t, err)
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Delete("a"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]string
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, map[string]map[string]string{"other": {"key": "value"}}, doc)
}

func TestFileSettingsMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	s, err := OpenFileSettings(filepath.Join(dir, "none.yaml"), "")
	require.NoError(t, err)
	_, ok := s.Get(SettingHistory)
	assert.False(t, ok)
	require.NoError(t, s.Delete(SettingHistory))
	_, err = os.Stat(filepath.Join(dir, "none.yaml"))
	assert.True(t, os.IsNotExist(err), "deleting nothing does not write")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("shell: [unclosed\n"), 0o644))
	_, err = OpenFileSettings(bad, "")
	assert.Error(t, err)
}
