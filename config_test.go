package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySettings(t *testing.T) {
	settings := NewMemorySettings()
	require.NoError(t, settings.Set(SettingPrompt, "{dir} $ "))
	require.NoError(t, settings.Set(SettingHeader, ""))
	require.NoError(t, settings.Set(SettingPeekMax, " 10 "))

	cfg := DefaultConfig()
	require.NoError(t, ApplySettings(&cfg, settings))
	assert.Equal(t, "{dir} $ ", cfg.PromptFormat)
	assert.Equal(t, "", cfg.Header)
	assert.Equal(t, 10, cfg.PeekMax)

	require.NoError(t, ApplySettings(&cfg, nil))
}

func TestApplySettingsRejectsBadPeekMax(t *testing.T) {
	for _, value := range []string{"many", "0", "-3"} {
		settings := NewMemorySettings()
		require.NoError(t, settings.Set(SettingPeekMax, value))
		cfg := DefaultConfig()
		assert.Error(t, ApplySettings(&cfg, settings), value)
		assert.Equal(t, DefaultPeekMax, cfg.PeekMax)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := Config{}.withDefaults()
	require.NoError(t, err)
	assert.Equal(t, DefaultPromptFormat, cfg.PromptFormat)
	assert.Equal(t, DefaultPeekMax, cfg.PeekMax)
	assert.NotNil(t, cfg.FileSystem)
	assert.NotNil(t, cfg.Launcher)
	assert.NotNil(t, cfg.Resolver)
	assert.NotNil(t, cfg.Interpreter)
	assert.NotNil(t, cfg.Keymap)
	assert.NotNil(t, cfg.Logger)
}

func TestFormatPrompt(t *testing.T) {
	assert.Equal(t, "CS /tmp> ", formatPrompt(DefaultPromptFormat, "/tmp"))
	assert.Equal(t, "/tmp: /tmp", formatPrompt("{0}: {dir}", "/tmp"))
	assert.Equal(t, "> ", formatPrompt("> ", "/tmp"))
}
