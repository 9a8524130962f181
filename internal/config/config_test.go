package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouter.BaseURL)
	assert.Equal(t, "meta-llama/llama-3.2-11b-vision-instruct:free", cfg.OpenRouter.Model)
	assert.Equal(t, time.Duration(0), cfg.OpenRouter.RequestTimeout)
	assert.Equal(t, "Hello! Upload an image and ask me anything about it.", cfg.ChatGreeting)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_MODEL", "qwen/qwen2.5-vl-72b-instruct")
	t.Setenv("SERVER_BIND_ADDR", "0.0.0.0:9000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("USE_STUB_CLIENT", "true")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "qwen/qwen2.5-vl-72b-instruct", cfg.OpenRouter.Model)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.BindAddr)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.True(t, cfg.UseStubClient)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Setenv("OPENROUTER_MODEL", "from-env")

	cfg, err := Load([]string{"-model", "from-flag", "-debug-mode"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.OpenRouter.Model)
	assert.True(t, cfg.DebugMode)
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	cfg.OpenRouter.Model = " "
	cfg.Server.MaxUploadBytes = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENROUTER_MODEL")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")

	assert.NoError(t, Defaults().Validate())
}
