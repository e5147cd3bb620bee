package schedy

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSchedyEnv(t *testing.T) {
	for _, name := range []string{"SCHEDY_ROOT", "SCHEDY_EMAIL", "SCHEDY_TOKEN", "SCHEDY_TOKEN_TYPE", "CONFIG_DIR"} {
		t.Setenv(name, "")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg, err := NewConfig(Config{Root: "https://api.schedy.io", Email: "a@b.c", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "https://api.schedy.io/", cfg.Root)
	assert.Equal(t, TokenTypeAPI, cfg.TokenType)

	_, err = NewConfig(Config{Root: "https://api.schedy.io/"})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "email, token")

	_, err = NewConfig(Config{Root: "r", Email: "e", Token: "t", TokenType: "cookie"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadConfigFormats(t *testing.T) {
	clearSchedyEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/conf/client.json",
		[]byte(`{"root":"https://api.schedy.io/","email":"test@schedy.io","token":"TOKEN","token_type":"password"}`), 0600))
	require.NoError(t, afero.WriteFile(fs, "/conf/client.yaml",
		[]byte("root: https://api.schedy.io\nemail: test@schedy.io\ntoken: TOKEN\n"), 0600))

	cfg, err := LoadConfig(fs, "/conf/client.json")
	require.NoError(t, err)
	assert.Equal(t, Config{Root: "https://api.schedy.io/", Email: "test@schedy.io", Token: "TOKEN", TokenType: TokenTypePassword}, *cfg)

	cfg, err = LoadConfig(fs, "/conf/client.yaml")
	require.NoError(t, err)
	assert.Equal(t, Config{Root: "https://api.schedy.io/", Email: "test@schedy.io", Token: "TOKEN", TokenType: TokenTypeAPI}, *cfg)

	_, err = LoadConfig(fs, "/conf/missing.json")
	assert.Error(t, err)
}

func TestLoadConfigEnvironmentOverlay(t *testing.T) {
	clearSchedyEnv(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/client.json", []byte(`{"root":"https://api.schedy.io/","email":"test@schedy.io"}`), 0600))

	_, err := LoadConfig(fs, "/client.json")
	require.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("SCHEDY_TOKEN", "FROM-ENV")
	t.Setenv("SCHEDY_ROOT", "http://localhost:8080")
	cfg, err := LoadConfig(fs, "/client.json")
	require.NoError(t, err)
	assert.Equal(t, "FROM-ENV", cfg.Token)
	assert.Equal(t, "http://localhost:8080/", cfg.Root)
	assert.Equal(t, "test@schedy.io", cfg.Email)
}

func TestSaveConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := &Config{Root: "https://api.schedy.io/", Email: "test@schedy.io", Token: "TOKEN", TokenType: TokenTypeAPI}
	require.NoError(t, SaveConfig(fs, "/home/u/.schedy/client.json", cfg))

	info, err := fs.Stat("/home/u/.schedy/client.json")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	content, err := afero.ReadFile(fs, "/home/u/.schedy/client.json")
	require.NoError(t, err)
	var saved Config
	require.NoError(t, json.Unmarshal(content, &saved))
	assert.Equal(t, *cfg, saved)

	clearSchedyEnv(t)
	loaded, err := LoadConfig(fs, "/home/u/.schedy/client.json")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
