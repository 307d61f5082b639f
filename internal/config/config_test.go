package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("LEDGER_TEST_DIR", "/srv/ledger")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde", in: "~", want: home},
		{name: "tilde path", in: "~/books/ledger.db", want: filepath.Join(home, "books", "ledger.db")},
		{name: "env var", in: "$LEDGER_TEST_DIR/exports", want: "/srv/ledger/exports"},
		{name: "absolute", in: "/var/lib/ledger.db", want: "/var/lib/ledger.db"},
		{name: "untidy", in: "/var/lib//ledger/../ledger.db", want: "/var/lib/ledger.db"},
		{name: "other user", in: "~bob/ledger.db", want: "~bob/ledger.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/etc/xdg-home")

		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/etc/xdg-home", AppName), dir)
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)

		dir, err := ConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", AppName), dir)
	})
}

func TestLoad_Defaults(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := Load(New())

	assert.Empty(t, cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, 15*time.Second, cfg.API.ListTimeout)
	assert.True(t, cfg.Cache.Persist)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ledger", "ledger.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ledger", "exports"), cfg.Export.Dir)
	assert.Equal(t, "ACC_export", cfg.Export.Prefix)
	assert.True(t, cfg.Share.Open)
	assert.Equal(t, "id", cfg.Display.Locale)
	assert.Equal(t, "Rp", cfg.Display.Currency)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("LEDGER_API_BASE_URL", "https://books.example.com/api")
	t.Setenv("LEDGER_API_TIMEOUT", "3s")
	t.Setenv("LEDGER_CACHE_PERSIST", "false")
	t.Setenv("LEDGER_EXPORT_PREFIX", "BOOKS")

	cfg := Load(New())

	assert.Equal(t, "https://books.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.False(t, cfg.Cache.Persist)
	assert.Equal(t, "BOOKS", cfg.Export.Prefix)
	assert.NoError(t, cfg.ValidateAPI())
}

func TestValidateAPI(t *testing.T) {
	err := Config{}.ValidateAPI()
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	err = Config{API: APIConfig{BaseURL: "http://x", Timeout: -time.Second}}.ValidateAPI()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestLoadDriveConfig(t *testing.T) {
	t.Setenv("GOOGLE_DRIVE_CLIENT_ID", "env-id")
	t.Setenv("GOOGLE_DRIVE_CLIENT_SECRET", "env-secret")

	v := New()
	v.Set("share.drive.client_id", "config-id")
	v.Set("share.drive.folder_id", "folder-1")

	cfg := LoadDriveConfig(v)

	assert.Equal(t, "config-id", cfg.ClientID, "config wins over the environment")
	assert.Equal(t, "env-secret", cfg.ClientSecret)
	assert.Equal(t, "folder-1", cfg.FolderID)
	assert.True(t, cfg.Configured())
	assert.NotContains(t, cfg.TokenFile, "~")
}
