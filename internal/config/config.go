package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-ledger-must-balance/internal/common"
)

// EnvPrefix prefixes every environment override, e.g. LEDGER_API_BASE_URL.
const EnvPrefix = "LEDGER"

// Config is the resolved application configuration.
type Config struct {
	API      APIConfig
	Database DatabaseConfig
	Export   ExportConfig
	Display  DisplayConfig
	Logging  LoggingConfig
	Cache    CacheConfig
	Share    ShareConfig
}

// APIConfig locates the REST API.
type APIConfig struct {
	BaseURL     string
	Timeout     time.Duration
	ListTimeout time.Duration
}

// CacheConfig controls the transaction snapshot.
type CacheConfig struct {
	Persist bool
}

// DatabaseConfig locates the local sqlite file.
type DatabaseConfig struct {
	Path string
}

// ExportConfig controls where ledgers are written.
type ExportConfig struct {
	Dir    string
	Prefix string
}

// ShareConfig controls the share chain.
type ShareConfig struct {
	Open         bool
	DriveConvert bool
}

// DisplayConfig controls amount formatting.
type DisplayConfig struct {
	Locale   string
	Currency string
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string
	Format string
}

// New returns a Viper instance with defaults and LEDGER_ environment
// overrides wired up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers the default for every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("api.list_timeout", 15*time.Second)
	v.SetDefault("cache.persist", true)
	v.SetDefault("database.path", filepath.Join("~", ".local", "share", "ledger", "ledger.db"))
	v.SetDefault("export.dir", filepath.Join("~", ".local", "share", "ledger", "exports"))
	v.SetDefault("export.prefix", "ACC_export")
	v.SetDefault("share.open", true)
	v.SetDefault("share.drive.convert", false)
	v.SetDefault("share.drive.token_file", filepath.Join("~", ".config", "ledger", "drive-token.json"))
	v.SetDefault("display.locale", "id")
	v.SetDefault("display.currency", "Rp")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the configuration. A missing api.base_url is reported
// by Validate, not here, so that offline commands still work.
func Load(v *viper.Viper) Config {
	return Config{
		API: APIConfig{
			BaseURL:     v.GetString("api.base_url"),
			Timeout:     v.GetDuration("api.timeout"),
			ListTimeout: v.GetDuration("api.list_timeout"),
		},
		Cache:    CacheConfig{Persist: v.GetBool("cache.persist")},
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Export: ExportConfig{
			Dir:    ExpandPath(v.GetString("export.dir")),
			Prefix: v.GetString("export.prefix"),
		},
		Share: ShareConfig{
			Open:         v.GetBool("share.open"),
			DriveConvert: v.GetBool("share.drive.convert"),
		},
		Display: DisplayConfig{
			Locale:   v.GetString("display.locale"),
			Currency: v.GetString("display.currency"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}
}

// ValidateAPI checks the settings needed to reach the server.
func (c Config) ValidateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url (set it in the config file or LEDGER_API_BASE_URL)", common.ErrMissingConfig)
	}
	if c.API.Timeout < 0 || c.API.ListTimeout < 0 {
		return fmt.Errorf("%w: api timeouts cannot be negative", common.ErrInvalidConfig)
	}
	return nil
}
