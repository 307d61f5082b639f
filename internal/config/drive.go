package config

import (
	"os"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-ledger-must-balance/internal/share"
)

// LoadDriveConfig loads Google Drive settings from Viper and environment
// variables. It follows this precedence:
// 1. Viper configuration (from config file or LEDGER_ env vars)
// 2. Direct environment variables (GOOGLE_DRIVE_*)
func LoadDriveConfig(v *viper.Viper) share.DriveConfig {
	cfg := share.DriveConfig{
		ClientID:     v.GetString("share.drive.client_id"),
		ClientSecret: v.GetString("share.drive.client_secret"),
		TokenFile:    ExpandPath(v.GetString("share.drive.token_file")),
		FolderID:     v.GetString("share.drive.folder_id"),
		CallbackAddr: v.GetString("share.drive.callback_addr"),
	}

	if cfg.ClientID == "" {
		cfg.ClientID = os.Getenv("GOOGLE_DRIVE_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = os.Getenv("GOOGLE_DRIVE_CLIENT_SECRET")
	}
	if cfg.FolderID == "" {
		cfg.FolderID = os.Getenv("GOOGLE_DRIVE_FOLDER_ID")
	}

	return cfg
}
