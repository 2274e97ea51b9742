// Package config loads the settings of a synchronization run. They are read
// once at startup and never change afterwards.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/naka-gawa/pr-sheet-sync/internal/domain"
)

// Keys shared by environment variables and bound command line flags.
const (
	KeySpreadsheetID     = "spreadsheet_id"
	KeySheetName         = "sheet_name"
	KeyGoogleCredentials = "google_credentials"
	KeyCredentialsPath   = "credentials_path"
	KeyGitHubToken       = "github_token"
	KeyGitHubAPI         = "github_api"
)

// Validation errors returned by Load.
var (
	ErrMissingSpreadsheetID = errors.New("SPREADSHEET_ID is not set")
	ErrMissingSheetName     = errors.New("SHEET_NAME is not set")
	ErrMissingCredentials   = errors.New("neither GOOGLE_CREDENTIALS nor CREDENTIALS_PATH is set")
)

// Config is the immutable configuration of one run.
type Config struct {
	SpreadsheetID string
	SheetName     string
	// GoogleCredentials is an inline service account key; it wins over CredentialsPath.
	GoogleCredentials string
	CredentialsPath   string
	GitHubToken       string
	GitHubAPI         string
}

// LoadEnvFile loads variables from a dotenv file without overriding the
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v, which may already have flags bound to
// the keys above, falling back to the environment.
func Load(v *viper.Viper) (*Config, error) {
	for _, key := range []string{KeySpreadsheetID, KeySheetName, KeyGoogleCredentials, KeyCredentialsPath, KeyGitHubToken, KeyGitHubAPI} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	v.AutomaticEnv()
	v.SetDefault(KeyGitHubAPI, "rest")

	cfg := &Config{
		SpreadsheetID:     v.GetString(KeySpreadsheetID),
		SheetName:         v.GetString(KeySheetName),
		GoogleCredentials: v.GetString(KeyGoogleCredentials),
		CredentialsPath:   v.GetString(KeyCredentialsPath),
		GitHubToken:       v.GetString(KeyGitHubToken),
		GitHubAPI:         v.GetString(KeyGitHubAPI),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.SpreadsheetID == "":
		return ErrMissingSpreadsheetID
	case c.SheetName == "":
		return ErrMissingSheetName
	case c.GoogleCredentials == "" && c.CredentialsPath == "":
		return ErrMissingCredentials
	}
	return nil
}

// Target returns the worksheet pull requests are synchronized into.
func (c *Config) Target() domain.SheetTarget {
	return domain.SheetTarget{SpreadsheetID: c.SpreadsheetID, SheetName: c.SheetName}
}

// CredentialsJSON returns the service account key, reading CredentialsPath
// when no inline key is set.
func (c *Config) CredentialsJSON() ([]byte, error) {
	if c.GoogleCredentials != "" {
		return []byte(c.GoogleCredentials), nil
	}
	data, err := os.ReadFile(c.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return data, nil
}
