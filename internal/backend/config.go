package backend

import (
	"fmt"

	"gastos/internal/config"
	gsheet "gastos/internal/sheets/google"
)

// FromAppConfig converts application config to backend config
func FromAppConfig(appConfig *config.Config) Config {
	creds := appConfig.GoogleServiceAccountFile
	if creds == "" {
		creds = appConfig.GoogleApplicationCredsFile
	}
	return Config{
		Type:           BackendType(appConfig.DataBackend),
		MemorySeedFile: appConfig.MemorySeedFile,
		SQLiteDBPath:   appConfig.SQLiteDBPath,
		PostgresDSN:    appConfig.PostgresDSN,
		Google: gsheet.Config{
			SpreadsheetID:   appConfig.GoogleSpreadsheetID,
			SpreadsheetName: appConfig.GoogleSpreadsheetName,
			CredentialsJSON: appConfig.GoogleServiceAccountJSON,
			CredentialsFile: creds,
		},
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
		CacheTTL:     appConfig.CacheTTL,
	}
}

// MirrorConfig returns the Google Sheets backend config the mirror worker
// replays onto, whatever the primary backend is.
func (c Config) MirrorConfig() Config {
	return Config{Type: SheetsBackend, Google: c.Google}
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case PostgresBackend:
		if c.PostgresDSN == "" {
			return fmt.Errorf("PostgreSQL DSN is required for postgres backend")
		}
	case SheetsBackend:
		if c.Google.CredentialsJSON == "" && c.Google.CredentialsFile == "" {
			return fmt.Errorf("service account credentials are required for sheets backend")
		}
	}

	if c.CacheTTL < 0 {
		return fmt.Errorf("cache TTL must not be negative: %v", c.CacheTTL)
	}

	return nil
}

// GetBackendTypes returns all supported backend types
func GetBackendTypes() []BackendType {
	return []BackendType{MemoryBackend, SheetsBackend, SQLiteBackend, PostgresBackend}
}
