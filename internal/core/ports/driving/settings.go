package driving

import "github.com/custodia-labs/daylog/internal/core/domain"

// SettingsService resolves and edits the application configuration.
type SettingsService interface {
	// Config returns the resolved configuration with defaults applied.
	Config() domain.Config

	// Get returns the raw value stored under a dot-notation key.
	Get(key string) (any, bool)

	// Set parses and persists a value for a dot-notation key.
	Set(key, value string) error

	// Unset removes a stored key so its default applies.
	Unset(key string) error

	// Keys lists the keys stored in the file.
	Keys() []string

	// Path returns the configuration file path.
	Path() string
}
