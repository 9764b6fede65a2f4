package driving

import "github.com/custodia-labs/telemachus/internal/core/domain"

// SettingsService resolves application settings from configuration.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set parses value according to the key's type and stores it.
	// Returns domain.ErrInvalidInput for an unknown key or unparsable value.
	Set(key, value string) error

	// Value returns the effective value of one key, defaults applied.
	// Returns domain.ErrInvalidInput for an unknown key.
	Value(key string) (string, error)

	// Keys lists the recognised configuration keys in sorted order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
