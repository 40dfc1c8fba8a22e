package driving

import "github.com/custodia-labs/normativa/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// APIKey returns the API key for a provider, environment first.
	APIKey(provider domain.AIProvider) string

	// Validate checks that the settings can drive an ingestion or a query.
	Validate(settings *domain.AppSettings) error
}
