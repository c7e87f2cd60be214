package config

// Config represents the full application configuration.
type Config struct {
	Server        ServerConfig              `yaml:"server"`
	Providers     map[string]ProviderConfig `yaml:"providers"`
	HTTP          HTTPConfig                `yaml:"http"`
	Nutrition     NutritionConfig           `yaml:"nutrition"`
	Store         StoreConfig               `yaml:"store"`
	Observability ObservabilityConfig       `yaml:"observability"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address string `yaml:"address"`

	// RequestTimeout bounds one analysis request end to end, including
	// both provider calls. Parsed as a Go duration string.
	RequestTimeout string `yaml:"requestTimeout"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"apiKey"`

	// HTTP overrides (optional, use global HTTP config if not set)
	Timeout        *string `yaml:"timeout,omitempty"`
	MaxRetries     *int    `yaml:"maxRetries,omitempty"`
	InitialBackoff *string `yaml:"initialBackoff,omitempty"`
	MaxBackoff     *string `yaml:"maxBackoff,omitempty"`
}

// HTTPConfig holds global outbound HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// NutritionConfig configures the estimation engine.
type NutritionConfig struct {
	// Temperature is the sampling temperature sent to both providers.
	// Kept low so repeated estimates for the same recipe stay close.
	Temperature float64 `yaml:"temperature"`

	// MaxOutputTokens bounds the completion. The expected output is a
	// single small JSON object; this guards against runaway responses.
	MaxOutputTokens int `yaml:"maxOutputTokens"`

	// HighDeviation and MediumDeviation are the cross-model relative
	// disagreement cutoffs for the confidence tiers. A maximum per-field
	// deviation below HighDeviation classifies as high, below
	// MediumDeviation as medium, anything else as low.
	HighDeviation   float64 `yaml:"highDeviation"`
	MediumDeviation float64 `yaml:"mediumDeviation"`
}

// StoreConfig configures the recipe persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging and metrics.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`         // debug, info, error
	Format        string `yaml:"format"`        // json, human, auto
	RedactAPIKeys bool   `yaml:"redactAPIKeys"` // Redact API keys in logs
}

// MetricsConfig configures provider call metrics tracking.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}
