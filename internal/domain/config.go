package domain

// Config is the decoded runtime configuration.
type Config struct {
	Port     int           `mapstructure:"port" validate:"min=1,max=65535"`
	SSE      bool          `mapstructure:"sse"`
	ToolsDir string        `mapstructure:"toolsDir"`
	Log      LogConfig     `mapstructure:"log"`
	Metrics  MetricsConfig `mapstructure:"metrics"`
	Adobe    AdobeConfig   `mapstructure:"adobe"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// MetricsConfig controls the standalone observability listener. In SSE mode
// /metrics and /healthz are always served on the main listener as well.
type MetricsConfig struct {
	ListenAddress string `mapstructure:"listenAddress" validate:"omitempty,hostname_port"`
}

type AdobeConfig struct {
	BaseURL     string  `mapstructure:"baseURL" validate:"required,url"`
	APIKey      string  `mapstructure:"apiKey"`
	AccessToken string  `mapstructure:"accessToken"`
	ActivityID  string  `mapstructure:"activityID" validate:"required"`
	RateLimit   float64 `mapstructure:"rateLimit" validate:"min=0"`
}

// Token returns the bearer token, falling back to the API key.
func (c AdobeConfig) Token() string {
	if c.AccessToken != "" {
		return c.AccessToken
	}
	return c.APIKey
}
