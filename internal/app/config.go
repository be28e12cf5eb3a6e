package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"targetmcp/internal/domain"
)

const (
	defaultConfigName = "targetmcp"
	defaultEnvFile    = ".env"
)

// ConfigOptions locates the configuration sources.
type ConfigOptions struct {
	// ConfigFile is an explicit config path. When empty, targetmcp.{yaml,toml,json}
	// in the working directory is used if present.
	ConfigFile string
	// EnvFile is loaded into the process environment before reading env vars.
	EnvFile string
	// SSE, when set, overrides the configured transport mode.
	SSE *bool
}

var envBindings = map[string]string{
	"port":                  "PORT",
	"toolsDir":              "TARGETMCP_TOOLS_DIR",
	"log.level":             "TARGETMCP_LOG_LEVEL",
	"metrics.listenAddress": "TARGETMCP_METRICS_ADDR",
	"adobe.baseURL":         "ADOBE_BASE_URL",
	"adobe.apiKey":          "ADOBE_API_KEY",
	"adobe.accessToken":     "ADOBE_ACCESS_TOKEN",
	"adobe.activityID":      "ADOBE_ACTIVITY_ID",
	"adobe.rateLimit":       "TARGETMCP_RATE_LIMIT",
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	setConfigDefaults(v)
	return v
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("port", domain.DefaultPort)
	v.SetDefault("sse", false)
	v.SetDefault("toolsDir", "")
	v.SetDefault("log.level", domain.DefaultLogLevel)
	v.SetDefault("metrics.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("adobe.baseURL", domain.DefaultAdobeBaseURL)
	v.SetDefault("adobe.apiKey", "")
	v.SetDefault("adobe.accessToken", "")
	v.SetDefault("adobe.activityID", domain.DefaultAdobeActivityID)
	v.SetDefault("adobe.rateLimit", domain.DefaultAdobeRateLimit)
}

// LoadConfig merges defaults, the optional config file, the .env file and the
// environment, then validates the result.
func LoadConfig(opts ConfigOptions) (domain.Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = defaultEnvFile
	}
	if err := loadEnvFile(envFile); err != nil {
		return domain.Config{}, err
	}

	v := newConfigViper()
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return domain.Config{}, fmt.Errorf("read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return domain.Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return domain.Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if opts.SSE != nil {
		cfg.SSE = *opts.SSE
	}
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := ValidateConfig(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func ValidateConfig(cfg domain.Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// loadEnvFile applies path to the environment without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
