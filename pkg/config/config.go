package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TXLEDGER"

	EnvAppEnv          = "TXLEDGER_APP_ENV"
	EnvLogLevel        = "TXLEDGER_LOG_LEVEL"
	EnvLogWarnStack    = "TXLEDGER_LOG_WARN_STACK"
	EnvInputFormat     = "TXLEDGER_INPUT_FORMAT"
	EnvOutputFormat    = "TXLEDGER_OUTPUT_FORMAT"
	EnvMetricsTextfile = "TXLEDGER_METRICS_TEXTFILE"

	AppEnvLocal = "local"
	AppEnvDev   = "dev"
	AppEnvProd  = "prod"
)

type Config struct {
	App     AppConfig
	Input   InputConfig
	Output  OutputConfig
	Metrics MetricsConfig
}

var validate = validator.New()

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings after flags or env have been applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.Input.Format = strings.ToLower(strings.TrimSpace(c.Input.Format))
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
}

type AppConfig struct {
	Env          string `envconfig:"TXLEDGER_APP_ENV" default:"local"`
	LogLevel     string `envconfig:"TXLEDGER_LOG_LEVEL" default:"warn"`
	LogWarnStack bool   `envconfig:"TXLEDGER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev) || strings.EqualFold(a.Env, AppEnvLocal)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type InputConfig struct {
	// Format is auto, csv or jsonl. auto picks by file extension.
	Format string `envconfig:"TXLEDGER_INPUT_FORMAT" default:"auto" validate:"oneof=auto csv jsonl"`
}

type OutputConfig struct {
	Format string `envconfig:"TXLEDGER_OUTPUT_FORMAT" default:"csv" validate:"oneof=csv json"`
}

type MetricsConfig struct {
	// TextfilePath receives Prometheus text exposition after each run when set.
	TextfilePath string `envconfig:"TXLEDGER_METRICS_TEXTFILE"`
}

// Enabled reports whether run metrics should be exported.
func (m MetricsConfig) Enabled() bool {
	return strings.TrimSpace(m.TextfilePath) != ""
}
