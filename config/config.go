package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyAPIURL               = "api.url"
	KeyAPITimeout           = "api.timeout"
	KeyReportTimezone       = "report.timezone"
	KeyReportMaxConcurrency = "report.max_concurrency"
	KeyStoragePath          = "storage.path"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"

	EnvPrefix = "ATTENDLOG"
)

type Config struct {
	API     APIConfig     `mapstructure:"api" validate:"required"`
	Report  ReportConfig  `mapstructure:"report"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`

	// Resolved from Report.Timezone after validation (not loaded from config).
	Location *time.Location `mapstructure:"-" validate:"-"`
}

type APIConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type ReportConfig struct {
	Timezone       string `mapstructure:"timezone" validate:"required"`
	MaxConcurrency int    `mapstructure:"max_concurrency" validate:"min=1,max=32"`
}

type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# attendlog configuration
api:
  url: "https://attendance.example.com"
  timeout: 30s

report:
  timezone: "UTC"
  max_concurrency: 4

storage:
  path: "~/.attendlog/attendlog.db"

log:
  level: "info"
  format: "console"
`
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	location, err := time.LoadLocation(strings.TrimSpace(cfg.Report.Timezone))
	if err != nil {
		return nil, fmt.Errorf("validation failed: report.timezone %q: %w", cfg.Report.Timezone, err)
	}
	cfg.Location = location
	cfg.API.URL = strings.TrimRight(strings.TrimSpace(cfg.API.URL), "/")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyAPIURL, "https://attendance.example.com")
	v.SetDefault(KeyAPITimeout, 30*time.Second)
	v.SetDefault(KeyReportTimezone, "UTC")
	v.SetDefault(KeyReportMaxConcurrency, 4)
	v.SetDefault(KeyStoragePath, "~/.attendlog/attendlog.db")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}
