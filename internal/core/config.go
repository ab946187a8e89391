// Package core contains the work breakdown structure engine and the
// services built around it: the task store, EVM, configuration and the
// locked project manager used by the CLI and the MCP server.
package core

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/valter-silva-au/wbs/pkg/models"
)

// ConfigFileName is the configuration file looked up in the base path.
const ConfigFileName = ".wbsconfig"

// envPrefix scopes environment overrides, e.g. WBS_ALERTS_SPI_THRESHOLD.
const envPrefix = "WBS"

// ConfigurationManager loads and validates the .wbsconfig settings.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file and environment overrides.
type viperConfigManager struct {
	// basePath is the root directory where .wbsconfig resides.
	basePath string
	validate *validator.Validate
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// configuration files relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath, validate: validator.New()}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Project: models.ProjectConfig{File: "wbs.yaml", Format: "yaml"},
		Render:  models.RenderConfig{Precision: -1},
		Alerts:  models.AlertsConfig{SPIThreshold: 0.9, CPIThreshold: 0.9, MaxOpenPackages: 50},
		Events:  models.EventsConfig{Enabled: true},
	}
}

// LoadGlobalConfig reads .wbsconfig from the base path. A .env file in the
// base path is loaded into the environment first, and WBS_* variables
// override file values. A missing config file yields the defaults.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	if err := godotenv.Load(filepath.Join(cm.basePath, ".env")); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("project.file", cfg.Project.File)
	v.SetDefault("project.format", cfg.Project.Format)
	v.SetDefault("render.precision", cfg.Render.Precision)
	v.SetDefault("render.with_dependencies", cfg.Render.WithDependencies)
	v.SetDefault("alerts.spi_threshold", cfg.Alerts.SPIThreshold)
	v.SetDefault("alerts.cpi_threshold", cfg.Alerts.CPIThreshold)
	v.SetDefault("alerts.max_open_packages", cfg.Alerts.MaxOpenPackages)
	v.SetDefault("events.enabled", cfg.Events.Enabled)
	v.SetDefault("events.slack_webhook", cfg.Events.SlackWebhook)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", ConfigFileName, err)
	}
	cfg.Project.Format = strings.ToLower(cfg.Project.Format)
	if cfg.Project.Format == "yml" {
		cfg.Project.Format = "yaml"
	}
	return cfg, nil
}

// ValidateConfig checks cfg against its struct tags and returns one error
// listing every failing key.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	err := cm.validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q (value %v)", configKey(fe.StructNamespace()), fe.ActualTag(), fe.Value()))
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// configKey maps GlobalConfig.Alerts.SPIThreshold to alerts.spithreshold.
func configKey(namespace string) string {
	namespace = strings.TrimPrefix(namespace, "GlobalConfig.")
	return strings.ToLower(namespace)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
