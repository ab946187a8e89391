package models

// ProjectConfig locates the project file.
type ProjectConfig struct {
	File   string `yaml:"file" mapstructure:"file" validate:"required"`
	Format string `yaml:"format" mapstructure:"format" validate:"required,oneof=yaml json toml"`
}

// RenderConfig controls text output.
type RenderConfig struct {
	// Precision is the number of decimals for EVM scalars; -1 prints the
	// shortest exact form.
	Precision        int  `yaml:"precision" mapstructure:"precision" validate:"min=-1,max=12"`
	WithDependencies bool `yaml:"with_dependencies" mapstructure:"with_dependencies"`
}

// AlertsConfig holds the EVM thresholds the alert engine checks.
type AlertsConfig struct {
	SPIThreshold    float64 `yaml:"spi_threshold" mapstructure:"spi_threshold" validate:"min=0,max=10"`
	CPIThreshold    float64 `yaml:"cpi_threshold" mapstructure:"cpi_threshold" validate:"min=0,max=10"`
	MaxOpenPackages int     `yaml:"max_open_packages" mapstructure:"max_open_packages" validate:"min=1"`
}

// EventsConfig controls the JSONL event log.
type EventsConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	SlackWebhook string `yaml:"slack_webhook,omitempty" mapstructure:"slack_webhook" validate:"omitempty,url"`
}

// GlobalConfig holds settings read from .wbsconfig via Viper.
type GlobalConfig struct {
	Project ProjectConfig `yaml:"project" mapstructure:"project"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
	Alerts  AlertsConfig  `yaml:"alerts" mapstructure:"alerts"`
	Events  EventsConfig  `yaml:"events" mapstructure:"events"`
}
