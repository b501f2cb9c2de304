package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bizsuite/approval-engine/internal/domain/approval"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	SLA      SLAConfig      `mapstructure:"sla"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SLAConfig holds the per-level decision windows and the urgent
// shortening factor. These are deployment configuration, not engine
// constants.
type SLAConfig struct {
	WindowL1      time.Duration `mapstructure:"window_l1"`
	WindowL2      time.Duration `mapstructure:"window_l2"`
	WindowL3      time.Duration `mapstructure:"window_l3"`
	WindowL4      time.Duration `mapstructure:"window_l4"`
	WindowL5      time.Duration `mapstructure:"window_l5"`
	UrgentFactor  float64       `mapstructure:"urgent_factor"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file; a missing file falls back to defaults
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Database defaults
	viper.SetDefault("database.path", "data/approvals.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	// SLA defaults: wider windows for lower levels
	defaults := approval.DefaultSLAConfig()
	viper.SetDefault("sla.window_l1", defaults.BaseWindows[approval.LevelL1])
	viper.SetDefault("sla.window_l2", defaults.BaseWindows[approval.LevelL2])
	viper.SetDefault("sla.window_l3", defaults.BaseWindows[approval.LevelL3])
	viper.SetDefault("sla.window_l4", defaults.BaseWindows[approval.LevelL4])
	viper.SetDefault("sla.window_l5", defaults.BaseWindows[approval.LevelL5])
	viper.SetDefault("sla.urgent_factor", defaults.UrgentFactor)
	viper.SetDefault("sla.check_interval", 5*time.Minute)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("server.port", "APPROVAL_SERVER_PORT")
	viper.BindEnv("database.path", "APPROVAL_DATABASE_PATH")
	viper.BindEnv("logger.level", "APPROVAL_LOG_LEVEL")
	viper.BindEnv("sla.urgent_factor", "APPROVAL_SLA_URGENT_FACTOR")
	viper.BindEnv("sla.check_interval", "APPROVAL_SLA_CHECK_INTERVAL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.SLA.CheckInterval <= 0 {
		return fmt.Errorf("sla.check_interval must be positive")
	}
	return c.SLAEngineConfig().Validate()
}

// SLAEngineConfig converts the configuration section into the domain
// SLA table
func (c *Config) SLAEngineConfig() approval.SLAConfig {
	return approval.SLAConfig{
		BaseWindows: map[approval.Level]time.Duration{
			approval.LevelL1: c.SLA.WindowL1,
			approval.LevelL2: c.SLA.WindowL2,
			approval.LevelL3: c.SLA.WindowL3,
			approval.LevelL4: c.SLA.WindowL4,
			approval.LevelL5: c.SLA.WindowL5,
		},
		UrgentFactor: c.SLA.UrgentFactor,
	}
}
