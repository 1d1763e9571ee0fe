// Package config provides configuration loading and validation for sortviz.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/sortviz/pkg/session"
	"github.com/Sumatoshi-tech/sortviz/pkg/sorting"
)

// Sentinel validation errors.
var (
	ErrInvalidPort        = errors.New("invalid server port")
	ErrInvalidSize        = errors.New("array size out of range")
	ErrInvalidSpeed       = errors.New("speed out of range")
	ErrInvalidRange       = errors.New("invalid value range")
	ErrInvalidSettleDelay = errors.New("settle delay must not be negative")
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("log format must be text or json")
	ErrInvalidSampleRatio = errors.New("sample ratio must be within [0, 1]")
)

const (
	maxPort   = 65535
	envPrefix = "SORTVIZ"
)

// Config holds all configuration for sortviz.
type Config struct {
	Visualizer    VisualizerConfig    `mapstructure:"visualizer"    yaml:"visualizer"`
	Server        ServerConfig        `mapstructure:"server"        yaml:"server"`
	Logging       LoggingConfig       `mapstructure:"logging"       yaml:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability" yaml:"observability"`
}

// VisualizerConfig holds the initial session parameters.
type VisualizerConfig struct {
	Algorithm   string        `mapstructure:"algorithm"    yaml:"algorithm"`
	Size        int           `mapstructure:"size"         yaml:"size"`
	Speed       int           `mapstructure:"speed"        yaml:"speed"`
	MinValue    int           `mapstructure:"min_value"    yaml:"min_value"`
	MaxValue    int           `mapstructure:"max_value"    yaml:"max_value"`
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	Seed        uint64        `mapstructure:"seed"         yaml:"seed"`
	NoColor     bool          `mapstructure:"no_color"     yaml:"no_color"`
}

// ServerConfig holds websocket server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"          yaml:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"  yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"  yaml:"idle_timeout"`
	Port         int           `mapstructure:"port"          yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SlogLevel parses Level.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// ObservabilityConfig holds OpenTelemetry export configuration.
type ObservabilityConfig struct {
	ServiceName     string        `mapstructure:"service_name"     yaml:"service_name"`
	Environment     string        `mapstructure:"environment"      yaml:"environment"`
	OTLPEndpoint    string        `mapstructure:"otlp_endpoint"    yaml:"otlp_endpoint"`
	OTLPHeaders     string        `mapstructure:"otlp_headers"     yaml:"otlp_headers"`
	SampleRatio     float64       `mapstructure:"sample_ratio"     yaml:"sample_ratio"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	OTLPInsecure    bool          `mapstructure:"otlp_insecure"    yaml:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("sortviz")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/sortviz")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// YAML renders the configuration as a YAML document.
func (c *Config) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	return out, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("visualizer.algorithm", DefaultAlgorithm)
	viperCfg.SetDefault("visualizer.size", DefaultSize)
	viperCfg.SetDefault("visualizer.speed", DefaultSpeed)
	viperCfg.SetDefault("visualizer.min_value", sorting.DefaultMinValue)
	viperCfg.SetDefault("visualizer.max_value", sorting.DefaultMaxValue)
	viperCfg.SetDefault("visualizer.settle_delay", DefaultSettleDelay)
	viperCfg.SetDefault("visualizer.seed", 0)
	viperCfg.SetDefault("visualizer.no_color", false)

	viperCfg.SetDefault("server.host", DefaultHost)
	viperCfg.SetDefault("server.port", DefaultPort)
	viperCfg.SetDefault("server.read_timeout", DefaultReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultIdleTimeout)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("observability.service_name", DefaultServiceName)
	viperCfg.SetDefault("observability.environment", "")
	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.sample_ratio", 0.0)
	viperCfg.SetDefault("observability.shutdown_timeout", DefaultShutdownTimeout)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	vis := config.Visualizer

	_, algErr := sorting.ParseAlgorithm(vis.Algorithm)
	if algErr != nil {
		return algErr
	}

	if vis.Size < session.MinSize || vis.Size > session.MaxSize {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSize, vis.Size, session.MinSize, session.MaxSize)
	}

	if vis.Speed < session.MinSpeed || vis.Speed > session.MaxSpeed {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidSpeed, vis.Speed, session.MinSpeed, session.MaxSpeed)
	}

	if vis.MinValue <= 0 || vis.MaxValue < vis.MinValue {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, vis.MinValue, vis.MaxValue)
	}

	if vis.SettleDelay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettleDelay, vis.SettleDelay)
	}

	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	_, levelErr := config.Logging.SlogLevel()
	if levelErr != nil {
		return levelErr
	}

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	ratio := config.Observability.SampleRatio
	if ratio < 0 || ratio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, ratio)
	}

	return nil
}
