package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "CATALOG_CONFIG_FILE"

type Config struct {
	Server  ServerConfig
	OTLP    OTLPConfig
	Catalog CatalogConfig
}

type ServerConfig struct {
	Port                 string
	Host                 string
	IdleTimeout          time.Duration
	DurationMillisMetric bool
}

type OTLPConfig struct {
	Endpoint      string
	ServiceName   string
	Environment   string
	ExportEnabled bool
	LogLevel      slog.Level
}

type CatalogConfig struct {
	// SeedFile is a JSON catalog loaded at startup; empty selects the embedded catalog.
	SeedFile string
}

// key -> environment variable
var envBindings = map[string]string{
	"server.host":                   "SERVER_HOST",
	"server.port":                   "SERVER_PORT",
	"server.idle_timeout":           "SERVER_IDLE_TIMEOUT",
	"server.duration_millis_metric": "HTTP_DURATION_MS_METRIC",
	"otlp.endpoint":                 "OTEL_EXPORTER_OTLP_ENDPOINT",
	"otlp.service_name":             "OTEL_SERVICE_NAME",
	"otlp.environment":              "OTEL_ENVIRONMENT",
	"otlp.export_enabled":           "TELEMETRY_EXPORT_ENABLED",
	"log_level":                     "LOG_LEVEL",
	"catalog.seed_file":             "CATALOG_SEED_FILE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.duration_millis_metric", false)
	v.SetDefault("otlp.endpoint", "localhost:4317")
	v.SetDefault("otlp.service_name", "catalog-api")
	v.SetDefault("otlp.environment", "development")
	v.SetDefault("otlp.export_enabled", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("catalog.seed_file", "")
}

// LoadConfig loads configuration from defaults, an optional YAML file,
// a .env file in the working directory and environment variables, in
// increasing order of precedence.
func LoadConfig(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	path, err := configFilePath(args)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host:                 v.GetString("server.host"),
			Port:                 v.GetString("server.port"),
			IdleTimeout:          v.GetDuration("server.idle_timeout"),
			DurationMillisMetric: v.GetBool("server.duration_millis_metric"),
		},
		OTLP: OTLPConfig{
			Endpoint:      v.GetString("otlp.endpoint"),
			ServiceName:   v.GetString("otlp.service_name"),
			Environment:   v.GetString("otlp.environment"),
			ExportEnabled: v.GetBool("otlp.export_enabled"),
			LogLevel:      level,
		},
		Catalog: CatalogConfig{
			SeedFile: v.GetString("catalog.seed_file"),
		},
	}, nil
}

// configFilePath resolves the optional config file from --config, overridden by CATALOG_CONFIG_FILE.
func configFilePath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("catalog-api", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "path to a YAML config file")
	if err := cmdLine.Parse(args); err != nil {
		return "", err
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env, nil
	}
	return *arg, nil
}
