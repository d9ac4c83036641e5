// Package config provides configuration for the trendwatch service.
// Values come from an optional YAML file with environment variable
// overrides; .env files are loaded first via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default configuration values.
const (
	defaultServiceName     = "trendwatch"
	defaultServiceVersion  = "1.0.0"
	defaultServicePort     = 5001
	defaultRefreshInterval = time.Hour
	defaultDBDriver        = "sqlite3"
	defaultDBPath          = "data/trendwatch.db"
	defaultDBHost          = "localhost"
	defaultDBPort          = 5432
	defaultDBUser          = "postgres"
	defaultDBName          = "trendwatch"
	defaultDBSSLMode       = "disable"
	defaultPostLimit       = 50
	defaultIngestRPS       = 1
	defaultUserAgent       = "trendwatch:pipeline:v1.0 (analytics demo)"
	defaultESIndex         = "trendwatch_records"
	defaultLogLevel        = "info"
)

// Config holds all configuration for the trendwatch service.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Database      DatabaseConfig      `yaml:"database"`
	Ingest        IngestConfig        `yaml:"ingest"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name            string        `yaml:"name"`
	Version         string        `yaml:"version"`
	Port            int           `yaml:"port"`
	Debug           bool          `yaml:"debug"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	RefreshOnStart  bool          `yaml:"refresh_on_start"`
	RulesPath       string        `yaml:"rules_path"` // optional taxonomy override
}

// DatabaseConfig holds database configuration. The sqlite driver uses Path;
// the postgres driver uses the connection fields.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "sqlite3" or "postgres"
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// IngestConfig holds configuration for the ingestion clients.
type IngestConfig struct {
	Subreddits        []string `yaml:"subreddits"`
	PostLimit         int      `yaml:"post_limit"`
	UserAgent         string   `yaml:"user_agent"`
	RequestsPerSecond int      `yaml:"requests_per_second"`
	SyncURL           string   `yaml:"sync_url"`
	FetchURL          string   `yaml:"fetch_url"`
}

// ElasticsearchConfig holds the optional search export configuration.
// Export is disabled when URL is empty.
type ElasticsearchConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Index    string `yaml:"index"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads configuration from the given YAML path (missing file is fine,
// defaults apply) and applies environment overrides.
func Load(path string) (*Config, error) {
	// .env files are optional; only a malformed file is an error.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, unmarshalErr)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:            defaultServiceName,
			Version:         defaultServiceVersion,
			Port:            defaultServicePort,
			RefreshInterval: defaultRefreshInterval,
			RefreshOnStart:  true,
		},
		Database: DatabaseConfig{
			Driver:   defaultDBDriver,
			Path:     defaultDBPath,
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Database: defaultDBName,
			SSLMode:  defaultDBSSLMode,
		},
		Ingest: IngestConfig{
			Subreddits:        []string{"streetwear", "femalefashionadvice", "malefashionadvice"},
			PostLimit:         defaultPostLimit,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: defaultIngestRPS,
		},
		Elasticsearch: ElasticsearchConfig{
			Index: defaultESIndex,
		},
		Logging: LoggingConfig{
			Level: defaultLogLevel,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Service.Name, "TRENDWATCH_SERVICE_NAME")
	setInt(&cfg.Service.Port, "TRENDWATCH_PORT")
	setBool(&cfg.Service.Debug, "APP_DEBUG")
	setString(&cfg.Service.RulesPath, "TAXONOMY_RULES_PATH")
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Path, "SQLITE_PATH")
	setString(&cfg.Database.Host, "POSTGRES_HOST")
	setInt(&cfg.Database.Port, "POSTGRES_PORT")
	setString(&cfg.Database.User, "POSTGRES_USER")
	setString(&cfg.Database.Password, "POSTGRES_PASSWORD")
	setString(&cfg.Database.Database, "POSTGRES_DB")
	setString(&cfg.Database.SSLMode, "POSTGRES_SSLMODE")
	setString(&cfg.Ingest.SyncURL, "RECORD_STORE_SYNC_URL")
	setString(&cfg.Ingest.FetchURL, "RECORD_STORE_FETCH_URL")
	setString(&cfg.Ingest.UserAgent, "INGEST_USER_AGENT")
	setString(&cfg.Elasticsearch.URL, "ELASTICSEARCH_URL")
	setString(&cfg.Elasticsearch.Username, "ELASTICSEARCH_USERNAME")
	setString(&cfg.Elasticsearch.Password, "ELASTICSEARCH_PASSWORD")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
}

func (c *Config) validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port: %d", c.Service.Port)
	}
	if c.Database.Driver != "sqlite3" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Ingest.PostLimit <= 0 {
		return fmt.Errorf("invalid ingest post limit: %d", c.Ingest.PostLimit)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
