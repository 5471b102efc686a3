package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Workouts  WorkoutsConfig  `yaml:"workouts"`
	Generator GeneratorConfig `yaml:"generator"`
	Kafka     KafkaConfig     `yaml:"kafka"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path"`
}

// Auth modes.
const (
	AuthModeDev       = "dev"
	AuthModeJWT       = "jwt"
	AuthModeTailscale = "tailscale"
)

type AuthConfig struct {
	Mode      string `yaml:"mode"`
	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type WorkoutsConfig struct {
	StrictTransitions bool `yaml:"strict_transitions"`
	RecomputeMetrics  bool `yaml:"recompute_metrics"`
}

type GeneratorConfig struct {
	APIURL  string        `yaml:"api_url"`
	Model   string        `yaml:"model"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT,
//	LIFTLOG_DB_DRIVER, LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE, LIFTLOG_DB_PATH,
//	LIFTLOG_AUTH_MODE, LIFTLOG_AUTH_JWT_SECRET, LIFTLOG_AUTH_JWT_ISSUER,
//	LIFTLOG_TAILSCALE_ENABLED, LIFTLOG_TAILSCALE_HOSTNAME,
//	LIFTLOG_WORKOUTS_STRICT_TRANSITIONS, LIFTLOG_WORKOUTS_RECOMPUTE_METRICS,
//	LIFTLOG_GENERATOR_MODEL, LIFTLOG_GENERATOR_TOKEN,
//	LIFTLOG_KAFKA_BROKERS (comma separated), LIFTLOG_KAFKA_TOPIC
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	setString(&cfg.Server.Host, "LIFTLOG_SERVER_HOST")
	setInt(&cfg.Server.Port, "LIFTLOG_SERVER_PORT")

	setString(&cfg.Database.Driver, "LIFTLOG_DB_DRIVER")
	setString(&cfg.Database.Host, "LIFTLOG_DB_HOST")
	setInt(&cfg.Database.Port, "LIFTLOG_DB_PORT")
	setString(&cfg.Database.Name, "LIFTLOG_DB_NAME")
	setString(&cfg.Database.User, "LIFTLOG_DB_USER")
	setString(&cfg.Database.Password, "LIFTLOG_DB_PASSWORD")
	setString(&cfg.Database.SSLMode, "LIFTLOG_DB_SSLMODE")
	setString(&cfg.Database.Path, "LIFTLOG_DB_PATH")

	setString(&cfg.Auth.Mode, "LIFTLOG_AUTH_MODE")
	setString(&cfg.Auth.JWTSecret, "LIFTLOG_AUTH_JWT_SECRET")
	setString(&cfg.Auth.JWTIssuer, "LIFTLOG_AUTH_JWT_ISSUER")

	setBool(&cfg.Tailscale.Enabled, "LIFTLOG_TAILSCALE_ENABLED")
	setString(&cfg.Tailscale.Hostname, "LIFTLOG_TAILSCALE_HOSTNAME")

	setBool(&cfg.Workouts.StrictTransitions, "LIFTLOG_WORKOUTS_STRICT_TRANSITIONS")
	setBool(&cfg.Workouts.RecomputeMetrics, "LIFTLOG_WORKOUTS_RECOMPUTE_METRICS")

	setString(&cfg.Generator.Model, "LIFTLOG_GENERATOR_MODEL")
	setString(&cfg.Generator.Token, "LIFTLOG_GENERATOR_TOKEN")

	if v := os.Getenv("LIFTLOG_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}
	setString(&cfg.Kafka.Topic, "LIFTLOG_KAFKA_TOPIC")
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

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = AuthModeDev
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "liftlog"
	}
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 20 * time.Second
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "workout.events"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	switch c.Auth.Mode {
	case AuthModeDev:
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required in jwt mode")
		}
	case AuthModeTailscale:
		if !c.Tailscale.Enabled {
			return fmt.Errorf("auth.mode tailscale requires tailscale.enabled")
		}
	default:
		return fmt.Errorf("auth.mode %q is not supported", c.Auth.Mode)
	}
	return nil
}
