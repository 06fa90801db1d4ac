package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App         AppConfig       `yaml:"app"`
	Server      ServerConfig    `yaml:"server"`
	MCP         MCPConfig       `yaml:"mcp"`
	CORS        CORSConfig      `yaml:"cors"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	Logging     LoggingConfig   `yaml:"logging"`
	Tracing     TracingConfig   `yaml:"tracing"`
	Auth        AuthConfig      `yaml:"auth"`
	Seed        bool            `yaml:"seed"`
	Environment string          `yaml:"environment"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

type MCPConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Transport string `yaml:"transport"`
}

type CORSConfig struct {
	AllowAllOrigins bool     `yaml:"allow_all_origins"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	PublicPerMinute int `yaml:"public_per_minute"`
	AgentPerMinute  int `yaml:"agent_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	ServiceName  string  `yaml:"service_name"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
}

// AuthConfig carries a secret key placeholder for projects that add token
// auth on top of the scaffold. Nothing in this repo consumes it.
type AuthConfig struct {
	SecretKey string `yaml:"secret_key"`
}

// Load builds configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Stencil"),
			Description: getEnv("APP_DESCRIPTION", "API + MCP service scaffold"),
		},
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		MCP: MCPConfig{
			Host:      getEnv("MCP_HOST", "0.0.0.0"),
			Port:      getEnvInt("MCP_PORT", 8081),
			Transport: getEnv("MCP_TRANSPORT", "stdio"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		RateLimit: RateLimitConfig{
			PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC", 120),
			AgentPerMinute:  getEnvInt("RATE_LIMIT_AGENT", 300),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			Exporter:     getEnv("TRACING_EXPORTER", "stdout"),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "stencil"),
			OTLPEndpoint: getEnv("TRACING_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 1.0),
		},
		Auth: AuthConfig{
			SecretKey: getEnv("SECRET_KEY", ""),
		},
		Seed:        getEnvBool("SEED_SAMPLE_DATA", true),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	// Development allows any origin unless an explicit whitelist is set.
	cfg.CORS.AllowAllOrigins = cfg.Environment != "production" && len(cfg.CORS.AllowedOrigins) == 0

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile overlays values from a YAML config file on top of cfg.
// Env-derived values remain in effect for any key the file omits.
func LoadFile(path string, cfg Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	// The file may change the environment or whitelist, so the allow-all
	// derivation from Load is stale. Production never serves allow-all.
	cfg.CORS.AllowAllOrigins = cfg.Environment != "production" && len(cfg.CORS.AllowedOrigins) == 0

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d: must be between 1 and 65535", c.Server.Port)
	}
	if c.MCP.Port < 1 || c.MCP.Port > 65535 {
		return fmt.Errorf("invalid MCP_PORT %d: must be between 1 and 65535", c.MCP.Port)
	}
	switch c.MCP.Transport {
	case "stdio", "sse", "http":
	default:
		return fmt.Errorf("invalid MCP_TRANSPORT %q: must be stdio, sse, or http", c.MCP.Transport)
	}
	if c.Tracing.SampleRate < 0.0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATE %f: must be between 0.0 and 1.0", c.Tracing.SampleRate)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
