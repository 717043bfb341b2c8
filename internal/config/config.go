package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Gateway GatewayConfig
	Logger  LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int
	Host string
}

// GatewayConfig holds the PayU UAT gateway endpoints. Everything points at
// the public test environment; nothing here is a secret.
type GatewayConfig struct {
	PaymentURL string // browser-post endpoint the forms target
	SuccessURL string // default surl when the operator leaves it blank
	FailureURL string // default furl when the operator leaves it blank
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Gateway: GatewayConfig{
			PaymentURL: getEnv("PAYU_PAYMENT_URL", "https://test.payu.in/_payment"),
			SuccessURL: getEnv("PAYU_SUCCESS_URL", "https://test.payu.in/admin/test_response"),
			FailureURL: getEnv("PAYU_FAILURE_URL", "https://test.payu.in/admin/test_response"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if cfg.Gateway.PaymentURL == "" {
		return nil, fmt.Errorf("PAYU_PAYMENT_URL cannot be empty")
	}

	return cfg, nil
}

// Default returns the configuration with every value at its default,
// bypassing the environment. Used by the CLI.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Host: "0.0.0.0"},
		Gateway: GatewayConfig{
			PaymentURL: "https://test.payu.in/_payment",
			SuccessURL: "https://test.payu.in/admin/test_response",
			FailureURL: "https://test.payu.in/admin/test_response",
		},
		Logger: LoggerConfig{Level: "info"},
	}
}

// Address returns the host:port the HTTP server binds to
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
