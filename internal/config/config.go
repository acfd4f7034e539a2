package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	DBHost      string
	DBPort      string
	DBUsername  string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	Port        string
	SimInterval time.Duration
	Timezone    string
}

func NewConfig() (*Config, error) {
	env := os.Getenv("MAILDECK_ENV")
	if env == "" {
		env = "development"
	}

	if env == "development" {
		if err := godotenv.Load(); err != nil {
			fmt.Println("Warning: .env file not found, using environment variables")
		}
	}

	config := &Config{
		Environment: env,
		DBHost:      getEnvOrDefault("MAILDECK_DB_HOST", "localhost"),
		DBPort:      getEnvOrDefault("MAILDECK_DB_PORT", "5432"),
		DBUsername:  getEnvOrDefault("MAILDECK_DB_USER", "maildeck"),
		DBPassword:  os.Getenv("MAILDECK_DB_PASSWORD"),
		DBName:      getEnvOrDefault("MAILDECK_DB_NAME", "maildeck"),
		DBSSLMode:   getEnvOrDefault("MAILDECK_DB_SSLMODE", "disable"),
		Port:        getEnvOrDefault("PORT", "8080"),
		SimInterval: getEnvSeconds("MAILDECK_SIM_INTERVAL_SECONDS", 30*time.Second),
		Timezone:    getEnvOrDefault("TZ", "UTC"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return fmt.Errorf("MAILDECK_DB_PASSWORD is required")
	}

	if c.SimInterval <= 0 {
		return fmt.Errorf("MAILDECK_SIM_INTERVAL_SECONDS must be positive")
	}

	return nil
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvSeconds(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return time.Duration(seconds) * time.Second
}
