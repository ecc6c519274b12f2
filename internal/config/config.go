package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

const redactedValue = "********"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port             string
	CORSAllowOrigins string

	// Database configuration, read verbatim from the libpq variables
	DBType     string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBDatabase string
	DBUser     string
	DBPassword string

	// ExposeErrorStack adds the captured stack trace to 500 bodies.
	// Debugging aid only, it leaks internals to callers.
	ExposeErrorStack bool
}

// Load loads configuration from environment variables.
// Database values are taken as-is: nothing is defaulted or validated.
func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "3000"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		DBType:           getEnv("DB_TYPE", "postgres"),
		DBHost:           os.Getenv("PGHOST"),
		DBPort:           os.Getenv("PGPORT"),
		DBDatabase:       os.Getenv("PGDATABASE"),
		DBUser:           os.Getenv("PGUSER"),
		DBPassword:       os.Getenv("PGPASSWORD"),
		ExposeErrorStack: getEnvAsBool("EXPOSE_ERROR_STACK", false),
	}
}

// ConnectionString builds the postgresql:// target without any escaping
func (c *Config) ConnectionString() string {
	return connectionString(c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBDatabase)
}

// RedactedConnectionString is ConnectionString with the password masked
func (c *Config) RedactedConnectionString() string {
	return connectionString(c.DBUser, redact(c.DBPassword), c.DBHost, c.DBPort, c.DBDatabase)
}

// LogEnvironment writes the database settings to logger, password masked
func (c *Config) LogEnvironment(logger *log.Logger) {
	logger.Println("Environment variables:")
	logger.Printf("PGUSER: %s", c.DBUser)
	logger.Printf("PGHOST: %s", c.DBHost)
	logger.Printf("PGDATABASE: %s", c.DBDatabase)
	logger.Printf("PGPASSWORD: %s", redact(c.DBPassword))
	logger.Printf("PGPORT: %s", c.DBPort)

	if c.DBType == "sqlite" {
		logger.Printf("Using sqlite database file: %s", c.DBDatabase)
		return
	}
	logger.Printf("Using connection string: %s", c.RedactedConnectionString())
}

func connectionString(user, password, host, port, database string) string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", user, password, host, port, database)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return redactedValue
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean or returns a default value
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
