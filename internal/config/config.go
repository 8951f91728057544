// internal/config/config.go
package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Mongo    MongoConfig
	Analyzer AnalyzerConfig
}

type ServerConfig struct {
	Port string
}

type LoggerConfig struct {
	Level string
}

type MongoConfig struct {
	URI    string
	DBName string
}

type AnalyzerConfig struct {
	BaseURL string
}

// Load reads configuration from the environment, with a .env file as an
// optional local override. Missing variables fall back to development
// defaults.
func Load() Config {
	// Ignore the error: a missing .env just means plain env vars.
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Mongo: MongoConfig{
			URI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
			DBName: getEnv("MONGO_DB", "stocknexus"),
		},
		Analyzer: AnalyzerConfig{
			BaseURL: getEnv("ANALYZER_SERVICE_URL", "http://localhost:8090"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
