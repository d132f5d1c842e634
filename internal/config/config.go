package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string

	DBDriver    string
	DatabaseURL string

	MongoURI      string
	MongoDatabase string

	DiscordWebhook string
	LogLevel       slog.Level

	LogRetention        time.Duration
	PruneInterval       time.Duration
	DemoRefreshInterval time.Duration

	OpenAIBaseURL string
}

// Load reads the process environment, after merging any of files that
// exist. Missing files are not an error.
func Load(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			godotenv.Load(f)
		}
	}

	return &Config{
		Addr:                getenvDefault("ADDR", "127.0.0.1:5000"),
		DBDriver:            strings.ToLower(getenvDefault("DB_DRIVER", "postgres")),
		DatabaseURL:         getenvDefault("DATABASE_URL", "host=localhost user=postgres password=123 dbname=reviews"),
		MongoURI:            os.Getenv("MONGO_URI"),
		MongoDatabase:       getenvDefault("MONGO_DATABASE", "ReviewSandbox"),
		DiscordWebhook:      os.Getenv("DISCORD_WEBHOOK"),
		LogLevel:            parseLevel(os.Getenv("LOG_LEVEL")),
		LogRetention:        time.Duration(getenvIntDefault("LOG_RETENTION_DAYS", 30)) * 24 * time.Hour,
		PruneInterval:       getenvDurationDefault("PRUNE_INTERVAL", 24*time.Hour),
		DemoRefreshInterval: getenvDurationDefault("DEMO_REFRESH_INTERVAL", time.Hour),
		OpenAIBaseURL:       getenvDefault("OPENAI_BASE_URL", "https://api.openai.com"),
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getenvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseLevel(v string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return level
}
