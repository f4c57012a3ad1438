package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultDatabaseURL is used when DATABASE_URL is unset. Anything that is not a
// postgres DSN is treated as a SQLite file path.
const DefaultDatabaseURL = "./bookshelf.db"

type (
	Config struct {
		HTTP
		Global
		Database
		CORS
		Tasks
		TagCleanup
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		URL             string
		MaxOpenConns    int
		MaxIdleConns    int
		ConnMaxIdleTime time.Duration
		ConnectTimeout  time.Duration
		LogLevel        string // silent | error | warn | info
	}
	CORS struct {
		Origins []string
	}
	Tasks struct {
		Enabled         bool
		DBPath          string // Empty means "<database dir>/<name>-tasks.db" next to a SQLite database
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	TagCleanup struct {
		Enabled  bool
		Schedule string // Cron format: "30 3 * * *" = daily at 03:30
	}
)

// NewConfig loads .env (if present) into the process environment and reads
// the configuration from environment variables.
func NewConfig() *Config {
	loadDotEnv(".env")
	return fromViper(newViper())
}

func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		log.Printf("WARNING: failed to load %s: %v", path, err)
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Database defaults
	v.SetDefault("database_url", DefaultDatabaseURL)
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 5)
	v.SetDefault("db_conn_max_idle_time", "5m")
	v.SetDefault("db_connect_timeout", "5s")
	v.SetDefault("db_log_level", "warn")

	v.SetDefault("cors_origin", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_db_path", "")
	v.SetDefault("tasks_workers", 2)
	v.SetDefault("tasks_release_after", "15m")
	v.SetDefault("tasks_cleanup_interval", "1h")

	v.SetDefault("tag_cleanup_enabled", true)
	v.SetDefault("tag_cleanup_schedule", "30 3 * * *")
	return v
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			ConnectTimeout:  v.GetDuration("DB_CONNECT_TIMEOUT"),
			LogLevel:        strings.ToLower(v.GetString("DB_LOG_LEVEL")),
		},
		CORS: CORS{
			Origins: splitList(v.GetString("CORS_ORIGIN")),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DBPath:          v.GetString("TASKS_DB_PATH"),
			Workers:         v.GetInt("TASKS_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASKS_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASKS_CLEANUP_INTERVAL"),
		},
		TagCleanup: TagCleanup{
			Enabled:  v.GetBool("TAG_CLEANUP_ENABLED"),
			Schedule: v.GetString("TAG_CLEANUP_SCHEDULE"),
		},
	}
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
