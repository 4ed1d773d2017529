package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverMySQL    DatabaseDriver = "mysql"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		SignIn
		Reports
		Audit
		Tasks
		Logging
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // sqlite file
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string

		// StoreTimeout bounds every gateway call.
		StoreTimeout time.Duration
		LogLevel     string // silent, error, warn, info
	}
	SignIn struct {
		LogPath string
	}
	Reports struct {
		Dir      string
		Enabled  bool
		Schedule string // Cron format: "0 22 * * *" = nightly
	}
	Audit struct {
		RetentionDays   int
		CleanupSchedule string
	}
	Tasks struct {
		Enabled           bool
		DatabasePath      string // defaults to "<db>-tasks.db" next to the main sqlite file
		Workers           int
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Logging struct {
		Level  string
		Format string // console or json
	}
)

// NewConfig reads configuration from the environment, after loading an
// optional .env file from the working directory.
func NewConfig() *Config {
	_ = godotenv.Load()
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_host", "localhost")
	v.SetDefault("database_port", 0)
	v.SetDefault("database_user", "")
	v.SetDefault("database_password", "")
	v.SetDefault("database_name", "library")
	v.SetDefault("database_sslmode", "disable")
	v.SetDefault("database_store_timeout", "5s")
	v.SetDefault("database_log_level", "warn")

	v.SetDefault("signin_log_path", DefaultSignInLogPath)

	v.SetDefault("reports_dir", "./reports")
	v.SetDefault("reports_enabled", false)
	v.SetDefault("reports_schedule", "0 22 * * *")

	v.SetDefault("audit_retention_days", 90)
	v.SetDefault("audit_cleanup_schedule", "30 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", "")
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
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
			Driver:       DatabaseDriver(strings.ToLower(v.GetString("DATABASE_DRIVER"))),
			Path:         v.GetString("DATABASE_PATH"),
			Host:         v.GetString("DATABASE_HOST"),
			Port:         v.GetInt("DATABASE_PORT"),
			User:         v.GetString("DATABASE_USER"),
			Password:     v.GetString("DATABASE_PASSWORD"),
			Name:         v.GetString("DATABASE_NAME"),
			SSLMode:      v.GetString("DATABASE_SSLMODE"),
			StoreTimeout: v.GetDuration("DATABASE_STORE_TIMEOUT"),
			LogLevel:     v.GetString("DATABASE_LOG_LEVEL"),
		},
		SignIn: SignIn{
			LogPath: v.GetString("SIGNIN_LOG_PATH"),
		},
		Reports: Reports{
			Dir:      v.GetString("REPORTS_DIR"),
			Enabled:  v.GetBool("REPORTS_ENABLED"),
			Schedule: v.GetString("REPORTS_SCHEDULE"),
		},
		Audit: Audit{
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			DatabasePath:      v.GetString("TASKS_DATABASE_PATH"),
			Workers:           v.GetInt("TASK_WORKERS"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// Validate reports configuration the process cannot start with.
func (d Database) Validate() error {
	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("DATABASE_PATH is required for the sqlite driver")
		}
	case DriverMySQL, DriverPostgres:
		if d.Host == "" || d.Name == "" || d.User == "" {
			return fmt.Errorf("DATABASE_HOST, DATABASE_NAME and DATABASE_USER are required for the %s driver", d.Driver)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", d.Driver)
	}
	if d.StoreTimeout <= 0 {
		return fmt.Errorf("DATABASE_STORE_TIMEOUT must be positive")
	}
	return nil
}

// DSN builds the driver-specific connection string.
func (d Database) DSN() string {
	switch d.Driver {
	case DriverMySQL:
		port := d.Port
		if port == 0 {
			port = 3306
		}
		mc := mysql.NewConfig()
		mc.User = d.User
		mc.Passwd = d.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", d.Host, port)
		mc.DBName = d.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN()
	case DriverPostgres:
		port := d.Port
		if port == 0 {
			port = 5432
		}
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		u := url.URL{
			Scheme:   "postgresql",
			User:     url.UserPassword(d.User, d.Password),
			Host:     fmt.Sprintf("%s:%d", d.Host, port),
			Path:     "/" + d.Name,
			RawQuery: "sslmode=" + url.QueryEscape(sslmode),
		}
		return u.String()
	default:
		// Immediate transactions take the write lock up front so concurrent
		// conditional updates queue on busy_timeout instead of failing.
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_journal_mode=WAL&_txlock=immediate", d.Path)
	}
}
