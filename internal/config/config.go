package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // Single local user, no authentication
	AuthModeLocal AuthMode = "local" // Local user database with sessions and API tokens (default)
)

type (
	Config struct {
		HTTP
		Global
		Database
		Logging
		Auth
		Import
		Plans
		Admin
		Tasks
		Maintenance
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
		// HSTSMaxAge enables Strict-Transport-Security when positive (seconds).
		HSTSMaxAge int
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Logging struct {
		Level  string // debug, info, warn, error
		Format string // json, console, auto
	}
	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		TokenExpiry     time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Import struct {
		ChunkSize     int           // Contacts per insert call (default: 100)
		Workers       int           // Concurrent chunk writers, 1 = sequential
		MaxFileSizeMB int           // Upper bound for uploaded files
		LockTTL       time.Duration // How long a per-user import lock stays valid
	}
	// Plans maps subscription tiers to contact ceilings. -1 means unlimited.
	Plans struct {
		FreeMaxContacts       int
		BasicMaxContacts      int
		ProMaxContacts        int
		EnterpriseMaxContacts int
	}
	Admin struct {
		// ExcludedUserIDs are left out of aggregate statistics (internal and test accounts).
		ExcludedUserIDs []uint
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Maintenance struct {
		Enabled            bool
		Schedule           string // Cron format: "0 3 * * *" = daily at 03:00
		AuditRetentionDays int
	}
	Metrics struct {
		Enabled bool
	}
)

// parseUintList parses a comma-separated list of IDs, skipping invalid entries.
func parseUintList(raw string) []uint {
	var ids []uint
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8080)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("hsts_max_age", 0)
	v.SetDefault("shutdown_timeout_in_seconds", 5)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "auto")

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "")       // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")  // 24 hours
	v.SetDefault("auth_token_expiry", "720h")     // 30 days
	v.SetDefault("auth_bcrypt_cost", 12)          // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)     // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)    // Max failed attempts
	v.SetDefault("auth_rate_limit_window", "15m") // Window for counting attempts
	v.SetDefault("auth_lockout_duration", "30m")  // Lockout duration

	// Import defaults
	v.SetDefault("import_chunk_size", DefaultImportChunkSize)
	v.SetDefault("import_workers", 1)
	v.SetDefault("import_max_file_size_mb", 10)
	v.SetDefault("import_lock_ttl", "5m")

	// Plan ceilings
	v.SetDefault("plan_free_max_contacts", 50)
	v.SetDefault("plan_basic_max_contacts", 500)
	v.SetDefault("plan_pro_max_contacts", 5000)
	v.SetDefault("plan_enterprise_max_contacts", UnlimitedContacts)

	v.SetDefault("admin_excluded_user_ids", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("maintenance_enabled", true)
	v.SetDefault("maintenance_schedule", "0 3 * * *")
	v.SetDefault("audit_retention_days", 90)

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port:       v.GetInt32("PORT"),
			Host:       v.GetString("HOST"),
			HSTSMaxAge: v.GetInt("HSTS_MAX_AGE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Import: Import{
			ChunkSize:     v.GetInt("IMPORT_CHUNK_SIZE"),
			Workers:       v.GetInt("IMPORT_WORKERS"),
			MaxFileSizeMB: v.GetInt("IMPORT_MAX_FILE_SIZE_MB"),
			LockTTL:       v.GetDuration("IMPORT_LOCK_TTL"),
		},
		Plans: Plans{
			FreeMaxContacts:       v.GetInt("PLAN_FREE_MAX_CONTACTS"),
			BasicMaxContacts:      v.GetInt("PLAN_BASIC_MAX_CONTACTS"),
			ProMaxContacts:        v.GetInt("PLAN_PRO_MAX_CONTACTS"),
			EnterpriseMaxContacts: v.GetInt("PLAN_ENTERPRISE_MAX_CONTACTS"),
		},
		Admin: Admin{
			ExcludedUserIDs: parseUintList(v.GetString("ADMIN_EXCLUDED_USER_IDS")),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Maintenance: Maintenance{
			Enabled:            v.GetBool("MAINTENANCE_ENABLED"),
			Schedule:           v.GetString("MAINTENANCE_SCHEDULE"),
			AuditRetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
