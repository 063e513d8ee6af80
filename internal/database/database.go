package database

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sunrise-events/sunrise/internal/entities"
	"github.com/sunrise-events/sunrise/internal/logging"
)

type Database struct {
	DB *gorm.DB
}

// Models lists every entity managed by AutoMigrate.
func Models() []any {
	return []any{
		&entities.User{},
		&entities.Contact{},
		&entities.Subscription{},
		&entities.AuditEvent{},
		&entities.RateLimitRecord{},
		&entities.ImportLock{},
	}
}

// NewGormLogger routes gorm's output through zerolog.
func NewGormLogger(level logger.LogLevel) logger.Interface {
	return logger.New(logging.Printf{Level: zerolog.DebugLevel, Prefix: "gorm: "}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

func NewDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Warn)
}

// NewSilentDatabase opens a database without query logging. Used by tests and the CLI.
func NewSilentDatabase(dbPath string) (*Database, error) {
	return open(dbPath, logger.Silent)
}

func open(dbPath string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+"?_busy_timeout=5000"), &gorm.Config{
		Logger:         NewGormLogger(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := backfillEmailKeys(db); err != nil {
		return nil, fmt.Errorf("failed to backfill contact email keys: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("database initialized")

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks database connectivity.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// backfillEmailKeys fills email_key for contacts stored before the column
// existed.
func backfillEmailKeys(db *gorm.DB) error {
	var rows []entities.Contact
	err := db.Model(&entities.Contact{}).Select("id", "email").
		Where("(email_key IS NULL OR email_key = '') AND email <> ''").
		Find(&rows).Error
	if err != nil {
		return err
	}

	for _, c := range rows {
		err := db.Model(&entities.Contact{}).Where("id = ?", c.ID).
			UpdateColumn("email_key", entities.NormalizeEmail(c.Email)).Error
		if err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		log.Info().Int("contacts", len(rows)).Msg("backfilled contact email keys")
	}
	return nil
}
