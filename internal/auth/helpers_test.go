package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sunrise-events/sunrise/internal/config"
	"github.com/sunrise-events/sunrise/internal/entities"
)

const testPassword = "correct-horse-battery"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "auth.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.User{}, &entities.RateLimitRecord{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	})
	return db
}

func testAuthConfig(mode config.AuthMode) config.Auth {
	return config.Auth{
		Mode:            mode,
		SessionLifetime: 24 * time.Hour,
		TokenExpiry:     time.Hour,
		BcryptCost:      4,
		SecureCookies:   false,
		LockoutDuration: 30 * time.Minute,
	}
}

func createTestUser(t *testing.T, svc *Service, username string, role entities.UserRole) *entities.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), username, username+"@example.com", testPassword, role)
	require.NoError(t, err)
	return user
}
