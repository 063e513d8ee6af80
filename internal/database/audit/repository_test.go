package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sunrise-events/sunrise/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewRepository(db)
}

func TestRepository_LogEvent(t *testing.T) {
	repo := setupTestDB(t)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventImport,
		Action:      "vcard_import",
		Description: "Imported 10 contacts from vCard",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		event := &entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventImport,
			Action:    "csv_import",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}
		require.NoError(t, repo.LogEvent(ctx, event))
	}
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: 2, EventType: entities.AuditEventImport}))

	events, total, err := repo.GetEvents(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, events, 10)
	assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt))

	events, _, err = repo.GetEvents(ctx, 1, 10, 10)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	_, all, err := repo.GetEvents(ctx, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(16), all)
}

func TestRepository_CountSince(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	now := time.Now()

	events := []entities.AuditEvent{
		{UserID: 1, EventType: entities.AuditEventImport, CreatedAt: now.Add(-time.Hour)},
		{UserID: 2, EventType: entities.AuditEventImport, CreatedAt: now.Add(-2 * time.Hour)},
		{UserID: 1, EventType: entities.AuditEventImport, CreatedAt: now.Add(-48 * time.Hour)},
		{UserID: 1, EventType: entities.AuditEventExport, CreatedAt: now.Add(-time.Hour)},
	}
	for i := range events {
		require.NoError(t, repo.LogEvent(ctx, &events[i]))
	}

	tests := []struct {
		name     string
		excluded []uint
		expected int64
	}{
		{"all users", nil, 2},
		{"excluding user 2", []uint{2}, 1},
		{"excluding both", []uint{1, 2}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := repo.CountSince(ctx, entities.AuditEventImport, now.Add(-24*time.Hour), tt.excluded)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, count)
		})
	}
}

func TestRepository_DeleteOldEvents(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: 1, CreatedAt: time.Now().Add(-100 * 24 * time.Hour)}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: 1, CreatedAt: time.Now()}))

	deleted, err := repo.DeleteOldEvents(ctx, time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err := repo.GetEvents(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
