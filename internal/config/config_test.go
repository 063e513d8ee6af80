package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8080), cfg.HTTP.Port)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, DefaultImportChunkSize, cfg.Import.ChunkSize)
	assert.Equal(t, 1, cfg.Import.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Import.LockTTL)
	assert.Equal(t, UnlimitedContacts, cfg.Plans.EnterpriseMaxContacts)
	assert.Empty(t, cfg.Admin.ExcludedUserIDs)
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("IMPORT_CHUNK_SIZE", "25")
	t.Setenv("PLAN_FREE_MAX_CONTACTS", "20")
	t.Setenv("ADMIN_EXCLUDED_USER_IDS", "1, 7,abc,,42")

	cfg := NewConfig()

	assert.Equal(t, 25, cfg.Import.ChunkSize)
	assert.Equal(t, 20, cfg.Plans.FreeMaxContacts)
	assert.Equal(t, []uint{1, 7, 42}, cfg.Admin.ExcludedUserIDs)
}

func TestParseUintList(t *testing.T) {
	assert.Nil(t, parseUintList(""))
	assert.Equal(t, []uint{3}, parseUintList(" 3 "))
	assert.Equal(t, []uint{1, 2}, parseUintList("1,-5,2"))
}
