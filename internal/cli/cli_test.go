package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-events/sunrise/internal/database"
	"github.com/sunrise-events/sunrise/internal/database/contacts"
	subsrepo "github.com/sunrise-events/sunrise/internal/database/subscriptions"
	"github.com/sunrise-events/sunrise/internal/entities"
)

// execute runs the CLI against dbPath and returns stdout.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--db", dbPath}, args...))
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func createTestUser(t *testing.T, dbPath string) {
	t.Helper()
	out, err := execute(t, dbPath, "user", "create",
		"--username", "alice", "--email", "alice@example.com", "--password", "correct-horse-battery")
	require.NoError(t, err, out)
	assert.Contains(t, out, `Created member user "alice" with ID 1`)
}

func openDB(t *testing.T, dbPath string) *database.Database {
	t.Helper()
	db, err := database.NewSilentDatabase(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserCreate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sunrise.db")
	createTestUser(t, dbPath)

	_, err := execute(t, dbPath, "user", "create",
		"--username", "alice", "--email", "other@example.com", "--password", "correct-horse-battery")
	assert.Error(t, err)

	_, err = execute(t, dbPath, "user", "create",
		"--username", "bob", "--email", "bob@example.com", "--password", "short")
	assert.Error(t, err)
}

func TestUserCreate_RequiresPasswordWithoutTerminal(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sunrise.db")

	_, err := execute(t, dbPath, "user", "create", "--username", "alice", "--email", "alice@example.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--password is required")
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sunrise.db")
	createTestUser(t, dbPath)

	file := filepath.Join(dir, "contacts.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"First Name,Last Name,E-mail 1 - Value,Phone 1 - Value\n"+
			"Ada,Lovelace,ada@example.com,+44 20 7946 0000\n"+
			"Grace,Hopper,grace@example.com,\n"+
			"Grace,Again,GRACE@example.com,\n"+
			"Linus,,,555-0100\n"), 0o600))

	out, err := execute(t, dbPath, "import", "--user", "1", "--file", file, "--category", "friends")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 2 contacts from contacts.csv (csv)")
	assert.Contains(t, out, "duplicates: 1")
	assert.Contains(t, out, "skipped:    2")

	stored, err := contacts.NewRepository(openDB(t, dbPath).DB).AllForUser(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "friends", stored[0].Category)
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sunrise.db")
	createTestUser(t, dbPath)

	phonesOnly := filepath.Join(dir, "phones.csv")
	require.NoError(t, os.WriteFile(phonesOnly, []byte("first_name,phone\nAda,555-0100\n"), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{"missing flags", []string{"import"}},
		{"missing file", []string{"import", "--user", "1", "--file", filepath.Join(dir, "nope.csv")}},
		{"unknown user", []string{"import", "--user", "99", "--file", phonesOnly}},
		{"no valid contacts", []string{"import", "--user", "1", "--file", phonesOnly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, dbPath, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestImport_AuditsOutcome(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sunrise.db")
	createTestUser(t, dbPath)

	phonesOnly := filepath.Join(dir, "phones.csv")
	require.NoError(t, os.WriteFile(phonesOnly, []byte("first_name,phone\nAda,555-0100\n"), 0o600))
	valid := filepath.Join(dir, "valid.csv")
	require.NoError(t, os.WriteFile(valid, []byte("first_name,email\nAda,ada@example.com\n"), 0o600))

	_, err := execute(t, dbPath, "import", "--user", "1", "--file", phonesOnly)
	require.Error(t, err)
	_, err = execute(t, dbPath, "import", "--user", "1", "--file", valid)
	require.NoError(t, err)

	var events []entities.AuditEvent
	require.NoError(t, openDB(t, dbPath).DB.
		Where("event_type = ?", entities.AuditEventImport).Order("id ASC").Find(&events).Error)
	require.Len(t, events, 2)
	assert.Equal(t, entities.AuditStatusRejected, events[0].Status)
	assert.Equal(t, "sunrise-cli", events[0].UserAgent)
	assert.Equal(t, entities.AuditStatusSuccess, events[1].Status)
}

func TestUserTier(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sunrise.db")
	createTestUser(t, dbPath)

	out, err := execute(t, dbPath, "user", "tier", "--user", "1", "--tier", "enterprise")
	require.NoError(t, err)
	assert.Contains(t, out, "User 1 is now on the enterprise tier (unlimited contacts)")

	sub, err := subsrepo.NewRepository(openDB(t, dbPath).DB).GetByUserID(t.Context(), 1)
	require.NoError(t, err)
	assert.Equal(t, entities.TierEnterprise, sub.Tier)

	_, err = execute(t, dbPath, "user", "tier", "--user", "1", "--tier", "platinum")
	assert.Error(t, err)
}
