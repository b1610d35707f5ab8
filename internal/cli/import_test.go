package cli

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/artpar/crumbs/internal/cookies/csvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeLegacyDB creates a legacy cookie database holding one row per
// (domain, name, value) triple, all with path "/".
func writeLegacyDB(t *testing.T, dbPath string, rows ...[3]string) {
	t.Helper()

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE cookies (
		id TEXT PRIMARY KEY, domain TEXT NOT NULL, path TEXT NOT NULL, name TEXT NOT NULL,
		value TEXT NOT NULL, secure INTEGER NOT NULL DEFAULT 0, http_only INTEGER NOT NULL DEFAULT 0,
		same_site TEXT, expires DATETIME, created_at DATETIME NOT NULL, updated_at DATETIME NOT NULL)`)
	require.NoError(t, err)
	now := time.Now().UTC()
	for i, r := range rows {
		_, err = db.Exec(`INSERT INTO cookies VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fmt.Sprint(i), r[0], "/", r[1], r[2], 1, 0, nil, nil, now, now)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cookies.db")
	writeLegacyDB(t, dbPath, [3]string{"legacy.com", "old", "kept"})

	out, err := execute(t, dir, "import", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 cookies")

	out, err = execute(t, dir, "get", "old", "legacy.com")
	require.NoError(t, err)
	assert.Equal(t, "kept\n", out)
}

func TestImportCommand_MissingDatabase(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, dir, "import", filepath.Join(dir, "nope.db"))
	assert.Error(t, err)
}

func TestImportCommand_InvalidRow(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cookies.db")
	writeLegacyDB(t, dbPath,
		[3]string{"legacy.com", "good", "1"},
		[3]string{"", "bad", "2"},
	)

	_, err := execute(t, dir, "import", dbPath)
	require.ErrorIs(t, err, csvstore.ErrInvalidKey)

	out, err := execute(t, dir, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No cookies stored.")
}
