// Package sqlite reads cookie databases written by the SQLite-backed store
// of earlier releases so they can be moved into a CSV cookie file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/artpar/crumbs/internal/cookies"
	_ "modernc.org/sqlite"
)

const selectCookies = `
	SELECT domain, path, name, value, secure, http_only, expires, created_at, updated_at
	FROM cookies
	ORDER BY domain, path, name
`

// ReadAll opens the database at dbPath read-only and returns every cookie in
// its cookies table. The last update time becomes the last access time.
func ReadAll(ctx context.Context, dbPath string) ([]*cookies.Cookie, error) {
	if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cookie database not found: %s", dbPath)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open cookie database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, selectCookies)
	if err != nil {
		return nil, fmt.Errorf("failed to query cookie database: %w", err)
	}
	defer rows.Close()

	return scanCookies(rows)
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanCookie(row scannable) (*cookies.Cookie, error) {
	var c cookies.Cookie
	var secure, httpOnly int
	var expires sql.NullTime
	var createdAt, updatedAt time.Time

	err := row.Scan(
		&c.Domain, &c.Path, &c.Name, &c.Value,
		&secure, &httpOnly, &expires,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Secure = secure != 0
	c.HttpOnly = httpOnly != 0
	if expires.Valid {
		c.Expires = expires.Time
	}
	c.CreatedAt = createdAt
	c.LastAccessedAt = updatedAt

	return &c, nil
}

func scanCookies(rows *sql.Rows) ([]*cookies.Cookie, error) {
	var result []*cookies.Cookie
	for rows.Next() {
		c, err := scanCookie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
