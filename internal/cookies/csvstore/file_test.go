package csvstore

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/artpar/crumbs/internal/cookies"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Exists(t *testing.T) {
	fs := NewFileStore(nil)
	dir := t.TempDir()

	assert.False(t, fs.Exists(filepath.Join(dir, "missing.csv")))

	path := filepath.Join(dir, "present.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.True(t, fs.Exists(path))
}

func TestFileStore_Load(t *testing.T) {
	t.Run("missing file yields empty table", func(t *testing.T) {
		table, err := NewFileStore(nil).Load(filepath.Join(t.TempDir(), "cookies.csv"))
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("empty file yields empty table", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.csv")
		require.NoError(t, os.WriteFile(path, nil, 0644))

		table, err := NewFileStore(nil).Load(path)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("reads saved rows", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.csv")
		content := "a,1,x.com,/,-,0,false,false,2025-01-01T00:00:00Z,2025-01-01T00:00:00Z,true\n" +
			"\"b,c\",\"quoted \"\"value\"\"\",x.com,/api,-,10,true,true,2025-01-01T00:00:00Z,2025-01-01T00:00:00Z,false\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		table, err := NewFileStore(nil).Load(path)
		require.NoError(t, err)
		require.Equal(t, 2, table.Len())

		r, ok := table.Get(cookies.Key{Name: "b,c", Domain: "x.com", Path: "/api"})
		require.True(t, ok)
		assert.Equal(t, `quoted "value"`, r.Value)
		assert.Equal(t, 10, r.MaxAge)
		assert.True(t, r.Secure)
	})

	t.Run("fails whole load on bad row", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.csv")
		content := "a,1,x.com,/,-,0,false,false,t,t,true\n" +
			"b,2,x.com,/,-,NaN,false,false,t,t,true\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		table, err := NewFileStore(nil).Load(path)
		assert.Nil(t, table)

		var re *StorageReadError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, path, re.Path)

		var de *DecodeError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, 2, de.Line)
		assert.Equal(t, ColMaxAge, de.Column)
	})

	t.Run("fails on row without domain", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,1,,/,-,0,false,false,t,t,true\n"), 0644))

		_, err := NewFileStore(nil).Load(path)
		assert.ErrorIs(t, err, ErrInvalidKey)
	})
}

func TestFileStore_Save(t *testing.T) {
	t.Run("writes every record and round trips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.csv")
		fs := NewFileStore(nil)

		table := NewTable()
		require.NoError(t, table.Upsert(sampleRecord()))
		other := sampleRecord()
		other.Name = "other"
		other.Expires = ""
		require.NoError(t, table.Upsert(other))

		require.NoError(t, fs.Save(table, path))

		loaded, err := fs.Load(path)
		require.NoError(t, err)
		assert.ElementsMatch(t, table.All(), loaded.All())
	})

	t.Run("replaces previous contents", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cookies.csv")
		fs := NewFileStore(nil)

		first := NewTable()
		require.NoError(t, first.Upsert(Record{Name: "a", Domain: "x.com", Path: "/"}))
		require.NoError(t, first.Upsert(Record{Name: "b", Domain: "x.com", Path: "/"}))
		require.NoError(t, fs.Save(first, path))

		second := NewTable()
		require.NoError(t, second.Upsert(Record{Name: "c", Domain: "x.com", Path: "/"}))
		require.NoError(t, fs.Save(second, path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), "\n"))
		assert.True(t, strings.HasPrefix(string(data), "c,"))
	})

	t.Run("creates missing directory and leaves no temp files", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "dir")
		path := filepath.Join(dir, "cookies.csv")

		require.NoError(t, NewFileStore(nil).Save(NewTable(), path))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "cookies.csv", entries[0].Name())
	})

	t.Run("reports write failure and removes temp file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "cookies.csv")
		fs := NewFileStore(failingCodec{})

		err := fs.Save(NewTable(), path)

		var we *StorageWriteError
		require.True(t, errors.As(err, &we))
		assert.Equal(t, path, we.Path)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestFileStore_DeleteFile(t *testing.T) {
	fs := NewFileStore(nil)
	path := filepath.Join(t.TempDir(), "cookies.csv")

	assert.NoError(t, fs.DeleteFile(path))

	require.NoError(t, os.WriteFile(path, nil, 0644))
	require.NoError(t, fs.DeleteFile(path))
	assert.False(t, fs.Exists(path))
}

type failingCodec struct{}

func (failingCodec) ReadAll(io.Reader) ([][]string, error) {
	return nil, errors.New("read failed")
}

func (failingCodec) WriteAll(io.Writer, [][]string) error {
	return errors.New("disk full")
}
