package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// RowCodec reads and writes the rows of a delimited file.
type RowCodec interface {
	ReadAll(r io.Reader) ([][]string, error)
	WriteAll(w io.Writer, rows [][]string) error
}

// CSVCodec is the default RowCodec: RFC 4180 comma-separated rows.
type CSVCodec struct{}

// ReadAll reads every row from r. Column counts are checked by DecodeRecord.
func (CSVCodec) ReadAll(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// WriteAll writes rows to w and flushes.
func (CSVCodec) WriteAll(w io.Writer, rows [][]string) error {
	return csv.NewWriter(w).WriteAll(rows)
}

// FileStore moves whole tables between memory and a backing file.
type FileStore struct {
	codec RowCodec
}

// NewFileStore creates a FileStore using codec, or CSVCodec when nil.
func NewFileStore(codec RowCodec) *FileStore {
	if codec == nil {
		codec = CSVCodec{}
	}
	return &FileStore{codec: codec}
}

// Exists reports whether a file is present at path.
func (s *FileStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Load reads the file at path into a new table. A missing file yields an
// empty table. Any undecodable row fails the whole load.
func (s *FileStore) Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewTable(), nil
	}
	if err != nil {
		return nil, &StorageReadError{Path: path, Err: err}
	}
	defer f.Close()

	rows, err := s.codec.ReadAll(f)
	if err != nil {
		return nil, &StorageReadError{Path: path, Err: err}
	}

	table := NewTable()
	for i, row := range rows {
		r, err := DecodeRecord(row)
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Line = i + 1
			}
			return nil, &StorageReadError{Path: path, Err: err}
		}
		if err := table.Upsert(r); err != nil {
			return nil, &StorageReadError{Path: path, Err: fmt.Errorf("line %d: %w", i+1, err)}
		}
	}

	return table, nil
}

// Save replaces the file at path with the contents of table. Rows are
// written to a temporary file in the same directory which is then renamed
// over path, so readers see either the old or the new contents.
func (s *FileStore) Save(table *Table, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageWriteError{Path: path, Err: fmt.Errorf("create directory: %w", err)}
	}

	records := table.All()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, EncodeRecord(r))
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp-"+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return &StorageWriteError{Path: path, Err: fmt.Errorf("create temp file: %w", err)}
	}

	if err := s.codec.WriteAll(f, rows); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &StorageWriteError{Path: path, Err: fmt.Errorf("write rows: %w", err)}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &StorageWriteError{Path: path, Err: fmt.Errorf("sync temp file: %w", err)}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return &StorageWriteError{Path: path, Err: fmt.Errorf("close temp file: %w", err)}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &StorageWriteError{Path: path, Err: fmt.Errorf("replace file: %w", err)}
	}

	return nil
}

// DeleteFile removes the file at path. A missing file is not an error.
func (s *FileStore) DeleteFile(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete cookie file: %w", err)
	}
	return nil
}
