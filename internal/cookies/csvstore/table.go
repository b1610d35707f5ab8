package csvstore

import (
	"github.com/artpar/crumbs/internal/cookies"
	"github.com/tidwall/btree"
)

// Table holds records addressed by their (name, domain, path) key.
// It is not safe for concurrent use; the Handler serializes access.
type Table struct {
	tree *btree.BTreeG[Record]
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{tree: newTree()}
}

func newTree() *btree.BTreeG[Record] {
	return btree.NewBTreeG[Record](recordLess)
}

func recordLess(a, b Record) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Domain != b.Domain {
		return a.Domain < b.Domain
	}
	return a.Path < b.Path
}

// Upsert inserts r or replaces the record with the same key.
func (t *Table) Upsert(r Record) error {
	if r.Domain == "" || r.Path == "" {
		return ErrInvalidKey
	}
	t.tree.Set(r)
	return nil
}

// Delete removes the record with the given key and reports whether one existed.
func (t *Table) Delete(k cookies.Key) bool {
	_, ok := t.tree.Delete(probe(k))
	return ok
}

// Get returns the record with the given key.
func (t *Table) Get(k cookies.Key) (Record, bool) {
	return t.tree.Get(probe(k))
}

// All returns every record. Callers must not rely on the order.
func (t *Table) All() []Record {
	records := make([]Record, 0, t.tree.Len())
	t.tree.Scan(func(r Record) bool {
		records = append(records, r)
		return true
	})
	return records
}

// Len returns the number of records.
func (t *Table) Len() int {
	return t.tree.Len()
}

// Reset drops every record.
func (t *Table) Reset() {
	t.tree = newTree()
}

func probe(k cookies.Key) Record {
	return Record{Name: k.Name, Domain: k.Domain, Path: k.Path}
}
