package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// ObjectDoc is the persisted form of a world object: its id, its parent
// type identifier, and the JSON record holding everything else.
type ObjectDoc struct {
	ID     int64
	Parent string
	Data   []byte
}

// LoadObjects returns every persisted object document, ordered by id so
// the store loads containers in creation order.
func (d *Database) LoadObjects() ([]ObjectDoc, error) {
	rows, err := d.db.Query("SELECT id, parent, data FROM objects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load objects: %w", err)
	}
	defer rows.Close()

	var docs []ObjectDoc
	for rows.Next() {
		var doc ObjectDoc
		var data string
		if err := rows.Scan(&doc.ID, &doc.Parent, &data); err != nil {
			return nil, fmt.Errorf("failed to scan object row: %w", err)
		}
		doc.Data = []byte(data)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate objects: %w", err)
	}
	return docs, nil
}

// SaveObject inserts or updates an object document.
func (d *Database) SaveObject(doc ObjectDoc) error {
	query := rebind(d.dialect, `INSERT INTO objects (id, parent, data) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET parent = excluded.parent, data = excluded.data`)
	if _, err := d.db.Exec(query, doc.ID, doc.Parent, string(doc.Data)); err != nil {
		return fmt.Errorf("failed to save object #%d: %w", doc.ID, err)
	}
	return nil
}

// DeleteObject removes an object document. Deleting an id that is not
// present is not an error.
func (d *Database) DeleteObject(id int64) error {
	query := rebind(d.dialect, "DELETE FROM objects WHERE id = ?")
	if _, err := d.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete object #%d: %w", id, err)
	}
	return nil
}

// ObjectExists reports whether an object document with the given id is
// persisted.
func (d *Database) ObjectExists(id int64) (bool, error) {
	query := rebind(d.dialect, "SELECT 1 FROM objects WHERE id = ?")
	var one int
	err := d.db.QueryRow(query, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object #%d: %w", id, err)
	}
	return true, nil
}

// CountObjects returns the number of persisted objects.
func (d *Database) CountObjects() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM objects").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count objects: %w", err)
	}
	return count, nil
}

// LoadObject returns a single object document by id.
func (d *Database) LoadObject(id int64) (ObjectDoc, error) {
	query := rebind(d.dialect, "SELECT id, parent, data FROM objects WHERE id = ?")
	var doc ObjectDoc
	var data string
	if err := d.db.QueryRow(query, id).Scan(&doc.ID, &doc.Parent, &data); err != nil {
		return ObjectDoc{}, fmt.Errorf("failed to load object #%d: %w", id, err)
	}
	doc.Data = []byte(data)
	return doc, nil
}
