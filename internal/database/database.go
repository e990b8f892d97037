// Package database provides document-style persistence for world
// objects and player accounts, backed by SQLite or PostgreSQL.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the SQL connection and provides persistence operations
// for the object and account stores.
type Database struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Database, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return OpenWithDialect(DialectSQLite, path)
}

// OpenPostgres opens a PostgreSQL database with the given connection
// string.
func OpenPostgres(dsn string) (*Database, error) {
	return OpenWithDialect(DialectPostgres, dsn)
}

// OpenWithDialect opens a database using the given dialect and data
// source, runs init statements, and migrates the schema.
func OpenWithDialect(dialectType DialectType, dataSource string) (*Database, error) {
	dialect := NewDialect(dialectType)

	db, err := sql.Open(dialect.DriverName(), dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run init statement %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect}

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	collate := d.dialect.CaseInsensitiveCollation()
	usernameType := "TEXT"
	if _, ok := d.dialect.(*PostgresDialect); ok {
		usernameType = "CITEXT"
		collate = ""
	}

	migrations := []string{
		// World objects: the id is assigned by the object store, not
		// the database, so it is a plain primary key.
		`CREATE TABLE IF NOT EXISTS objects (
			id BIGINT PRIMARY KEY,
			parent TEXT NOT NULL,
			data TEXT NOT NULL
		)`,

		// Accounts, keyed by case-insensitive username.
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
			username %s %s PRIMARY KEY,
			password_hash TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			controlling_object_id BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP
		)`, usernameType, collate),
	}

	for _, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
