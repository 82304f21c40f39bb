// Package sqlite implements the gradebook repositories on SQLite through the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS student_groups (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT    NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS students (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT    NOT NULL,
	age      INTEGER NOT NULL,
	group_id INTEGER REFERENCES student_groups(id) ON DELETE SET NULL
);
CREATE TABLE IF NOT EXISTS subjects (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT    NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS student_subjects (
	student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	subject_id INTEGER NOT NULL REFERENCES subjects(id) ON DELETE CASCADE,
	PRIMARY KEY (student_id, subject_id)
);
CREATE TABLE IF NOT EXISTS marks (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	value      INTEGER NOT NULL,
	student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
	subject_id INTEGER NOT NULL REFERENCES subjects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS students_group_id ON students(group_id);
CREATE INDEX IF NOT EXISTS marks_student_id ON marks(student_id);
CREATE INDEX IF NOT EXISTS marks_subject_id ON marks(subject_id);
`

// DB is an open gradebook database.
type DB struct {
	sql *sql.DB
}

// Open opens (creating if needed) the database at dsn and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	// A single connection keeps ":memory:" databases alive across calls and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &DB{sql: db}, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.sql.Close() }

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error { return d.sql.PingContext(ctx) }

// Students returns the student repository.
func (d *DB) Students() *StudentRepo { return &StudentRepo{db: d.sql} }

// Groups returns the group repository.
func (d *DB) Groups() *GroupRepo { return &GroupRepo{db: d.sql} }

// Subjects returns the subject repository.
func (d *DB) Subjects() *SubjectRepo { return &SubjectRepo{db: d.sql} }

// Marks returns the mark repository.
func (d *DB) Marks() *MarkRepo { return &MarkRepo{db: d.sql} }

// Enrollment returns the student to subject relation repository.
func (d *DB) Enrollment() *EnrollmentRepo { return &EnrollmentRepo{db: d.sql} }

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// direction maps a sort parameter to an SQL ordering. Only "desc" (any case)
// reverses; everything else sorts ascending.
func direction(sort string) string {
	if strings.EqualFold(sort, "desc") {
		return "DESC"
	}
	return "ASC"
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
