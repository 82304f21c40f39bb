package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Keksclan/gradebook/model"
)

// SubjectRepo stores subjects.
type SubjectRepo struct {
	db *sql.DB
}

func querySubjects(ctx context.Context, q querier, query string, args ...any) ([]model.Subject, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Subject{}
	for rows.Next() {
		var s model.Subject
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SubjectRepo) FindAll(ctx context.Context) ([]model.Subject, error) {
	out, err := querySubjects(ctx, r.db, "SELECT id, name FROM subjects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("subjects: find all: %w", err)
	}
	return out, nil
}

func (r *SubjectRepo) FindAllSortedByName(ctx context.Context) ([]model.Subject, error) {
	out, err := querySubjects(ctx, r.db, "SELECT id, name FROM subjects ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("subjects: sorted by name: %w", err)
	}
	return out, nil
}

func (r *SubjectRepo) FindByNameContaining(ctx context.Context, pattern string) ([]model.Subject, error) {
	out, err := querySubjects(ctx, r.db, "SELECT id, name FROM subjects WHERE instr(name, ?) > 0 ORDER BY id", pattern)
	if err != nil {
		return nil, fmt.Errorf("subjects: search %q: %w", pattern, err)
	}
	return out, nil
}

func (r *SubjectRepo) findOne(ctx context.Context, where string, arg any) (model.Subject, bool, error) {
	var s model.Subject
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM subjects WHERE "+where, arg).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Subject{}, false, nil
	}
	if err != nil {
		return model.Subject{}, false, err
	}
	return s, true, nil
}

func (r *SubjectRepo) FindByID(ctx context.Context, id int64) (model.Subject, bool, error) {
	s, ok, err := r.findOne(ctx, "id = ?", id)
	if err != nil {
		return model.Subject{}, false, fmt.Errorf("subjects: find %d: %w", id, err)
	}
	return s, ok, nil
}

func (r *SubjectRepo) FindByName(ctx context.Context, name string) (model.Subject, bool, error) {
	s, ok, err := r.findOne(ctx, "name = ?", name)
	if err != nil {
		return model.Subject{}, false, fmt.Errorf("subjects: find %q: %w", name, err)
	}
	return s, ok, nil
}

func (r *SubjectRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM subjects WHERE name = ?)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("subjects: exists %q: %w", name, err)
	}
	return exists, nil
}

func (r *SubjectRepo) Create(ctx context.Context, name string) (model.Subject, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO subjects (name) VALUES (?)", name)
	if err != nil {
		return model.Subject{}, fmt.Errorf("subjects: create %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Subject{}, fmt.Errorf("subjects: create %q: %w", name, err)
	}
	return model.Subject{ID: id, Name: name}, nil
}

// Delete removes the subject together with its marks and assignments.
func (r *SubjectRepo) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = ?", id); err != nil {
		return fmt.Errorf("subjects: delete %d: %w", id, err)
	}
	return nil
}
